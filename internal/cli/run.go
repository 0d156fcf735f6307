package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vietddude/mdreformat/internal/control"
)

var (
	runStartID     int64
	runNoSkip      bool
	runLimit       int
	runDryRun      bool
	runWorkers     int
	runResume      bool
	runRestrictActivity bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reformat every eligible route in id order",
	Long: `Reformat active routes whose description carries markup, one commit per
route. Use --resume to continue after the last committed route recorded in Redis.`,
	Run: runBulk,
}

func init() {
	runCmd.Flags().Int64Var(&runStartID, "start-id", 0, "first route id to consider (default from config, 1)")
	runCmd.Flags().BoolVar(&runNoSkip, "no-skip", false, "reprocess routes that already have a reformatted description")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "maximum number of routes to attempt (0 = no limit)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "compute results without writing them")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent oracle calls per route")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "start after the last committed route id stored in Redis")
	runCmd.Flags().BoolVar(&runRestrictActivity, "restrict-activity", false, "only visit routes whose activity is in batch.activities")
	rootCmd.AddCommand(runCmd)
}

func runBulk(cmd *cobra.Command, args []string) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		appCfg.Batch.Workers = runWorkers
	}
	if runRestrictActivity {
		appCfg.Batch.RestrictActivities = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := control.New(ctx, appCfg, control.Options{Oracle: true, Checkpoint: true})
	if err != nil {
		slog.Error("Failed to initialize reformatter", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Close()
	}()

	rc := appCfg.Batch.RunConfig()
	if flags.Changed("start-id") {
		rc.ResumeFrom = runStartID
	}
	if runNoSkip {
		rc.SkipDone = false
	}
	if flags.Changed("limit") {
		rc.Limit = runLimit
	}
	if runDryRun {
		rc.DryRun = true
	}
	if runResume {
		next, err := app.ResumePoint(ctx)
		if err != nil {
			slog.Error("Failed to read checkpoint", "error", err)
			_ = app.Close()
			os.Exit(1)
		}
		rc.ResumeFrom = next
		slog.Info("Resuming from checkpoint", "start_id", next)
	}

	result, err := app.Run(ctx, rc)
	fmt.Printf("[Bulk] %s\n", result)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Run interrupted", "last_id", result.LastID)
		} else {
			slog.Error("Run failed", "error", err)
		}
		_ = app.Close()
		os.Exit(1)
	}
}
