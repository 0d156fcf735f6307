package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/mdreformat/internal/control"
)

var failedCmd = &cobra.Command{
	Use:   "failed",
	Short: "List routes whose update was rolled back and not yet retried",
	Run:   runFailed,
}

var resetCheckpointCmd = &cobra.Command{
	Use:   "reset-checkpoint",
	Short: "Forget the last committed route id and the failed routes",
	Run:   runResetCheckpoint,
}

func init() {
	rootCmd.AddCommand(failedCmd)
	rootCmd.AddCommand(resetCheckpointCmd)
}

func openCheckpoint(ctx context.Context) *control.Reformatter {
	app, err := control.New(ctx, appCfg, control.Options{Checkpoint: true})
	if err != nil {
		slog.Error("Failed to initialize reformatter", "error", err)
		os.Exit(1)
	}
	return app
}

func runFailed(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := openCheckpoint(ctx)
	defer func() {
		_ = app.Close()
	}()

	ids, causes, err := app.Failed(ctx)
	if err != nil {
		slog.Error("Failed to read failed routes", "error", err)
		_ = app.Close()
		os.Exit(1)
	}
	next, _ := app.ResumePoint(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ROUTE\tCAUSE")
	for _, id := range ids {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", id, causes[id])
	}
	_ = w.Flush()
	fmt.Printf("%d failed, next start id %d\n", len(ids), next)
}

func runResetCheckpoint(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app := openCheckpoint(ctx)
	defer func() {
		_ = app.Close()
	}()

	if err := app.ResetCheckpoint(ctx); err != nil {
		slog.Error("Failed to reset checkpoint", "error", err)
		_ = app.Close()
		os.Exit(1)
	}
	fmt.Println("Successfully reset checkpoint")
}
