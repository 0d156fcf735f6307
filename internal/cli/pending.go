package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/mdreformat/internal/control"
)

var pendingOut string

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Count routes with markup, treated and untreated",
	Run:   runPending,
}

func init() {
	pendingCmd.Flags().StringVar(&pendingOut, "out", "", "write untreated route ids to this file, one per line")
	rootCmd.AddCommand(pendingCmd)
}

func runPending(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app, err := control.New(ctx, appCfg, control.Options{})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Close()
	}()

	report, err := app.Pending(ctx)
	if err != nil {
		slog.Error("Failed to count routes", "error", err)
		_ = app.Close()
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "WITH MARKUP\tTREATED\tUNTREATED")
	_, _ = fmt.Fprintf(w, "%d\t%d\t%d\n", report.Total, report.Treated, len(report.Untreated))
	_ = w.Flush()

	if pendingOut == "" {
		return
	}
	var sb strings.Builder
	for _, id := range report.Untreated {
		sb.WriteString(strconv.FormatInt(id, 10))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(pendingOut, []byte(sb.String()), 0o644); err != nil {
		slog.Error("Failed to write untreated ids", "path", pendingOut, "error", err)
		_ = app.Close()
		os.Exit(1)
	}
	fmt.Printf("Wrote %d untreated route ids to %s\n", len(report.Untreated), pendingOut)
}
