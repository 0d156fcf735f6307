package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vietddude/mdreformat/internal/control"
	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/infra/storage"
)

var routeDryRun bool

var routeCmd = &cobra.Command{
	Use:   "route [route_id]",
	Short: "Reformat a single route, whatever its status",
	Args:  cobra.ExactArgs(1),
	Run:   runRoute,
}

func init() {
	routeCmd.Flags().BoolVar(&routeDryRun, "dry-run", false, "print the result without writing it")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Invalid route id: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := control.New(ctx, appCfg, control.Options{Oracle: true, Checkpoint: true})
	if err != nil {
		slog.Error("Failed to initialize reformatter", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Close()
	}()

	rr, err := app.RunOne(ctx, id, routeDryRun)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("[Route %d] not found.\n", id)
		} else {
			slog.Error("Failed to reformat route", "route_id", id, "error", err)
		}
		_ = app.Close()
		os.Exit(1)
	}

	switch rr.Status {
	case domain.RecordNoMarkup:
		fmt.Printf("[Route %d] %s, skipped.\n", id, rr.Reason)
	case domain.RecordPreviewed:
		fmt.Printf("[DRY-RUN] %d\n", id)
		for _, lang := range rr.Languages {
			fmt.Printf("--- %s ---\n%s\n", lang, rr.Output[lang])
		}
	case domain.RecordUpdated:
		fmt.Printf("[Route %d] updated (%v).\n", id, rr.Languages)
	}
}
