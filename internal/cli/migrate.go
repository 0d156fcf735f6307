package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/mdreformat/internal/control"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	app, err := control.New(ctx, appCfg, control.Options{})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Close()
	}()

	if err := app.Migrate(ctx); err != nil {
		slog.Error("Migration failed", "error", err)
		_ = app.Close()
		os.Exit(1)
	}
	slog.Info("Migrations applied")
}
