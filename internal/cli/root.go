package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/mdreformat/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
	appCfg  *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "mdreformat",
	Short: "Route description Markdown reformatter",
	Long: `mdreformat sends route descriptions that already carry Markdown or HTML
through an LLM and stores clean Markdown in ai_reformatted_description.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// setup loads .env and the config file, then initialises logging.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		return err
	}

	// Setup logging
	stylelog.InitDefault(&tint.Options{
		Level:      logLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
	})

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		return err
	}
	appCfg = cfg
	return nil
}

func logLevel(level string) slog.Level {
	if isDebug {
		return slog.LevelDebug
	}
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
