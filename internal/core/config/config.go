package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/vietddude/mdreformat/internal/core/domain"
	redisclient "github.com/vietddude/mdreformat/internal/infra/redis"
	"github.com/vietddude/mdreformat/internal/infra/storage/postgres"
	"github.com/vietddude/mdreformat/internal/oracle"
	"github.com/vietddude/mdreformat/internal/reformat"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Database postgres.Config    `yaml:"database"`
	Redis    redisclient.Config `yaml:"redis"`
	Oracle   oracle.Config      `yaml:"oracle"`
	Batch    BatchConfig        `yaml:"batch"`
	Metrics  MetricsConfig      `yaml:"metrics"`
	Logging  LoggingConfig      `yaml:"logging"`
}

// BatchConfig holds batch run settings.
type BatchConfig struct {
	ResumeFrom int64 `yaml:"resume_from"`
	// SkipDone defaults to true when unset.
	SkipDone   *bool    `yaml:"skip_done"`
	Limit      int      `yaml:"limit"` // 0 = no limit
	DryRun     bool     `yaml:"dry_run"`
	Workers    int      `yaml:"workers"`
	LangOrder  []string `yaml:"lang_order"`
	Activities []string `yaml:"activities"`
	// RestrictActivities applies the activity allow-list to run.
	RestrictActivities bool `yaml:"restrict_activities"`
}

// MetricsConfig holds the metrics/health HTTP server settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty = disabled
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// SkipDoneEnabled resolves the skip_done setting.
func (b BatchConfig) SkipDoneEnabled() bool {
	return b.SkipDone == nil || *b.SkipDone
}

// AllowedActivities returns the allow-list for run. Nil allows any activity.
func (b BatchConfig) AllowedActivities() []string {
	if !b.RestrictActivities {
		return nil
	}
	return b.Activities
}

// PendingActivities returns the allow-list used by the pending census.
func (b BatchConfig) PendingActivities() []string {
	return b.Activities
}

// RunConfig converts the batch settings for the driver.
func (b BatchConfig) RunConfig() reformat.RunConfig {
	return reformat.RunConfig{
		ResumeFrom: b.ResumeFrom,
		SkipDone:   b.SkipDoneEnabled(),
		Limit:      b.Limit,
		DryRun:     b.DryRun,
	}
}

func (c *AppConfig) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "pgx"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 5
	}
	if c.Redis.Namespace == "" {
		c.Redis.Namespace = "mdreformat:route"
	}
	if c.Redis.LockTTL == 0 {
		c.Redis.LockTTL = redisclient.DefaultLockTTL
	}

	if c.Oracle.Provider == "" {
		c.Oracle.Provider = oracle.ProviderOpenAI
	}
	c.Oracle.Provider = strings.ToLower(c.Oracle.Provider)
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 60 * time.Second
	}
	if c.Oracle.MaxAttempts == 0 {
		c.Oracle.MaxAttempts = 3
	}

	if c.Batch.ResumeFrom == 0 {
		c.Batch.ResumeFrom = 1
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = 1
	}
	if len(c.Batch.LangOrder) == 0 {
		c.Batch.LangOrder = append([]string(nil), domain.DefaultLangOrder...)
	}
	if len(c.Batch.Activities) == 0 {
		c.Batch.Activities = append([]string(nil), reformat.DefaultActivities...)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (c *AppConfig) Validate() error {
	if !oracle.KnownProvider(c.Oracle.Provider) {
		return fmt.Errorf("%w: oracle.provider %q (want one of %s)",
			ErrInvalid, c.Oracle.Provider, strings.Join(oracle.Providers, ", "))
	}
	if c.Oracle.Timeout < 0 {
		return fmt.Errorf("%w: oracle.timeout must not be negative", ErrInvalid)
	}
	if c.Oracle.MaxAttempts < 1 {
		return fmt.Errorf("%w: oracle.max_attempts must be at least 1", ErrInvalid)
	}
	if c.Batch.ResumeFrom < 1 {
		return fmt.Errorf("%w: batch.resume_from must be at least 1", ErrInvalid)
	}
	if c.Batch.Limit < 0 {
		return fmt.Errorf("%w: batch.limit must not be negative", ErrInvalid)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: batch.workers must be at least 1", ErrInvalid)
	}
	for _, lang := range c.Batch.LangOrder {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("%w: batch.lang_order %q: %v", ErrInvalid, lang, err)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}
