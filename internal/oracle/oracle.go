// Package oracle adapts text-transformation LLM providers behind one
// interface. An Oracle turns a raw route description into clean Markdown.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var (
	// ErrEmptyResponse is returned when a provider answers without text.
	ErrEmptyResponse = errors.New("oracle returned no text")
	// ErrMissingAPIKey is returned when a provider needs a key and none is set.
	ErrMissingAPIKey = errors.New("missing api key")
	// ErrUnknownProvider is returned by New for unsupported providers.
	ErrUnknownProvider = errors.New("unknown oracle provider")
)

// Oracle transforms one raw text block.
type Oracle interface {
	Name() string
	Transform(ctx context.Context, raw string) (string, error)
}

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderEcho      = "echo"
)

// Providers lists every supported provider.
var Providers = []string{ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderEcho}

// Config selects and tunes a provider.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	// Timeout bounds one logical transform call, transport retries and
	// their backoff included.
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	MaxTokens   int           `yaml:"max_tokens"`
}

var apiKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// KnownProvider reports whether name is a supported provider.
func KnownProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}

// New builds the configured oracle. Transport failures are retried with
// backoff when MaxAttempts is greater than one.
func New(ctx context.Context, cfg Config) (Oracle, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" {
		if env, ok := apiKeyEnv[provider]; ok {
			cfg.APIKey = os.Getenv(env)
		}
	}

	var (
		o   Oracle
		err error
	)
	switch provider {
	case ProviderOpenAI:
		o, err = NewOpenAI(cfg)
	case ProviderGemini:
		o, err = NewGemini(ctx, cfg)
	case ProviderAnthropic:
		o, err = NewAnthropic(cfg)
	case ProviderEcho:
		o = NewEcho()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s oracle: %w", provider, err)
	}

	if cfg.MaxAttempts > 1 {
		rc := DefaultRetryConfig
		rc.MaxAttempts = cfg.MaxAttempts
		o = WithRetry(o, rc)
	}
	return o, nil
}

func cleanOutput(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyResponse
	}
	return s, nil
}
