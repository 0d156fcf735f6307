package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"google.golang.org/genai"
)

// ErrorKind tells the retry loop what to do with a failed call.
type ErrorKind int

const (
	// KindFatal errors are returned immediately.
	KindFatal ErrorKind = iota
	// KindRetry errors are transient: rate limits, 5xx, network timeouts.
	KindRetry
)

func (k ErrorKind) String() string {
	if k == KindRetry {
		return "retry"
	}
	return "fatal"
}

// StatusError is a non-2xx provider answer.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s upstream %d: %s", e.Provider, e.Code, e.Message)
}

// ClassifyError decides whether a provider error is worth retrying.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindFatal
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindFatal
	}
	if code := statusCode(err); code != 0 {
		if code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500 {
			return KindRetry
		}
		return KindFatal
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindRetry
	}
	return KindFatal
}

func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	var ae *anthropic.Error
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	var ge genai.APIError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return 0
}

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        30 * time.Second,
	BackoffMultiple: 2.0,
}

// CallWithRetry executes a transform with exponential backoff. Only
// KindRetry errors are retried.
func CallWithRetry(ctx context.Context, o Oracle, raw string, config RetryConfig) (string, error) {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		out, err := o.Transform(ctx, raw)
		if err == nil {
			return out, nil
		}

		lastErr = err
		if ClassifyError(err) == KindFatal {
			return "", err
		}

		if attempt == config.MaxAttempts-1 {
			break
		}

		delay := calculateBackoff(attempt, config)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

type retrying struct {
	inner  Oracle
	config RetryConfig
}

// WithRetry wraps o so transient transport errors are retried.
func WithRetry(o Oracle, config RetryConfig) Oracle {
	return &retrying{inner: o, config: config}
}

func (r *retrying) Name() string { return r.inner.Name() }

func (r *retrying) Transform(ctx context.Context, raw string) (string, error) {
	return CallWithRetry(ctx, r.inner, raw, r.config)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
