package reformat

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/markup"
	"github.com/vietddude/mdreformat/internal/metrics"
	"github.com/vietddude/mdreformat/internal/oracle"
)

// Invoker wraps oracle calls with normalization, the placeholder check and
// degrade-on-fault.
type Invoker struct {
	oracle  oracle.Oracle
	timeout time.Duration
	log     *slog.Logger
}

// NewInvoker creates an invoker. A zero timeout leaves calls unbounded.
func NewInvoker(o oracle.Oracle, timeout time.Duration, log *slog.Logger) *Invoker {
	if log == nil {
		log = slog.Default()
	}
	return &Invoker{oracle: o, timeout: timeout, log: log}
}

// Invoke calls the oracle once. A fault or timeout yields the normalized raw
// text and is never returned to the caller.
func (inv *Invoker) Invoke(ctx context.Context, raw string) domain.TransformOutcome {
	callCtx := ctx
	if inv.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	provider := inv.oracle.Name()
	start := time.Now()
	out, err := inv.oracle.Transform(callCtx, raw)
	metrics.OracleCallsTotal.WithLabelValues(provider).Inc()
	metrics.OracleLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.OracleErrorsTotal.WithLabelValues(provider).Inc()
		inv.log.Warn("Oracle call failed, keeping raw text",
			"provider", provider,
			"error", err,
		)
		return domain.TransformOutcome{Text: markup.Normalize(raw)}
	}

	text := markup.Normalize(out)
	return domain.TransformOutcome{Text: text, Unresolved: markup.HasPlaceholder(text)}
}

// InvokeWithRetry calls the oracle at most twice. When the first output still
// holds an L# placeholder the original raw text is sent again and the second
// output is accepted as is.
func (inv *Invoker) InvokeWithRetry(ctx context.Context, raw string) string {
	first := inv.Invoke(ctx, raw)
	if !first.Unresolved {
		return first.Text
	}

	metrics.PlaceholderRetries.Inc()
	inv.log.Debug("Placeholder still present, retrying oracle", "provider", inv.oracle.Name())
	return inv.Invoke(ctx, raw).Text
}
