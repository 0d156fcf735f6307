// Package reformat drives route descriptions through the oracle and back to
// the store: eligibility, per-language transformation and per-record commit.
package reformat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/infra/storage"
	"github.com/vietddude/mdreformat/internal/metrics"
)

// Checkpointer records run progress outside the store.
type Checkpointer interface {
	Committed(ctx context.Context, id int64) error
	Failed(ctx context.Context, id int64, cause string) error
}

// RunConfig controls one batch run.
type RunConfig struct {
	// ResumeFrom is the smallest route id considered.
	ResumeFrom int64
	// SkipDone skips routes that already have a reformatted description.
	SkipDone bool
	// Limit caps the number of routes attempted. Zero means no limit.
	Limit  int
	DryRun bool
}

// DefaultRunConfig returns the defaults: resume from 1, skip done routes.
func DefaultRunConfig() RunConfig {
	return RunConfig{ResumeFrom: 1, SkipDone: true}
}

// Driver runs batches over the route store.
type Driver struct {
	store      storage.RouteRepository
	invoker    *Invoker
	order      []string
	activities []string
	workers    int
	checkpoint Checkpointer
	log        *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithLangOrder sets the language priority order.
func WithLangOrder(order []string) Option {
	return func(d *Driver) { d.order = order }
}

// WithActivities sets the activity allow-list. Empty allows any activity.
func WithActivities(activities []string) Option {
	return func(d *Driver) { d.activities = activities }
}

// WithWorkers bounds concurrent oracle calls within one route.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithCheckpoint records committed and failed ids in cp.
func WithCheckpoint(cp Checkpointer) Option {
	return func(d *Driver) { d.checkpoint = cp }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDriver creates a driver over store and invoker.
func NewDriver(store storage.RouteRepository, invoker *Invoker, opts ...Option) *Driver {
	d := &Driver{
		store:   store,
		invoker: invoker,
		order:   domain.DefaultLangOrder,
		workers: 1,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes the active routes from cfg.ResumeFrom in id order. Only a
// lost store connection or a cancelled context ends the run early; the
// partial result is returned alongside the error.
func (d *Driver) Run(ctx context.Context, cfg RunConfig) (domain.BatchResult, error) {
	if cfg.ResumeFrom < 1 {
		cfg.ResumeFrom = 1
	}
	result := domain.BatchResult{RunID: uuid.NewString(), DryRun: cfg.DryRun}
	log := d.log.With("run_id", result.RunID)

	records, err := d.store.Snapshot(ctx, storage.SnapshotQuery{
		Status: domain.StatusActive,
		FromID: cfg.ResumeFrom,
	})
	if err != nil {
		return result, fmt.Errorf("failed to read snapshot: %w", err)
	}

	filter := NewFilter(cfg.ResumeFrom, cfg.SkipDone, d.activities)
	log.Info("Starting batch run",
		"candidates", len(records),
		"resume_from", cfg.ResumeFrom,
		"skip_done", cfg.SkipDone,
		"limit", cfg.Limit,
		"dry_run", cfg.DryRun,
	)

	for _, rec := range records {
		if cfg.Limit > 0 && result.Processed >= cfg.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			log.Warn("Batch run interrupted", "last_id", result.LastID, "summary", result.String())
			return result, err
		}

		var rr domain.RecordResult
		if reason := filter.Reason(rec); reason != "" {
			rr = domain.RecordResult{ID: rec.ID, Status: domain.RecordSkipped, Reason: reason}
			log.Debug("Route skipped", "route_id", rec.ID, "reason", reason)
		} else {
			rr = d.Plan(ctx, rec)
			// Degraded output from cancelled oracle calls must not be written.
			if err := ctx.Err(); err != nil {
				log.Warn("Batch run interrupted", "route_id", rec.ID, "summary", result.String())
				return result, err
			}
			if rr.Status == domain.RecordPreviewed && !cfg.DryRun {
				rr = d.persist(ctx, rr)
			}
			d.report(log, rr)
		}

		result.Add(rr)
		metrics.RecordsTotal.WithLabelValues(string(rr.Status)).Inc()

		if rr.Status == domain.RecordFailed && d.isFatal(ctx, rr.Err) {
			log.Error("Store connection lost, aborting run", "route_id", rec.ID, "error", rr.Err)
			return result, fmt.Errorf("run aborted at route %d: %w", rec.ID, rr.Err)
		}
	}

	log.Info(result.String(),
		"skipped", result.Skipped,
		"no_markup", result.NoMarkup,
		"previewed", result.Previewed,
		"last_id", result.LastID,
	)
	return result, nil
}

// RunOne processes a single route regardless of its status or existing
// reformatted description.
func (d *Driver) RunOne(ctx context.Context, id int64, dryRun bool) (domain.RecordResult, error) {
	rec, err := d.store.Get(ctx, id)
	if err != nil {
		return domain.RecordResult{ID: id}, fmt.Errorf("failed to get route %d: %w", id, err)
	}

	var rr domain.RecordResult
	if rec.Description.Kind != domain.BlobParsed {
		rr = domain.RecordResult{ID: id, Status: domain.RecordNoMarkup, Reason: "description " + rec.Description.Kind.String()}
	} else {
		rr = d.Plan(ctx, rec)
		if err := ctx.Err(); err != nil {
			return rr, err
		}
		if rr.Status == domain.RecordPreviewed && !dryRun {
			rr = d.persist(ctx, rr)
		}
	}
	d.report(d.log, rr)
	metrics.RecordsTotal.WithLabelValues(string(rr.Status)).Inc()

	if rr.Status == domain.RecordFailed {
		return rr, rr.Err
	}
	return rr, nil
}

// Plan transforms every eligible language block of rec without touching the
// store. The result is RecordNoMarkup when nothing qualified, otherwise
// RecordPreviewed with Output holding one entry per transformed language.
func (d *Driver) Plan(ctx context.Context, rec *domain.Record) domain.RecordResult {
	blocks := EligibleBlocks(rec, d.order)
	if len(blocks) == 0 {
		return domain.RecordResult{ID: rec.ID, Status: domain.RecordNoMarkup, Reason: "no markup"}
	}

	outputs := make([]string, len(blocks))
	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, b := range blocks {
		g.Go(func() error {
			outputs[i] = d.invoker.InvokeWithRetry(ctx, b.Text)
			d.log.Debug("Block transformed",
				"route_id", rec.ID,
				"lang", b.Lang,
				"chars_in", len(b.Text),
				"chars_out", len(outputs[i]),
			)
			return nil
		})
	}
	_ = g.Wait()

	rr := domain.RecordResult{
		ID:        rec.ID,
		Status:    domain.RecordPreviewed,
		Languages: make([]string, len(blocks)),
		Output:    make(map[string]string, len(blocks)),
	}
	for i, b := range blocks {
		rr.Languages[i] = b.Lang
		rr.Output[b.Lang] = outputs[i]
	}
	return rr
}

// persist writes rr.Output in its own unit of work.
func (d *Driver) persist(ctx context.Context, rr domain.RecordResult) domain.RecordResult {
	rows, err := d.save(ctx, rr.ID, rr.Output)
	if err != nil {
		rr.Status = domain.RecordFailed
		rr.Err = err
		if d.checkpoint != nil {
			if cpErr := d.checkpoint.Failed(ctx, rr.ID, err.Error()); cpErr != nil {
				d.log.Warn("Failed to record failure in checkpoint", "route_id", rr.ID, "error", cpErr)
			}
		}
		return rr
	}

	rr.Status = domain.RecordUpdated
	rr.Rows = rows
	metrics.LastCommittedID.Set(float64(rr.ID))
	if d.checkpoint != nil {
		if err := d.checkpoint.Committed(ctx, rr.ID); err != nil {
			d.log.Warn("Failed to save checkpoint", "route_id", rr.ID, "error", err)
		}
	}
	return rr
}

func (d *Driver) save(ctx context.Context, id int64, values map[string]string) (int64, error) {
	uow, err := d.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = uow.Rollback() }()

	rows, err := uow.SaveReformatted(ctx, id, values)
	if err != nil {
		return 0, fmt.Errorf("failed to save: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return rows, nil
}

// isFatal reports whether a persistence fault means the store is gone.
func (d *Driver) isFatal(ctx context.Context, err error) bool {
	if errors.Is(err, storage.ErrConnectionLost) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	if hErr := d.store.Health(ctx); hErr != nil {
		d.log.Error("Store health probe failed", "error", hErr)
		return true
	}
	return false
}

func (d *Driver) report(log *slog.Logger, rr domain.RecordResult) {
	switch rr.Status {
	case domain.RecordUpdated:
		log.Info("Route updated", "route_id", rr.ID, "languages", rr.Languages)
	case domain.RecordPreviewed:
		log.Info("[DRY-RUN] Route previewed", "route_id", rr.ID, "languages", rr.Languages, "preview", preview(rr.Output))
	case domain.RecordNoMarkup:
		log.Info("No markup detected, route skipped", "route_id", rr.ID, "reason", rr.Reason)
	case domain.RecordFailed:
		log.Error("Route failed", "route_id", rr.ID, "error", rr.Err)
	}
}

// preview renders the first characters of the output blob.
func preview(values map[string]string) string {
	b, err := domain.NewBlob(values).MarshalJSON()
	if err != nil {
		return ""
	}
	r := []rune(string(b))
	if len(r) > 120 {
		return string(r[:120]) + "…"
	}
	return string(r)
}
