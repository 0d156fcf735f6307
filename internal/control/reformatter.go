package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/mdreformat/internal/core/config"
	"github.com/vietddude/mdreformat/internal/core/domain"
	redisclient "github.com/vietddude/mdreformat/internal/infra/redis"
	"github.com/vietddude/mdreformat/internal/infra/storage"
	"github.com/vietddude/mdreformat/internal/infra/storage/postgres"
	"github.com/vietddude/mdreformat/internal/metrics"
	"github.com/vietddude/mdreformat/internal/oracle"
	"github.com/vietddude/mdreformat/internal/reformat"
)

// ErrNoCheckpoint is returned when a command needs Redis and none is configured.
var ErrNoCheckpoint = errors.New("redis checkpoint not configured")

// Reformatter owns the external resources of one command invocation.
type Reformatter struct {
	cfg        *config.AppConfig
	db         *postgres.DB
	store      storage.RouteRepository
	redis      *redisclient.Client
	checkpoint *redisclient.Checkpoint
	driver     *reformat.Driver
	log        *slog.Logger
}

// Options selects which dependencies New acquires.
type Options struct {
	// Oracle builds the text-transformation client. Commands that only read
	// the store leave it off.
	Oracle bool
	// Checkpoint connects to Redis when redis.url is set.
	Checkpoint bool
}

// New connects to the store and, depending on opts, the oracle and Redis.
// Everything acquired is released by Close, including on a failed New.
func New(ctx context.Context, cfg *config.AppConfig, opts Options) (*Reformatter, error) {
	r := &Reformatter{cfg: cfg, log: slog.Default()}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("%w: database.url is required", config.ErrInvalid)
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	r.db = db
	r.store = postgres.NewRouteRepo(db)

	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	if opts.Checkpoint && cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		r.redis = client
		r.checkpoint = redisclient.NewCheckpoint(client, cfg.Redis)
	}

	if opts.Oracle {
		o, err := oracle.New(ctx, cfg.Oracle)
		if err != nil {
			_ = r.Close()
			return nil, err
		}

		invoker := reformat.NewInvoker(o, cfg.Oracle.Timeout, r.log)
		r.driver = reformat.NewDriver(r.store, invoker, driverOptions(cfg, r.checkpoint, r.log)...)
		r.log.Info("Oracle ready", "provider", o.Name(), "model", cfg.Oracle.Model)
	}

	return r, nil
}

func driverOptions(cfg *config.AppConfig, cp *redisclient.Checkpoint, log *slog.Logger) []reformat.Option {
	opts := []reformat.Option{
		reformat.WithLangOrder(cfg.Batch.LangOrder),
		reformat.WithActivities(cfg.Batch.AllowedActivities()),
		reformat.WithWorkers(cfg.Batch.Workers),
		reformat.WithLogger(log),
	}
	if cp != nil {
		opts = append(opts, reformat.WithCheckpoint(cp))
	}
	return opts
}

// Close releases every acquired resource.
func (r *Reformatter) Close() error {
	var errs []error
	if r.redis != nil {
		errs = append(errs, r.redis.Close())
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
	}
	return errors.Join(errs...)
}

// Run executes a batch run under the Redis run lock, serving metrics while
// it lasts when metrics.addr is set.
func (r *Reformatter) Run(ctx context.Context, rc reformat.RunConfig) (domain.BatchResult, error) {
	if r.driver == nil {
		return domain.BatchResult{}, errors.New("oracle not initialized")
	}

	if r.checkpoint != nil {
		owner := uuid.NewString()
		if err := r.checkpoint.AcquireLock(ctx, owner); err != nil {
			return domain.BatchResult{}, err
		}
		lockCtx, stopLock := context.WithCancel(ctx)
		defer func() {
			stopLock()
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.checkpoint.ReleaseLock(releaseCtx, owner); err != nil {
				r.log.Warn("Failed to release run lock", "error", err)
			}
		}()
		go r.checkpoint.KeepLock(lockCtx, owner)
	}

	if addr := r.cfg.Metrics.Addr; addr != "" {
		srv := metrics.NewServer(addr, r.store.Health)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				r.log.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
		r.log.Info("Metrics server started", "addr", addr)
	}

	return r.driver.Run(ctx, rc)
}

// RunOne processes a single route.
func (r *Reformatter) RunOne(ctx context.Context, id int64, dryRun bool) (domain.RecordResult, error) {
	if r.driver == nil {
		return domain.RecordResult{ID: id}, errors.New("oracle not initialized")
	}
	return r.driver.RunOne(ctx, id, dryRun)
}

// ResumePoint returns the id after the last committed one, or the lowest
// failed id when a failure is still outstanding below it.
func (r *Reformatter) ResumePoint(ctx context.Context) (int64, error) {
	if r.checkpoint == nil {
		return 0, ErrNoCheckpoint
	}
	last, err := r.checkpoint.LastCommitted(ctx)
	if err != nil {
		return 0, err
	}
	failed, _, err := r.checkpoint.FailedIDs(ctx)
	if err != nil {
		return 0, err
	}
	return resumePoint(last, failed), nil
}

func resumePoint(lastCommitted int64, failed []int64) int64 {
	next := lastCommitted + 1
	if len(failed) > 0 && failed[0] < next {
		next = failed[0]
	}
	return next
}

// Failed lists the routes whose update was rolled back in earlier runs.
func (r *Reformatter) Failed(ctx context.Context) ([]int64, map[int64]string, error) {
	if r.checkpoint == nil {
		return nil, nil, ErrNoCheckpoint
	}
	return r.checkpoint.FailedIDs(ctx)
}

// ResetCheckpoint forgets the stored progress.
func (r *Reformatter) ResetCheckpoint(ctx context.Context) error {
	if r.checkpoint == nil {
		return ErrNoCheckpoint
	}
	return r.checkpoint.Reset(ctx)
}

// Pending counts routes with markup, split into treated and untreated.
func (r *Reformatter) Pending(ctx context.Context) (reformat.PendingReport, error) {
	return reformat.Pending(ctx, r.store, r.cfg.Batch.PendingActivities(), r.cfg.Batch.LangOrder)
}

// Migrate applies the embedded schema migrations.
func (r *Reformatter) Migrate(ctx context.Context) error {
	return r.db.Migrate(ctx)
}
