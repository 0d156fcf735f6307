package storage

import (
	"context"
	"errors"

	"github.com/vietddude/mdreformat/internal/core/domain"
)

var (
	// ErrNotFound is returned when a route doesn't exist
	ErrNotFound = errors.New("route not found")

	// ErrConnectionLost marks faults that mean the store itself is gone.
	// The batch driver treats it as fatal for the run.
	ErrConnectionLost = errors.New("store connection lost")

	// ErrTxDone is returned when a unit of work is used after Commit or Rollback
	ErrTxDone = errors.New("transaction already completed")
)

// SnapshotQuery selects the candidate routes of a run.
type SnapshotQuery struct {
	// Status keeps only routes with this status flag ("" = any)
	Status string
	// FromID keeps only routes with id >= FromID
	FromID int64
}

// RouteRepository handles route storage operations
type RouteRepository interface {
	// Snapshot reads all matching routes ordered by id ascending
	Snapshot(ctx context.Context, q SnapshotQuery) ([]*domain.Record, error)

	// Get retrieves a single route by id
	Get(ctx context.Context, id int64) (*domain.Record, error)

	// Begin opens a unit of work scoped to one route update
	Begin(ctx context.Context) (UnitOfWork, error)

	// Health checks that the store is reachable
	Health(ctx context.Context) error
}

// UnitOfWork is a single transaction. Rollback after Commit is a no-op.
type UnitOfWork interface {
	// SaveReformatted replaces the reformatted description of a route and
	// returns the number of rows written
	SaveReformatted(ctx context.Context, id int64, values map[string]string) (int64, error)

	Commit() error
	Rollback() error
}
