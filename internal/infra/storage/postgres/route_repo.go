package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/infra/storage"
	"github.com/vietddude/mdreformat/internal/metrics"
)

// RouteRepo implements storage.RouteRepository using PostgreSQL.
type RouteRepo struct {
	db *DB
}

// NewRouteRepo creates a new PostgreSQL route repository.
func NewRouteRepo(db *DB) *RouteRepo {
	return &RouteRepo{db: db}
}

type routeRow struct {
	ID          int64          `db:"id"`
	Status      sql.NullString `db:"status"`
	Activities  []byte         `db:"activities"`
	Description []byte         `db:"description"`
	Reformatted []byte         `db:"ai_reformatted_description"`
}

func (r routeRow) toDomain() *domain.Record {
	return &domain.Record{
		ID:          r.ID,
		Status:      r.Status.String,
		Activities:  parseActivities(r.Activities),
		Description: domain.DecodeBlob(r.Description),
		Reformatted: domain.DecodeBlob(r.Reformatted),
	}
}

// Columns are read as text so every shape (jsonb, json, text) decodes the same way.
const selectRoutes = `
SELECT id,
       status::text                      AS status,
       activities::text                  AS activities,
       description::text                 AS description,
       ai_reformatted_description::text  AS ai_reformatted_description
  FROM route`

// Snapshot reads all matching routes in one statement ordered by id.
func (r *RouteRepo) Snapshot(ctx context.Context, q storage.SnapshotQuery) ([]*domain.Record, error) {
	query := selectRoutes + `
 WHERE id >= $1
   AND ($2 = '' OR status::text = $2)
 ORDER BY id`

	timer := metrics.NewStoreTimer("snapshot")
	var rows []routeRow
	err := r.db.SelectContext(ctx, &rows, query, q.FromID, q.Status)
	timer.ObserveDuration()
	if err != nil {
		return nil, fmt.Errorf("failed to read route snapshot: %w", classify(err))
	}

	records := make([]*domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toDomain())
	}
	return records, nil
}

// Get retrieves a route by id.
func (r *RouteRepo) Get(ctx context.Context, id int64) (*domain.Record, error) {
	var row routeRow
	err := r.db.GetContext(ctx, &row, selectRoutes+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route %d: %w", id, classify(err))
	}
	return row.toDomain(), nil
}

// Begin opens a per-route transaction.
func (r *RouteRepo) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	uow, err := r.db.NewUnitOfWork(ctx)
	if err != nil {
		return nil, err
	}
	return uow, nil
}

// Health pings the database.
func (r *RouteRepo) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}
