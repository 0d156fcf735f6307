package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vietddude/mdreformat/internal/infra/storage"
	"github.com/vietddude/mdreformat/internal/metrics"
)

// UnitOfWork wraps a single route update in its own transaction so that a
// crash only loses the route in flight.
type UnitOfWork struct {
	tx *sqlx.Tx
}

// NewUnitOfWork creates a new unit of work with an active transaction.
func (db *DB) NewUnitOfWork(ctx context.Context) (*UnitOfWork, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	return &UnitOfWork{tx: tx}, nil
}

// Commit commits the transaction.
func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return storage.ErrTxDone
	}
	err := u.tx.Commit()
	u.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit: %w", classify(err))
	}
	return nil
}

// Rollback rolls back the transaction. Safe to call multiple times.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Already committed or rolled back
	}
	err := u.tx.Rollback()
	u.tx = nil
	return classify(err)
}

const updateReformatted = `
UPDATE route
   SET ai_reformatted_description = $1::jsonb
 WHERE id = $2`

// SaveReformatted replaces the reformatted description of one route.
func (u *UnitOfWork) SaveReformatted(ctx context.Context, id int64, values map[string]string) (int64, error) {
	if u.tx == nil {
		return 0, storage.ErrTxDone
	}

	payload, err := encodeValues(values)
	if err != nil {
		return 0, fmt.Errorf("failed to encode reformatted description: %w", err)
	}

	timer := metrics.NewStoreTimer("save_reformatted")
	res, err := u.tx.ExecContext(ctx, updateReformatted, payload, id)
	timer.ObserveDuration()
	if err != nil {
		return 0, fmt.Errorf("failed to update route %d: %w", id, classify(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", classify(err))
	}
	return rows, nil
}

// encodeValues marshals without HTML escaping so markup stays readable in psql.
func encodeValues(values map[string]string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}
