package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/vietddude/mdreformat/internal/infra/storage"
)

// classify tags connection-level failures with storage.ErrConnectionLost.
// Statement-level errors (constraint, syntax, serialization) pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isConnectionLost(err) && !errors.Is(err, storage.ErrConnectionLost) {
		return fmt.Errorf("%w: %w", storage.ErrConnectionLost, err)
	}
	return err
}

func isConnectionLost(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	// SQLSTATE class 08 is "connection exception"; 57P01-57P03 are server
	// shutdown / cannot connect now.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isConnectionState(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isConnectionState(string(pqErr.Code))
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func isConnectionState(code string) bool {
	return strings.HasPrefix(code, "08") ||
		code == "57P01" || code == "57P02" || code == "57P03"
}
