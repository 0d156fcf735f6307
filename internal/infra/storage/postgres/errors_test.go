package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/vietddude/mdreformat/internal/infra/storage"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		lost bool
	}{
		{"bad conn", driver.ErrBadConn, true},
		{"conn done", fmt.Errorf("exec: %w", sql.ErrConnDone), true},
		{"net error", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}, true},
		{"pgx admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"pgx connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"pgx unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"pq connection exception", &pq.Error{Code: "08003"}, true},
		{"pq invalid json", &pq.Error{Code: "22P02"}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if errors.Is(got, storage.ErrConnectionLost) != tt.lost {
				t.Errorf("classify(%v) lost = %v, want %v", tt.err, !tt.lost, tt.lost)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classify(%v) dropped the original error", tt.err)
			}
		})
	}

	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestEncodeValues(t *testing.T) {
	got, err := encodeValues(map[string]string{"fr": "<h2>Voie</h2> & co"})
	if err != nil {
		t.Fatalf("encodeValues failed: %v", err)
	}
	if want := `{"fr":"<h2>Voie</h2> & co"}`; got != want {
		t.Errorf("encodeValues = %s, want %s", got, want)
	}
}
