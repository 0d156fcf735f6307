package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/infra/storage"
)

func TestRouteRepo_SnapshotOrderAndFilter(t *testing.T) {
	store := NewMemoryStorage(
		&domain.Record{ID: 9, Status: "1"},
		&domain.Record{ID: 2, Status: "1"},
		&domain.Record{ID: 5, Status: "0"},
		&domain.Record{ID: 7, Status: "1"},
	)
	repo := NewRouteRepo(store)

	got, err := repo.Snapshot(context.Background(), storage.SnapshotQuery{Status: "1", FromID: 3})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != 7 || got[1].ID != 9 {
		t.Errorf("unexpected snapshot %+v", got)
	}
}

func TestRouteRepo_UnitOfWork(t *testing.T) {
	store := NewMemoryStorage(&domain.Record{ID: 1, Status: "1"})
	repo := NewRouteRepo(store)
	ctx := context.Background()

	uow, _ := repo.Begin(ctx)
	if _, err := uow.SaveReformatted(ctx, 1, map[string]string{"fr": "x"}); err != nil {
		t.Fatalf("SaveReformatted failed: %v", err)
	}
	_ = uow.Rollback()

	rec, _ := repo.Get(ctx, 1)
	if rec.Reformatted.IsDone() {
		t.Fatal("rollback leaked the staged update")
	}

	uow, _ = repo.Begin(ctx)
	rows, err := uow.SaveReformatted(ctx, 1, map[string]string{"fr": "x"})
	if err != nil || rows != 1 {
		t.Fatalf("SaveReformatted = %d, %v", rows, err)
	}
	if rows, _ := uow.SaveReformatted(ctx, 42, map[string]string{"fr": "x"}); rows != 0 {
		t.Errorf("expected 0 rows for unknown route, got %d", rows)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := uow.Commit(); !errors.Is(err, storage.ErrTxDone) {
		t.Errorf("expected ErrTxDone on second commit, got %v", err)
	}

	rec, _ = repo.Get(ctx, 1)
	if rec.Reformatted.Get("fr") != "x" {
		t.Errorf("commit not visible: %+v", rec.Reformatted)
	}

	if _, err := repo.Get(ctx, 3); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
