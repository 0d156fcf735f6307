package redis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKeys(t *testing.T) {
	ns := "mdreformat:route"
	tests := []struct {
		got  string
		want string
	}{
		{committedKey(ns), "mdreformat:route:last_committed"},
		{failedKey(ns), "mdreformat:route:failed"},
		{failedCauseKey(ns), "mdreformat:route:failed_cause"},
		{lockKey(ns), "mdreformat:route:lock"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestCheckpoint_Live(t *testing.T) {
	url := os.Getenv("MDREFORMAT_TEST_REDIS")
	if url == "" {
		t.Skip("Skipping redis integration test. Set MDREFORMAT_TEST_REDIS to run.")
	}

	client, err := NewClient(Config{URL: url})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	cp := NewCheckpoint(client, Config{Namespace: "mdreformat:test", LockTTL: time.Second})
	_ = cp.Reset(ctx)
	defer cp.Reset(ctx)

	for _, id := range []int64{3, 7, 5} {
		if err := cp.Committed(ctx, id); err != nil {
			t.Fatalf("Committed(%d) failed: %v", id, err)
		}
	}
	last, err := cp.LastCommitted(ctx)
	if err != nil || last != 7 {
		t.Errorf("LastCommitted = %d, %v; want 7", last, err)
	}

	_ = cp.Failed(ctx, 9, "deadlock detected")
	_ = cp.Failed(ctx, 8, "timeout")
	ids, causes, err := cp.FailedIDs(ctx)
	if err != nil {
		t.Fatalf("FailedIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 8 || causes[9] != "deadlock detected" {
		t.Errorf("unexpected failures %v %v", ids, causes)
	}

	_ = cp.Committed(ctx, 8)
	ids, _, _ = cp.FailedIDs(ctx)
	if len(ids) != 1 || ids[0] != 9 {
		t.Errorf("commit did not clear failure: %v", ids)
	}

	if err := cp.AcquireLock(ctx, "run-a"); err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if err := cp.AcquireLock(ctx, "run-b"); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
	_ = cp.ReleaseLock(ctx, "run-b")
	if err := cp.RefreshLock(ctx, "run-a"); err != nil {
		t.Errorf("owner refresh failed: %v", err)
	}
	_ = cp.ReleaseLock(ctx, "run-a")
	if err := cp.AcquireLock(ctx, "run-b"); err != nil {
		t.Errorf("lock not released: %v", err)
	}
	_ = cp.ReleaseLock(ctx, "run-b")
}

func TestKeepLock_LogsRefreshFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 20 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	c := &Checkpoint{rdb: rdb, namespace: "test", lockTTL: 30 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	c.KeepLock(ctx, "owner-1")

	if !strings.Contains(buf.String(), "Failed to refresh run lock") {
		t.Errorf("Expected a refresh warning, got %q", buf.String())
	}
}
