package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another run holds the run lock.
var ErrLocked = errors.New("another run holds the lock")

// DefaultLockTTL is used when Config.LockTTL is zero.
const DefaultLockTTL = 10 * time.Minute

// Checkpoint keeps resume state for batch runs: the last committed route id,
// the set of routes whose persistence failed and an exclusive run lock.
type Checkpoint struct {
	rdb       *redis.Client
	namespace string
	lockTTL   time.Duration
}

// NewCheckpoint creates a checkpoint store on top of a client.
func NewCheckpoint(client *Client, cfg Config) *Checkpoint {
	ns := cfg.Namespace
	if ns == "" {
		ns = "mdreformat:route"
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Checkpoint{rdb: client.rdb, namespace: ns, lockTTL: ttl}
}

// Key helpers
func committedKey(ns string) string {
	return fmt.Sprintf("%s:last_committed", ns)
}

func failedKey(ns string) string {
	return fmt.Sprintf("%s:failed", ns)
}

func failedCauseKey(ns string) string {
	return fmt.Sprintf("%s:failed_cause", ns)
}

func lockKey(ns string) string {
	return fmt.Sprintf("%s:lock", ns)
}

// Committed records id as committed: it advances the checkpoint (never
// backwards) and clears any earlier failure for the route.
func (c *Checkpoint) Committed(ctx context.Context, id int64) error {
	if err := advanceScript.Run(ctx, c.rdb, []string{committedKey(c.namespace)}, id).Err(); err != nil {
		return fmt.Errorf("failed to advance checkpoint: %w", err)
	}

	member := strconv.FormatInt(id, 10)
	pipe := c.rdb.TxPipeline()
	pipe.ZRem(ctx, failedKey(c.namespace), member)
	pipe.HDel(ctx, failedCauseKey(c.namespace), member)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear failure: %w", err)
	}
	return nil
}

// Failed remembers a route whose update was rolled back.
func (c *Checkpoint) Failed(ctx context.Context, id int64, cause string) error {
	member := strconv.FormatInt(id, 10)
	pipe := c.rdb.TxPipeline()
	pipe.ZAdd(ctx, failedKey(c.namespace), redis.Z{Score: float64(id), Member: member})
	pipe.HSet(ctx, failedCauseKey(c.namespace), member, cause)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}

// LastCommitted returns the last committed id, or 0 when none is stored.
func (c *Checkpoint) LastCommitted(ctx context.Context) (int64, error) {
	val, err := c.rdb.Get(ctx, committedKey(c.namespace)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get failed: %w", err)
	}
	return strconv.ParseInt(val, 10, 64)
}

// FailedIDs returns the recorded failures ordered by id, with their causes.
func (c *Checkpoint) FailedIDs(ctx context.Context) ([]int64, map[int64]string, error) {
	members, err := c.rdb.ZRange(ctx, failedKey(c.namespace), 0, -1).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("zrange failed: %w", err)
	}
	causes, err := c.rdb.HGetAll(ctx, failedCauseKey(c.namespace)).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("hgetall failed: %w", err)
	}

	ids := make([]int64, 0, len(members))
	byID := make(map[int64]string, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		byID[id] = causes[m]
	}
	return ids, byID, nil
}

// Reset forgets the checkpoint and the failure set.
func (c *Checkpoint) Reset(ctx context.Context) error {
	return c.rdb.Del(ctx,
		committedKey(c.namespace),
		failedKey(c.namespace),
		failedCauseKey(c.namespace),
	).Err()
}

// AcquireLock takes the exclusive run lock for owner.
func (c *Checkpoint) AcquireLock(ctx context.Context, owner string) error {
	ok, err := c.rdb.SetNX(ctx, lockKey(c.namespace), owner, c.lockTTL).Result()
	if err != nil {
		return fmt.Errorf("setnx failed: %w", err)
	}
	if !ok {
		holder, _ := c.rdb.Get(ctx, lockKey(c.namespace)).Result()
		return fmt.Errorf("%w (held by %s)", ErrLocked, holder)
	}
	return nil
}

// RefreshLock extends the lock TTL while owner still holds it.
func (c *Checkpoint) RefreshLock(ctx context.Context, owner string) error {
	ok, err := refreshScript.Run(ctx, c.rdb, []string{lockKey(c.namespace)}, owner, c.lockTTL.Milliseconds()).Bool()
	if err != nil {
		return fmt.Errorf("failed to refresh lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// ReleaseLock releases the lock if owner still holds it.
func (c *Checkpoint) ReleaseLock(ctx context.Context, owner string) error {
	if err := releaseScript.Run(ctx, c.rdb, []string{lockKey(c.namespace)}, owner).Err(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// KeepLock refreshes the lock every third of its TTL until ctx is done.
func (c *Checkpoint) KeepLock(ctx context.Context, owner string) {
	ticker := time.NewTicker(c.lockTTL / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.RefreshLock(ctx, owner); err != nil && ctx.Err() == nil {
				slog.Warn("Failed to refresh run lock", "owner", owner, "error", err)
			}
		}
	}
}

var advanceScript = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local id = tonumber(ARGV[1])
if id > cur then
  redis.call("SET", KEYS[1], ARGV[1])
end
return 1`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)
