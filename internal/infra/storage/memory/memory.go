package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/infra/storage"
)

// MemoryStorage is an in-process route store. Updates staged in a unit of
// work become visible only on Commit.
type MemoryStorage struct {
	routes map[int64]*domain.Record
	mu     sync.RWMutex
}

func NewMemoryStorage(records ...*domain.Record) *MemoryStorage {
	s := &MemoryStorage{routes: make(map[int64]*domain.Record)}
	for _, r := range records {
		s.Put(r)
	}
	return s
}

// Put inserts or replaces a route.
func (s *MemoryStorage) Put(r *domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[r.ID] = cloneRecord(r)
}

// -----------------------------------------------------------------------------
// Route Repository
// -----------------------------------------------------------------------------

type RouteRepo struct {
	store *MemoryStorage
}

func NewRouteRepo(store *MemoryStorage) *RouteRepo {
	return &RouteRepo{store: store}
}

func (r *RouteRepo) Snapshot(ctx context.Context, q storage.SnapshotQuery) ([]*domain.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Record
	for _, rec := range r.store.routes {
		if rec.ID < q.FromID {
			continue
		}
		if q.Status != "" && rec.Status != q.Status {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RouteRepo) Get(ctx context.Context, id int64) (*domain.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rec, ok := r.store.routes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *RouteRepo) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	return &unitOfWork{store: r.store, pending: make(map[int64]map[string]string)}, nil
}

func (r *RouteRepo) Health(ctx context.Context) error {
	return nil
}

// -----------------------------------------------------------------------------
// Unit of Work
// -----------------------------------------------------------------------------

type unitOfWork struct {
	store   *MemoryStorage
	pending map[int64]map[string]string
	done    bool
}

func (u *unitOfWork) SaveReformatted(ctx context.Context, id int64, values map[string]string) (int64, error) {
	if u.done {
		return 0, storage.ErrTxDone
	}
	u.store.mu.RLock()
	_, ok := u.store.routes[id]
	u.store.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	u.pending[id] = cloneValues(values)
	return 1, nil
}

func (u *unitOfWork) Commit() error {
	if u.done {
		return storage.ErrTxDone
	}
	u.done = true

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for id, values := range u.pending {
		if rec, ok := u.store.routes[id]; ok {
			rec.Reformatted = domain.NewBlob(values)
		}
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	u.done = true
	u.pending = nil
	return nil
}

func cloneRecord(r *domain.Record) *domain.Record {
	c := *r
	c.Activities = append([]string(nil), r.Activities...)
	c.Description = cloneBlob(r.Description)
	c.Reformatted = cloneBlob(r.Reformatted)
	return &c
}

func cloneBlob(b domain.Blob) domain.Blob {
	return domain.Blob{Kind: b.Kind, Values: cloneValues(b.Values)}
}

func cloneValues(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return cp
}
