package reformat

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/vietddude/mdreformat/internal/core/domain"
	"github.com/vietddude/mdreformat/internal/infra/storage"
)

func TestMain(m *testing.M) {
	// opencensus, pulled in by the genai transport, starts its view worker in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// funcOracle is a scripted oracle that counts calls per raw input.
type funcOracle struct {
	fn    func(ctx context.Context, raw string, call int) (string, error)
	mu    sync.Mutex
	calls map[string]int
	total int
}

func newFuncOracle(fn func(ctx context.Context, raw string, call int) (string, error)) *funcOracle {
	return &funcOracle{fn: fn, calls: make(map[string]int)}
}

func (o *funcOracle) Name() string { return "stub" }

func (o *funcOracle) Transform(ctx context.Context, raw string) (string, error) {
	o.mu.Lock()
	o.calls[raw]++
	o.total++
	n := o.calls[raw]
	o.mu.Unlock()
	return o.fn(ctx, raw, n)
}

func (o *funcOracle) Calls(raw string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[raw]
}

func (o *funcOracle) Total() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.total
}

// headingOracle prefixes raw with a Markdown heading marker.
func headingOracle() *funcOracle {
	return newFuncOracle(func(_ context.Context, raw string, _ int) (string, error) {
		return "## " + raw, nil
	})
}

func route(id int64, desc map[string]string) *domain.Record {
	return &domain.Record{
		ID:          id,
		Status:      domain.StatusActive,
		Activities:  []string{"rock_climbing"},
		Description: domain.NewBlob(desc),
	}
}

// faultyStore injects persistence faults for selected route ids.
type faultyStore struct {
	storage.RouteRepository
	fail      map[int64]error
	healthErr error
}

func (s *faultyStore) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	uow, err := s.RouteRepository.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyUnitOfWork{UnitOfWork: uow, fail: s.fail}, nil
}

func (s *faultyStore) Health(ctx context.Context) error {
	return s.healthErr
}

type faultyUnitOfWork struct {
	storage.UnitOfWork
	fail map[int64]error
}

func (u *faultyUnitOfWork) SaveReformatted(ctx context.Context, id int64, values map[string]string) (int64, error) {
	if err, ok := u.fail[id]; ok {
		return 0, err
	}
	return u.UnitOfWork.SaveReformatted(ctx, id, values)
}

// recordingCheckpoint keeps committed and failed ids in memory.
type recordingCheckpoint struct {
	mu        sync.Mutex
	committed []int64
	failed    []int64
}

func (c *recordingCheckpoint) Committed(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed = append(c.committed, id)
	return nil
}

func (c *recordingCheckpoint) Failed(_ context.Context, id int64, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = append(c.failed, id)
	return nil
}
