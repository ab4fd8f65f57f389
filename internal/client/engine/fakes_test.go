package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/client/repositories"
	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeRemote is an in-memory record store applying the server version rules.
type fakeRemote struct {
	mu      sync.Mutex
	records map[string]models.Record
	nextID  int
	down    bool
	calls   []string
	tokens  []string

	// beforeCreate runs outside the lock at the start of Create.
	beforeCreate func()
}

func newFakeRemote(seed ...models.Record) *fakeRemote {
	f := &fakeRemote{records: make(map[string]models.Record)}
	for _, r := range seed {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakeRemote) record(call, token string) error {
	f.calls = append(f.calls, call)
	f.tokens = append(f.tokens, token)
	if f.down {
		return fmt.Errorf("%w: connection refused", common.ErrUnavailable)
	}
	return nil
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) Stored(id string) (models.Record, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	return r, ok
}

func (f *fakeRemote) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeRemote) List(ctx context.Context, token string) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list", token); err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRemote) Get(ctx context.Context, token, id string) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("get "+id, token); err != nil {
		return models.Record{}, err
	}
	r, ok := f.records[id]
	if !ok {
		return models.Record{}, common.ErrNotFound
	}
	return r, nil
}

func (f *fakeRemote) Create(ctx context.Context, token string, rec models.Record) (models.Record, error) {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create "+rec.ID, token); err != nil {
		return models.Record{}, err
	}
	f.nextID++
	rec.ID = fmt.Sprintf("srv%d", f.nextID)
	rec.Version = 1
	rec.Status = models.StatusSynced
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeRemote) Update(ctx context.Context, token string, rec models.Record) (models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update "+rec.ID, token); err != nil {
		return models.Record{}, err
	}
	cur, ok := f.records[rec.ID]
	if !ok {
		return models.Record{}, common.ErrNotFound
	}
	if rec.Version < cur.Version {
		return models.Record{}, common.ErrVersionConflict
	}
	rec.Version = cur.Version + 1
	rec.Status = models.StatusSynced
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeRemote) Delete(ctx context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete "+id, token); err != nil {
		return err
	}
	if _, ok := f.records[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

// holders counts goroutines holding or waiting for key.
func (k *keyedMutex) holders(key string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	if l, ok := k.locks[key]; ok {
		return l.refs
	}
	return 0
}

type fakeConn struct {
	online atomic.Bool
}

func (c *fakeConn) Online() bool { return c.online.Load() }

type harness struct {
	engine *Engine
	remote *fakeRemote
	conn   *fakeConn
	repos  *repositories.Repositories
}

func newHarness(t *testing.T, online bool, seed ...models.Record) *harness {
	t.Helper()
	ctx := context.Background()

	repos, err := repositories.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	h := &harness{remote: newFakeRemote(seed...), conn: &fakeConn{}, repos: repos}
	h.conn.online.Store(online)

	var n int
	h.engine = New(h.remote, repos.Cache, h.conn, logging.NewNopLogger(),
		WithReplayRetry(2, 1),
		WithIDGenerator(func() (string, error) {
			n++
			return fmt.Sprintf("_local%04d", n), nil
		}),
	)
	h.engine.SetToken("tok")
	return h
}

// cached decodes the cache entry stored under id.
func (h *harness) cached(t *testing.T, id string) (models.Record, bool) {
	t.Helper()
	raw, err := h.repos.Cache.Get(context.Background(), id)
	require.NoError(t, err)
	if raw == nil {
		return models.Record{}, false
	}
	rec, err := models.DecodeRecord(raw)
	require.NoError(t, err)
	return rec, true
}

func (h *harness) cacheKeys(t *testing.T) []string {
	t.Helper()
	keys, err := h.repos.Cache.Keys(context.Background())
	require.NoError(t, err)
	return keys
}

func (h *harness) put(t *testing.T, rec models.Record) {
	t.Helper()
	b, err := rec.Encode()
	require.NoError(t, err)
	require.NoError(t, h.repos.Cache.Set(context.Background(), rec.ID, b))
}

func trip(id, name string, version int64) models.Record {
	return models.Record{
		ID:                id,
		Name:              name,
		StartDate:         "2025-05-01",
		EndDate:           "2025-05-04",
		Price:             200,
		TransportIncluded: true,
		UserID:            "u1",
		Version:           version,
	}
}
