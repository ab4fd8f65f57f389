package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"golang.org/x/sync/singleflight"
)

type Engine struct {
	remote RecordStore
	cache  Cache
	conn   Connectivity
	store  *Store
	locks  *keyedMutex
	logger logging.Logger

	newID func() (string, error)
	now   func() time.Time

	replayAttempts  uint64
	replayBaseDelay time.Duration
	replayGroup     singleflight.Group
	fetchGroup      singleflight.Group
	wg              sync.WaitGroup

	tokenMu sync.RWMutex
	token   string

	// confirmed maps placeholders to the server ids their creates got.
	confirmedMu sync.Mutex
	confirmed   map[string]string
}

type Option func(*Engine)

// WithReplayRetry sets how many times replay tries one entry within a single
// run before leaving it for the next reconnect, and the first backoff delay.
func WithReplayRetry(attempts uint64, baseDelay time.Duration) Option {
	return func(e *Engine) {
		e.replayAttempts = attempts
		e.replayBaseDelay = baseDelay
	}
}

// WithIDGenerator replaces the placeholder id generator.
func WithIDGenerator(f func() (string, error)) Option {
	return func(e *Engine) { e.newID = f }
}

// WithClock replaces time.Now.
func WithClock(f func() time.Time) Option {
	return func(e *Engine) { e.now = f }
}

func New(remote RecordStore, c Cache, conn Connectivity, l logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		remote:          remote,
		cache:           c,
		conn:            conn,
		store:           NewStore(),
		locks:           newKeyedMutex(),
		confirmed:       make(map[string]string),
		logger:          l.With("module", "engine"),
		newID:           models.NewPlaceholderID,
		now:             time.Now,
		replayAttempts:  3,
		replayBaseDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetToken sets the bearer token used for record store calls, including
// replay.
func (e *Engine) SetToken(token string) {
	e.tokenMu.Lock()
	e.token = token
	e.tokenMu.Unlock()
}

func (e *Engine) Token() string {
	e.tokenMu.RLock()
	defer e.tokenMu.RUnlock()
	return e.token
}

// State returns a copy of the observable state.
func (e *Engine) State() State {
	return e.store.State()
}

// Watch streams state changes; see Store.Watch.
func (e *Engine) Watch() <-chan State {
	return e.store.Watch()
}

// Online reports the connectivity the engine acts on.
func (e *Engine) Online() bool {
	if e.conn != nil {
		return e.conn.Online()
	}
	return e.store.State().Online
}

// Wait blocks until background replays started by the engine finish.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// ListResult is the outcome of List. Records is always usable; Err is the
// displayable reason the server copy could not be used.
type ListResult struct {
	Records   []models.Record
	FromCache bool
	Err       error
}

// List loads the record set. Connected: from the server, written through to
// the cache. Otherwise, or when the server call fails: from the cache,
// skipping malformed entries and entries pending an update.
func (e *Engine) List(ctx context.Context, token string) ListResult {
	e.SetToken(token)
	e.store.Dispatch(FetchStarted{})

	var fetchErr error
	if e.Online() {
		records, err := e.remote.List(ctx, token)
		if err == nil {
			merged := e.writeThrough(ctx, records)
			e.store.Dispatch(FetchSucceeded{Records: merged})
			return ListResult{Records: merged}
		}
		fetchErr = err
		e.logger.Warn(ctx, "fetch failed, serving cache", "error", err)
	}

	records, err := e.readCache(ctx)
	if err != nil {
		e.logger.Error(ctx, "cache read failed", "error", err)
		if fetchErr != nil {
			err = errors.Join(fetchErr, err)
		}
		e.store.Dispatch(FetchFellBack{Records: nil, Err: err})
		return ListResult{Records: []models.Record{}, FromCache: true, Err: err}
	}

	e.store.Dispatch(FetchFellBack{Records: records, Err: fetchErr})
	return ListResult{Records: records, FromCache: true, Err: fetchErr}
}

// writeThrough mirrors server records into the cache. Identifiers holding a
// pending operation keep it; the returned set shows pending creates and
// updates and hides pending deletes, so queued work stays visible. Synced
// entries the server no longer has are dropped.
func (e *Engine) writeThrough(ctx context.Context, records []models.Record) []models.Record {
	pending, err := e.pendingByID(ctx)
	if err != nil {
		e.logger.Warn(ctx, "cannot read pending operations", "error", err)
	}

	out := make([]models.Record, 0, len(records)+len(pending))
	for _, rec := range records {
		if p, ok := pending[rec.ID]; ok {
			if p.Status == models.StatusPendingUpdate {
				out = append(out, p)
			}
			delete(pending, rec.ID)
			continue
		}

		rec.Status = models.StatusSynced
		if err := e.storeRecord(ctx, rec); err != nil {
			e.logger.Warn(ctx, "write-through failed", "id", rec.ID, "error", err)
		}
		out = append(out, rec)
	}

	for _, p := range pending {
		if p.Status == models.StatusPendingCreate {
			out = append(out, p)
		}
	}

	e.pruneAbsent(ctx, records)
	return out
}

// pruneAbsent removes cache entries that are neither in records nor pending.
func (e *Engine) pruneAbsent(ctx context.Context, records []models.Record) {
	live := make(map[string]struct{}, len(records))
	for _, rec := range records {
		live[rec.ID] = struct{}{}
	}

	entries, err := e.cache.List(ctx)
	if err != nil {
		e.logger.Warn(ctx, "cannot prune cache", "error", err)
		return
	}
	for _, entry := range entries {
		if _, ok := live[entry.Key]; ok {
			continue
		}
		if err := e.dropUnlessPending(ctx, entry.Key); err != nil {
			e.logger.Warn(ctx, "cannot drop stale cache entry", "key", entry.Key, "error", err)
		}
	}
}

func (e *Engine) dropUnlessPending(ctx context.Context, key string) error {
	unlock := e.locks.Lock(key)
	defer unlock()

	raw, err := e.cache.Get(ctx, key)
	if err != nil || raw == nil {
		return err
	}
	if rec, err := decodeEntry(key, raw); err == nil && rec.Status.Pending() {
		return nil
	}
	e.logger.Debug(ctx, "dropping entry absent on server", "key", key)
	return e.cache.Remove(ctx, key)
}

func (e *Engine) storeRecord(ctx context.Context, rec models.Record) error {
	unlock := e.locks.Lock(rec.ID)
	defer unlock()

	// A write queued since pendingByID ran wins over the server copy.
	if cur, err := e.cache.Get(ctx, rec.ID); err == nil && cur != nil {
		if queued, err := decodeEntry(rec.ID, cur); err == nil && queued.Status.Pending() {
			return nil
		}
	}

	b, err := rec.Encode()
	if err != nil {
		return err
	}
	return e.cache.Set(ctx, rec.ID, b)
}

// readCache decodes every cache entry for an offline listing.
func (e *Engine) readCache(ctx context.Context) ([]models.Record, error) {
	entries, err := e.cache.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Record, 0, len(entries))
	for _, entry := range entries {
		rec, err := decodeEntry(entry.Key, entry.Value)
		if err != nil {
			e.logger.Debug(ctx, "dropping malformed cache entry", "key", entry.Key, "error", err)
			continue
		}
		// TODO: product review. Pending updates are hidden here while
		// pending creates and deletes are listed.
		if rec.Status == models.StatusPendingUpdate {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// pendingByID returns every decodable cache entry with pending work.
func (e *Engine) pendingByID(ctx context.Context) (map[string]models.Record, error) {
	entries, err := e.cache.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Record)
	for _, entry := range entries {
		rec, err := decodeEntry(entry.Key, entry.Value)
		if err != nil || !rec.Status.Pending() {
			continue
		}
		out[rec.ID] = rec
	}
	return out, nil
}

// decodeEntry parses a cache value; the key is authoritative for the id.
func decodeEntry(key string, value []byte) (models.Record, error) {
	rec, err := models.DecodeRecord(value)
	if err != nil {
		return models.Record{}, err
	}
	if rec.ID == "" {
		rec.ID = key
	}
	if rec.ID != key {
		return models.Record{}, fmt.Errorf("entry %q holds record %q", key, rec.ID)
	}
	return rec, nil
}

// BeginEdit marks id as the record open for editing and drops a conflict
// snapshot that belongs to another record. Use "" for a new record.
func (e *Engine) BeginEdit(id string) {
	e.store.Dispatch(EditStarted{ID: id})
}

// GetWithConflictCheck starts an edit of id and compares the server copy with
// localVersion. On divergence the server copy becomes the conflict snapshot
// and is returned; otherwise the snapshot is cleared and nil returned. The
// check is advisory: it never blocks later writes.
func (e *Engine) GetWithConflictCheck(ctx context.Context, token, id string, localVersion int64) (*models.ConflictSnapshot, error) {
	e.SetToken(token)
	e.store.Dispatch(EditStarted{ID: id})

	v, err, _ := e.fetchGroup.Do(id, func() (any, error) {
		return e.remote.Get(ctx, token, id)
	})
	if err != nil {
		e.logger.Warn(ctx, "conflict check skipped", "id", id, "error", err)
		return nil, fmt.Errorf("conflict check for %s: %w", id, err)
	}
	remote := v.(models.Record)

	if remote.Version == localVersion {
		e.store.Dispatch(ConflictCleared{})
		return nil, nil
	}

	snap := models.ConflictSnapshot{Remote: remote, LocalVersion: localVersion, DetectedAt: e.now()}
	e.store.Dispatch(ConflictDetected{Snapshot: snap})
	e.logger.Info(ctx, "version conflict", "id", id, "local_version", localVersion, "server_version", remote.Version)
	return &snap, nil
}

// Pending lists the queued operations in replay order.
func (e *Engine) Pending(ctx context.Context) ([]models.Record, error) {
	entries, err := e.cache.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Record
	for _, entry := range entries {
		rec, err := decodeEntry(entry.Key, entry.Value)
		if err != nil || !rec.Status.Pending() {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
