package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/common"
)

// SaveResult is the outcome of a successful Save.
type SaveResult struct {
	// Record is the server-confirmed copy, or the queued local copy.
	Record models.Record
	// Queued is set when the write is waiting for replay.
	Queued bool
}

// Save writes rec. The caller prepares it with models.Record.NextEdit.
// Connected: create or update on the server, then write through. Offline, or
// when the server call fails: persist a pending operation and report success
// with Queued set. Only validation and cache failures are returned as errors.
// The record's lock is held across the server call, so a replay of the same
// record runs strictly before or after.
func (e *Engine) Save(ctx context.Context, rec models.Record, connected bool) (SaveResult, error) {
	if err := rec.Validate(); err != nil {
		e.store.Dispatch(SaveFailed{Err: err})
		return SaveResult{}, err
	}

	e.store.Dispatch(SaveStarted{})

	rec, unlock, err := e.lockRecord(ctx, rec)
	if err != nil {
		e.store.Dispatch(SaveFailed{Err: err})
		return SaveResult{}, err
	}
	defer unlock()

	if !connected {
		return e.queueSave(ctx, rec, nil)
	}

	saved, err := e.saveRemote(ctx, rec)
	if err != nil {
		e.logger.Warn(ctx, "save failed, queueing", "id", rec.ID, "error", err)
		return e.queueSave(ctx, rec, err)
	}

	saved.Status = models.StatusSynced
	if err := e.confirmLocked(ctx, rec.ID, saved); err != nil {
		e.logger.Warn(ctx, "write-through failed", "id", saved.ID, "error", err)
	}
	if rec.ID != "" && rec.ID != saved.ID {
		e.store.Dispatch(RecordConfirmed{PreviousID: rec.ID, Record: saved})
	}
	e.store.Dispatch(SaveSucceeded{Record: saved})
	return SaveResult{Record: saved}, nil
}

func (e *Engine) saveRemote(ctx context.Context, rec models.Record) (models.Record, error) {
	token := e.Token()
	if rec.IsNew() {
		rec.ID = ""
		return e.remote.Create(ctx, token, rec)
	}
	return e.remote.Update(ctx, token, rec)
}

// lockRecord takes the lock for rec.ID and returns its release function. A
// placeholder whose create was confirmed in the meantime is moved to its
// server id: the edit becomes an update following the confirmed version.
// A record without id needs no lock.
func (e *Engine) lockRecord(ctx context.Context, rec models.Record) (models.Record, func(), error) {
	if rec.ID == "" {
		return rec, func() {}, nil
	}
	unlock := e.locks.Lock(rec.ID)
	if !models.IsPlaceholderID(rec.ID) {
		return rec, unlock, nil
	}

	serverID, ok := e.confirmedID(rec.ID)
	if !ok {
		return rec, unlock, nil
	}
	raw, err := e.cache.Get(ctx, rec.ID)
	if err != nil {
		unlock()
		return rec, nil, fmt.Errorf("read %s: %w", rec.ID, err)
	}
	if raw != nil {
		return rec, unlock, nil
	}
	unlock()

	placeholder := rec.ID
	unlock = e.locks.Lock(serverID)
	rec.ID = serverID
	raw, err = e.cache.Get(ctx, serverID)
	if err != nil {
		unlock()
		return rec, nil, fmt.Errorf("read %s: %w", serverID, err)
	}
	if raw != nil {
		if cur, err := decodeEntry(serverID, raw); err == nil && cur.Version >= rec.Version {
			rec.Version = cur.Version + 1
		}
	}
	e.logger.Debug(ctx, "placeholder already confirmed", "placeholder", placeholder, "id", serverID)
	return rec, unlock, nil
}

// rememberConfirmed records that placeholder became serverID.
func (e *Engine) rememberConfirmed(placeholder, serverID string) {
	e.confirmedMu.Lock()
	e.confirmed[placeholder] = serverID
	e.confirmedMu.Unlock()
}

func (e *Engine) confirmedID(placeholder string) (string, bool) {
	e.confirmedMu.Lock()
	defer e.confirmedMu.Unlock()
	id, ok := e.confirmed[placeholder]
	return id, ok
}

// confirmLocked stores a server-confirmed record, retiring the entry it was
// known under before (a placeholder or the same id). The caller holds the
// lock for previousID.
func (e *Engine) confirmLocked(ctx context.Context, previousID string, saved models.Record) error {
	b, err := saved.Encode()
	if err != nil {
		return err
	}
	if previousID == saved.ID {
		return e.cache.Set(ctx, saved.ID, b)
	}

	unlock := e.locks.Lock(saved.ID)
	defer unlock()
	if previousID == "" {
		return e.cache.Set(ctx, saved.ID, b)
	}
	if err := e.cache.Replace(ctx, previousID, saved.ID, b); err != nil {
		return err
	}
	e.rememberConfirmed(previousID, saved.ID)
	return nil
}

// queueSave persists rec as a pending create or update. The caller holds
// the lock for rec.ID; a freshly assigned placeholder is locked here.
func (e *Engine) queueSave(ctx context.Context, rec models.Record, cause error) (SaveResult, error) {
	if rec.ID == "" {
		id, err := e.newID()
		if err != nil {
			e.store.Dispatch(SaveFailed{Err: err})
			return SaveResult{}, err
		}
		rec.ID = id
		unlock := e.locks.Lock(id)
		defer unlock()
	}
	if models.IsPlaceholderID(rec.ID) {
		rec.Status = models.StatusPendingCreate
	} else {
		rec.Status = models.StatusPendingUpdate
	}

	if err := e.persistLocked(ctx, rec); err != nil {
		err = fmt.Errorf("queue save of %s: %w", rec.ID, err)
		e.logger.Error(ctx, "cannot queue save", "id", rec.ID, "error", err)
		e.store.Dispatch(SaveFailed{Err: err})
		return SaveResult{}, err
	}

	e.logger.Info(ctx, "save queued", "id", rec.ID, "status", rec.Status.String())
	e.store.Dispatch(SaveQueued{Record: rec, Cause: cause})
	return SaveResult{Record: rec, Queued: true}, nil
}

// persistLocked writes rec under its id. The caller holds the lock.
func (e *Engine) persistLocked(ctx context.Context, rec models.Record) error {
	b, err := rec.Encode()
	if err != nil {
		return err
	}
	return e.cache.Set(ctx, rec.ID, b)
}

// RemoveResult is the outcome of a successful Remove.
type RemoveResult struct {
	Queued bool
}

// Remove deletes rec. Connected: delete on the server and drop the cache
// entry. Offline, or when the server call fails: persist a pending delete.
// Either way the record leaves the in-memory set immediately.
func (e *Engine) Remove(ctx context.Context, rec models.Record, connected bool) (RemoveResult, error) {
	if rec.ID == "" {
		err := fmt.Errorf("%w: record has no id", common.ErrValidation)
		e.store.Dispatch(DeleteFailed{Err: err})
		return RemoveResult{}, err
	}

	e.store.Dispatch(DeleteStarted{})

	rec, unlock, err := e.lockRecord(ctx, rec)
	if err != nil {
		e.store.Dispatch(DeleteFailed{Err: err})
		return RemoveResult{}, err
	}
	defer unlock()

	// The server never saw a placeholder; dropping the local entry is enough.
	if models.IsPlaceholderID(rec.ID) {
		if err := e.cache.Remove(ctx, rec.ID); err != nil {
			e.store.Dispatch(DeleteFailed{Err: err})
			return RemoveResult{}, err
		}
		e.store.Dispatch(DeleteSucceeded{ID: rec.ID})
		return RemoveResult{}, nil
	}

	if !connected {
		return e.queueDelete(ctx, rec, nil)
	}

	err = e.remote.Delete(ctx, e.Token(), rec.ID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		e.logger.Warn(ctx, "delete failed, queueing", "id", rec.ID, "error", err)
		return e.queueDelete(ctx, rec, err)
	}

	if err := e.cache.Remove(ctx, rec.ID); err != nil {
		e.logger.Warn(ctx, "cannot drop cache entry", "id", rec.ID, "error", err)
	}
	e.store.Dispatch(DeleteSucceeded{ID: rec.ID})
	return RemoveResult{}, nil
}

// queueDelete persists a pending delete. The caller holds the lock for rec.ID.
func (e *Engine) queueDelete(ctx context.Context, rec models.Record, cause error) (RemoveResult, error) {
	rec.Status = models.StatusPendingDelete
	if err := e.persistLocked(ctx, rec); err != nil {
		err = fmt.Errorf("queue delete of %s: %w", rec.ID, err)
		e.logger.Error(ctx, "cannot queue delete", "id", rec.ID, "error", err)
		e.store.Dispatch(DeleteFailed{Err: err})
		return RemoveResult{}, err
	}

	e.logger.Info(ctx, "delete queued", "id", rec.ID)
	e.store.Dispatch(DeleteQueued{ID: rec.ID, Cause: cause})
	return RemoveResult{Queued: true}, nil
}
