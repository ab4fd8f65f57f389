package engine

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
)

// KeepLocal resolves the live conflict in favour of rec: its field values
// are written over the server copy with the version following the server's.
// When the server call fails the write is queued like any other save and the
// snapshot is cleared; replay carries the choice to the server.
func (e *Engine) KeepLocal(ctx context.Context, rec models.Record) (SaveResult, error) {
	snap := e.store.State().Conflict
	if snap == nil {
		return SaveResult{}, ErrNoConflict
	}
	if rec.ID != snap.RecordID() {
		return SaveResult{}, fmt.Errorf("%w: editing %q, conflict on %q", ErrConflictMismatch, rec.ID, snap.RecordID())
	}
	if !e.Online() {
		return SaveResult{}, ErrOffline
	}

	rec.Version = snap.Remote.Version + 1
	rec.Status = models.StatusSynced
	if err := rec.Validate(); err != nil {
		return SaveResult{}, err
	}

	e.store.Dispatch(SaveStarted{})

	unlock := e.locks.Lock(rec.ID)
	defer unlock()

	saved, err := e.remote.Update(ctx, e.Token(), rec)
	if err != nil {
		e.logger.Warn(ctx, "keep local failed, queueing", "id", rec.ID, "error", err)
		res, qerr := e.queueSave(ctx, rec, err)
		if qerr != nil {
			return SaveResult{}, fmt.Errorf("keep local %s: %w", rec.ID, qerr)
		}
		e.store.Dispatch(ConflictCleared{})
		e.logger.Info(ctx, "conflict resolved", "id", rec.ID, "choice", "local", "queued", true)
		return res, nil
	}

	saved.Status = models.StatusSynced
	if err := e.confirmLocked(ctx, saved.ID, saved); err != nil {
		e.logger.Warn(ctx, "write-through failed", "id", saved.ID, "error", err)
	}
	e.store.Dispatch(SaveSucceeded{Record: saved})
	e.logger.Info(ctx, "conflict resolved", "id", saved.ID, "choice", "local", "version", saved.Version)
	return SaveResult{Record: saved}, nil
}

// AdoptRemote resolves the live conflict in favour of the server copy, which
// is saved verbatim. Offline, the save is queued like any other.
func (e *Engine) AdoptRemote(ctx context.Context) (SaveResult, error) {
	snap := e.store.State().Conflict
	if snap == nil {
		return SaveResult{}, ErrNoConflict
	}

	res, err := e.Save(ctx, snap.Remote, e.Online())
	if err != nil {
		return SaveResult{}, fmt.Errorf("adopt remote %s: %w", snap.RecordID(), err)
	}
	e.store.Dispatch(ConflictCleared{})
	e.logger.Info(ctx, "conflict resolved", "id", snap.RecordID(), "choice", "remote", "queued", res.Queued)
	return res, nil
}
