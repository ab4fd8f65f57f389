package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/client/connectivity"
	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/sethvargo/go-retry"
)

// ReplayReport counts what one replay run did with the pending entries.
type ReplayReport struct {
	Replayed int
	Failed   int
	Skipped  int
}

func (r ReplayReport) String() string {
	return fmt.Sprintf("replayed %d, failed %d, skipped %d", r.Replayed, r.Failed, r.Skipped)
}

// Replay drains pending operations against the record store. Entries whose
// server call keeps failing stay in the cache for the next run. Concurrent
// calls share one run.
func (e *Engine) Replay(ctx context.Context) (ReplayReport, error) {
	v, err, _ := e.replayGroup.Do("replay", func() (any, error) {
		return e.replay(ctx)
	})
	if err != nil {
		return ReplayReport{}, err
	}
	return v.(ReplayReport), nil
}

// TriggerReplay starts a replay in the background. The run is detached from
// ctx cancellation: a disconnect makes the remaining calls fail and stay
// queued rather than aborting the run.
func (e *Engine) TriggerReplay(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if _, err := e.Replay(ctx); err != nil {
			e.logger.Error(ctx, "replay failed", "error", err)
		}
	}()
}

// Run follows connectivity transitions until ctx is done or transitions is
// closed, replaying once per offline to online transition.
func (e *Engine) Run(ctx context.Context, transitions <-chan connectivity.Transition) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case t, ok := <-transitions:
			if !ok {
				return nil
			}
			e.store.Dispatch(ConnectivityChanged{Online: t.Online})
			if t.Online {
				e.TriggerReplay(ctx)
			}
		}
	}
}

func (e *Engine) replay(ctx context.Context) (ReplayReport, error) {
	var report ReplayReport

	entries, err := e.cache.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list pending operations: %w", err)
	}

	e.store.Dispatch(ReplayStarted{})
	defer func() { e.store.Dispatch(ReplayFinished{Report: report}) }()

	e.logger.Info(ctx, "replay started", "entries", len(entries))
	for _, entry := range entries {
		switch done, err := e.replayEntry(ctx, entry.Key); {
		case err != nil:
			report.Failed++
			e.logger.Warn(ctx, "replay left entry queued", "key", entry.Key, "error", err)
		case done:
			report.Replayed++
		default:
			report.Skipped++
		}
	}
	e.logger.Info(ctx, "replay finished", "replayed", report.Replayed, "failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}

// replayEntry replays the operation stored under key. It reports false when
// there was nothing to do.
func (e *Engine) replayEntry(ctx context.Context, key string) (bool, error) {
	unlock := e.locks.Lock(key)
	defer unlock()

	// Re-read under the lock: an interactive write may have replaced the
	// entry since the listing.
	raw, err := e.cache.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	rec, err := decodeEntry(key, raw)
	if err != nil {
		e.logger.Debug(ctx, "skipping malformed cache entry", "key", key, "error", err)
		return false, nil
	}

	switch {
	case rec.Status == models.StatusSynced:
		return false, nil
	case rec.Status == models.StatusPendingDelete:
		return true, e.replayDelete(ctx, rec)
	case models.IsPlaceholderID(rec.ID):
		return true, e.replayCreate(ctx, rec)
	default:
		return true, e.replayUpdate(ctx, rec)
	}
}

func (e *Engine) replayCreate(ctx context.Context, rec models.Record) error {
	placeholder := rec.ID
	rec.ID = ""
	rec.Status = models.StatusSynced

	var saved models.Record
	err := e.withRetry(ctx, func(ctx context.Context) error {
		var err error
		saved, err = e.remote.Create(ctx, e.Token(), rec)
		return err
	})
	if err != nil {
		return err
	}

	saved.Status = models.StatusSynced
	b, err := saved.Encode()
	if err != nil {
		return err
	}
	// The placeholder lock is held by the caller.
	unlock := e.locks.Lock(saved.ID)
	err = e.cache.Replace(ctx, placeholder, saved.ID, b)
	unlock()
	if err != nil {
		return fmt.Errorf("store confirmed create %s: %w", saved.ID, err)
	}
	e.rememberConfirmed(placeholder, saved.ID)

	e.store.Dispatch(RecordConfirmed{PreviousID: placeholder, Record: saved})
	e.logger.Info(ctx, "replayed create", "placeholder", placeholder, "id", saved.ID)
	return nil
}

func (e *Engine) replayUpdate(ctx context.Context, rec models.Record) error {
	rec.Status = models.StatusSynced

	var saved models.Record
	err := e.withRetry(ctx, func(ctx context.Context) error {
		var err error
		saved, err = e.remote.Update(ctx, e.Token(), rec)
		return err
	})
	if err != nil {
		return err
	}

	saved.Status = models.StatusSynced
	b, err := saved.Encode()
	if err != nil {
		return err
	}
	if err := e.cache.Set(ctx, rec.ID, b); err != nil {
		return fmt.Errorf("store confirmed update %s: %w", rec.ID, err)
	}

	e.store.Dispatch(RecordConfirmed{PreviousID: rec.ID, Record: saved})
	e.logger.Info(ctx, "replayed update", "id", rec.ID, "version", saved.Version)
	return nil
}

func (e *Engine) replayDelete(ctx context.Context, rec models.Record) error {
	err := e.withRetry(ctx, func(ctx context.Context) error {
		err := e.remote.Delete(ctx, e.Token(), rec.ID)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	if err := e.cache.Remove(ctx, rec.ID); err != nil {
		return fmt.Errorf("drop replayed delete %s: %w", rec.ID, err)
	}

	e.store.Dispatch(RecordPurged{ID: rec.ID})
	e.logger.Info(ctx, "replayed delete", "id", rec.ID)
	return nil
}

// withRetry runs f with exponential backoff. Only transport failures are
// retried; a rejection by the server ends the attempt at once.
func (e *Engine) withRetry(ctx context.Context, f func(context.Context) error) error {
	attempts := e.replayAttempts
	if attempts == 0 {
		attempts = 1
	}
	base := e.replayBaseDelay
	if base <= 0 {
		base = time.Millisecond
	}
	b := retry.WithMaxRetries(attempts-1, retry.NewExponential(base))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := f(ctx)
		if errors.Is(err, common.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}
