package engine

import (
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
)

// Event is a state transition. The set of implementations is closed: only
// types in this file satisfy it, and reduce handles every one of them.
type Event interface {
	isEvent()
}

type (
	FetchStarted struct{}
	// FetchSucceeded carries the server set merged with pending local work.
	FetchSucceeded struct{ Records []models.Record }
	// FetchFellBack carries records served from the cache. Err is the
	// reason the server was not used, nil when simply offline.
	FetchFellBack struct {
		Records []models.Record
		Err     error
	}

	SaveStarted struct{}
	// SaveSucceeded carries the server-confirmed record.
	SaveSucceeded struct{ Record models.Record }
	// SaveQueued carries a record persisted as a pending operation.
	SaveQueued struct {
		Record models.Record
		Cause  error
	}
	SaveFailed struct{ Err error }

	DeleteStarted   struct{}
	DeleteSucceeded struct{ ID string }
	DeleteQueued    struct {
		ID    string
		Cause error
	}
	DeleteFailed struct{ Err error }

	// RecordConfirmed is a replayed create or update accepted by the server.
	// PreviousID is the placeholder or server id the entry was queued under.
	RecordConfirmed struct {
		PreviousID string
		Record     models.Record
	}
	// RecordPurged is a replayed delete accepted by the server.
	RecordPurged struct{ ID string }

	EditStarted      struct{ ID string }
	ConflictDetected struct{ Snapshot models.ConflictSnapshot }
	ConflictCleared  struct{}

	ConnectivityChanged struct{ Online bool }
	ReplayStarted       struct{}
	ReplayFinished      struct{ Report ReplayReport }
)

func (FetchStarted) isEvent()        {}
func (FetchSucceeded) isEvent()      {}
func (FetchFellBack) isEvent()       {}
func (SaveStarted) isEvent()         {}
func (SaveSucceeded) isEvent()       {}
func (SaveQueued) isEvent()          {}
func (SaveFailed) isEvent()          {}
func (DeleteStarted) isEvent()       {}
func (DeleteSucceeded) isEvent()     {}
func (DeleteQueued) isEvent()        {}
func (DeleteFailed) isEvent()        {}
func (RecordConfirmed) isEvent()     {}
func (RecordPurged) isEvent()        {}
func (EditStarted) isEvent()         {}
func (ConflictDetected) isEvent()    {}
func (ConflictCleared) isEvent()     {}
func (ConnectivityChanged) isEvent() {}
func (ReplayStarted) isEvent()       {}
func (ReplayFinished) isEvent()      {}

const (
	noticeSavedLocally   = "saved locally, will sync later"
	noticeDeletedLocally = "deleted locally, will sync later"
)

// reduce returns the state after ev. s is owned by the caller and may be
// modified in place.
func reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case FetchStarted:
		s.Fetching = true
		s.FetchErr = nil

	case FetchSucceeded:
		s.Fetching = false
		s.FetchErr = nil
		s.Records = e.Records

	case FetchFellBack:
		s.Fetching = false
		s.FetchErr = e.Err
		s.Records = e.Records

	case SaveStarted:
		s.Saving = true
		s.SaveErr = nil

	case SaveSucceeded:
		s.Saving = false
		s.Records = upsert(s.Records, e.Record)
		s.Conflict = nil

	case SaveQueued:
		s.Saving = false
		s.Records = upsert(s.Records, e.Record)
		s.Notice = noticeSavedLocally

	case SaveFailed:
		s.Saving = false
		s.SaveErr = e.Err

	case DeleteStarted:
		s.Deleting = true
		s.DeleteErr = nil

	case DeleteSucceeded:
		s.Deleting = false
		s.Records = without(s.Records, e.ID)

	case DeleteQueued:
		s.Deleting = false
		s.Records = without(s.Records, e.ID)
		s.Notice = noticeDeletedLocally

	case DeleteFailed:
		s.Deleting = false
		s.DeleteErr = e.Err

	case RecordConfirmed:
		s.Records = replaceID(s.Records, e.PreviousID, e.Record)
		if s.Editing == e.PreviousID {
			s.Editing = e.Record.ID
		}

	case RecordPurged:
		s.Records = without(s.Records, e.ID)

	case EditStarted:
		s.Editing = e.ID
		if s.Conflict != nil && s.Conflict.RecordID() != e.ID {
			s.Conflict = nil
		}

	case ConflictDetected:
		// Late result of a check for a record no longer being edited.
		if s.Editing != e.Snapshot.RecordID() {
			break
		}
		snap := e.Snapshot
		s.Conflict = &snap

	case ConflictCleared:
		s.Conflict = nil

	case ConnectivityChanged:
		s.Online = e.Online

	case ReplayStarted:
		s.Replaying = true

	case ReplayFinished:
		s.Replaying = false

	default:
		panic(fmt.Sprintf("engine: unhandled event %T", ev))
	}
	return s
}
