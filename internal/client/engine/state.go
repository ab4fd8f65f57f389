package engine

import (
	"slices"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
)

// State is the observable engine state. Values handed out by Store are
// copies; mutating them has no effect on the engine.
type State struct {
	Records []models.Record

	Fetching bool
	Saving   bool
	Deleting bool

	FetchErr  error
	SaveErr   error
	DeleteErr error

	// Editing is the id of the record open for editing, if any.
	Editing  string
	Conflict *models.ConflictSnapshot

	Online    bool
	Replaying bool

	// Notice is the last informational message, e.g. a write queued offline.
	Notice string
}

func (s State) clone() State {
	out := s
	out.Records = slices.Clone(s.Records)
	if s.Conflict != nil {
		c := *s.Conflict
		out.Conflict = &c
	}
	return out
}

// Find returns the in-memory record with the given id.
func (s State) Find(id string) (models.Record, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return models.Record{}, false
}

func upsert(records []models.Record, rec models.Record) []models.Record {
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			return records
		}
	}
	return append(records, rec)
}

func without(records []models.Record, id string) []models.Record {
	return slices.DeleteFunc(records, func(r models.Record) bool { return r.ID == id })
}

// replaceID swaps the record stored under oldID for rec, keeping its position.
func replaceID(records []models.Record, oldID string, rec models.Record) []models.Record {
	if oldID == rec.ID {
		return upsert(records, rec)
	}
	records = without(records, rec.ID)
	for i := range records {
		if records[i].ID == oldID {
			records[i] = rec
			return records
		}
	}
	return append(records, rec)
}
