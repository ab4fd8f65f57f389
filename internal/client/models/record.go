// Package models defines the trip entry record shared by the cache, the
// record store client and the sync engine.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/shared"
)

// Status marks the pending local operation superimposed on a record.
type Status int

const (
	StatusSynced Status = iota
	StatusPendingCreate
	StatusPendingUpdate
	StatusPendingDelete
)

func (s Status) String() string {
	switch s {
	case StatusSynced:
		return "SYNCED"
	case StatusPendingCreate:
		return "PENDING_CREATE"
	case StatusPendingUpdate:
		return "PENDING_UPDATE"
	case StatusPendingDelete:
		return "PENDING_DELETE"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) Valid() bool {
	return s >= StatusSynced && s <= StatusPendingDelete
}

// Pending reports whether s carries work for replay.
func (s Status) Pending() bool {
	return s != StatusSynced
}

// Record is a single trip entry. ID is empty until the record is created on
// the server or assigned a local placeholder.
type Record struct {
	ID                string  `json:"_id,omitempty"`
	Name              string  `json:"name"`
	StartDate         string  `json:"startDate"`
	EndDate           string  `json:"endDate"`
	Price             float64 `json:"price"`
	TransportIncluded bool    `json:"transportIncluded"`
	UserID            string  `json:"userId"`
	Status            Status  `json:"status"`
	Version           int64   `json:"version"`
}

// DateLayout is the calendar date format used for StartDate and EndDate.
const DateLayout = "2006-01-02"

// placeholderPrefix marks identifiers generated locally for offline creates.
// Server identifiers never start with it.
const placeholderPrefix = "_"

// NewPlaceholderID returns a locally unique identifier for a record created
// while offline.
func NewPlaceholderID() (string, error) {
	s, err := shared.MakeRandBase36String(9)
	if err != nil {
		return "", fmt.Errorf("generate placeholder id: %w", err)
	}
	return placeholderPrefix + s, nil
}

// IsPlaceholderID reports whether id was generated by NewPlaceholderID.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}

// IsNew reports whether the server has not seen r yet.
func (r Record) IsNew() bool {
	return r.ID == "" || IsPlaceholderID(r.ID)
}

// NextEdit prepares r for a write: new records get version 1, existing ones
// are bumped by one, and the status is reset to synced.
func (r Record) NextEdit() Record {
	if r.IsNew() {
		r.Version = 1
	} else {
		r.Version++
	}
	r.Status = StatusSynced
	return r
}

// Validate checks field constraints. The returned error wraps common.ErrValidation.
func (r Record) Validate() error {
	var problems []string

	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is required")
	}
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) || r.Price < 0 {
		problems = append(problems, "price must be a non-negative number")
	}
	if r.Version < 0 {
		problems = append(problems, "version must be non-negative")
	}
	if !r.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %d", int(r.Status)))
	}

	start, startErr := parseDate(r.StartDate)
	if startErr != nil {
		problems = append(problems, "startDate: "+startErr.Error())
	}
	end, endErr := parseDate(r.EndDate)
	if endErr != nil {
		problems = append(problems, "endDate: "+endErr.Error())
	}
	if startErr == nil && endErr == nil && !start.IsZero() && !end.IsZero() && end.Before(start) {
		problems = append(problems, "endDate is before startDate")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// Encode serializes r for the durable cache.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRecord parses and validates a serialized record. Entries that fail
// either step are treated as malformed by callers.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}
