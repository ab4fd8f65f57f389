package models

import "time"

// ConflictSnapshot holds the server copy of a record whose version differs
// from the one being edited locally.
type ConflictSnapshot struct {
	Remote       Record
	LocalVersion int64
	DetectedAt   time.Time
}

// RecordID is the identifier of the record open for editing.
func (c ConflictSnapshot) RecordID() string {
	return c.Remote.ID
}
