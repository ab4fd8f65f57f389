package engine

import "errors"

var (
	// ErrNoConflict is returned by conflict resolution without a live snapshot.
	ErrNoConflict = errors.New("no conflict to resolve")
	// ErrConflictMismatch means the record does not match the conflict snapshot.
	ErrConflictMismatch = errors.New("record does not match conflict snapshot")
	// ErrOffline is returned by operations that need the server.
	ErrOffline = errors.New("offline")
)
