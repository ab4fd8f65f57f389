// Package client contains the network transports used by the sync engine:
// a JSON-over-HTTP record store client for the trip entry collection and a
// gRPC health prober feeding the connectivity monitor.
//
// Failures are mapped to the sentinels in package common so callers can tell
// a transport failure (common.ErrUnavailable) from a request rejection
// (common.ErrUnauthorized, common.ErrNotFound, common.ErrVersionConflict,
// common.ErrValidation).
package client
