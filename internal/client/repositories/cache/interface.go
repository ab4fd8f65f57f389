// Package cache is the durable key/value store behind offline operation.
// Values are serialized records keyed by record identifier (server id or
// local placeholder); the table survives process restarts.
package cache

import "context"

// Entry is one raw cache row.
type Entry struct {
	Key   string
	Value []byte
}

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set inserts or overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every key in ascending order.
	Keys(ctx context.Context) ([]string, error)
	// List returns every entry in ascending key order.
	List(ctx context.Context) ([]Entry, error)
	// Replace removes oldKey and stores value under newKey in one step.
	Replace(ctx context.Context, oldKey, newKey string, value []byte) error
}
