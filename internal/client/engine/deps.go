package engine

import (
	"context"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/client/repositories/cache"
)

// RecordStore is the remote collection of trip entries.
type RecordStore interface {
	List(ctx context.Context, token string) ([]models.Record, error)
	Get(ctx context.Context, token, id string) (models.Record, error)
	Create(ctx context.Context, token string, rec models.Record) (models.Record, error)
	Update(ctx context.Context, token string, rec models.Record) (models.Record, error)
	Delete(ctx context.Context, token, id string) error
}

// Cache is the durable key/value store holding serialized records.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	List(ctx context.Context) ([]cache.Entry, error)
	Replace(ctx context.Context, oldKey, newKey string, value []byte) error
}

// Connectivity reports whether the record store is believed reachable.
type Connectivity interface {
	Online() bool
}
