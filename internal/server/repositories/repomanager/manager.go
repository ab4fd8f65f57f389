// Package repomanager picks the storage backend of the server and hands out
// repositories bound to it, optionally inside a transaction.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/citybreaks"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/users"
)

// Repos is a set of repositories sharing one transaction.
type Repos struct {
	Users      users.Repository
	CityBreaks citybreaks.Repository
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Users() users.Repository
	CityBreaks() citybreaks.Repository
	// WithTx runs fn with repositories that commit together when fn
	// returns nil.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	Close() error
}

// New returns a PostgreSQL manager for a non-empty dsn and an in-memory one
// otherwise.
func New(dsn string) (RepositoryManager, error) {
	if dsn == "" {
		return NewMemoryRepositoryManager(), nil
	}
	m, err := NewPostgresRepositoryManager(dsn)
	if err != nil {
		return nil, err
	}
	return m, nil
}
