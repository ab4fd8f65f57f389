// Package repositories opens the client SQLite database, applies migrations
// and exposes the repositories built on it.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/client/migrations"
	"github.com/dmitrijs2005/citybreaks/internal/client/repositories/cache"
	"github.com/dmitrijs2005/citybreaks/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Cache    *cache.SQLiteRepository
	Metadata *metadata.SQLiteRepository
	Session  *metadata.SessionStore
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// a single connection keeps ":memory:" databases intact and serializes writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate cache database: %w", err)
	}

	return &Repositories{
		DB:       db,
		Cache:    cache.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
		Session:  metadata.NewSessionStore(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
