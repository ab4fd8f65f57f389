package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/dbx"
)

const (
	queryGet    = `SELECT value FROM metadata WHERE key = ?`
	queryList   = `SELECT key, value FROM metadata ORDER BY key`
	queryDelete = `DELETE FROM metadata WHERE key = ?`
	queryClear  = `DELETE FROM metadata`
	queryUpsert = `INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
)

// SQLiteRepository is the metadata table of the client database. It works
// on a *sql.DB or inside a transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns (nil, nil) when key is absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	switch err := r.db.QueryRowContext(ctx, queryGet, key).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("metadata get %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.exec(ctx, "set "+key, queryUpsert, key, value)
}

// Delete is a no-op for an absent key.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	return r.exec(ctx, "delete "+key, queryDelete, key)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	return r.exec(ctx, "clear", queryClear)
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, queryList)
	if err != nil {
		return nil, fmt.Errorf("metadata list: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("metadata list: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metadata list: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) exec(ctx context.Context, op, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("metadata %s: %w", op, err)
	}
	return nil
}
