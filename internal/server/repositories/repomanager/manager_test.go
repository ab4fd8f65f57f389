package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/citybreaks"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNew_EmptyDSNIsMemory(t *testing.T) {
	m, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepositoryManager{}, m)
}

func TestNew_DSNIsPostgres(t *testing.T) {
	db, _ := newDB(t)
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		assert.Equal(t, "postgres://x", dsn)
		return db, nil
	}
	defer func() { sqlOpen = orig }()

	m, err := New("postgres://x")
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)
}

func TestPostgres_Factories(t *testing.T) {
	db, _ := newDB(t)
	m := newPostgresRepositoryManager(db)

	assert.IsType(t, &users.PostgresRepository{}, m.Users())
	assert.IsType(t, &citybreaks.PostgresRepository{}, m.CityBreaks())
}

func TestPostgres_WithTx(t *testing.T) {
	db, mock := newDB(t)
	m := newPostgresRepositoryManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := m.WithTx(context.Background(), func(ctx context.Context, r Repos) error {
		assert.NotNil(t, r.Users)
		assert.NotNil(t, r.CityBreaks)
		return nil
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	err = m.WithTx(context.Background(), func(context.Context, Repos) error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Ping(t *testing.T) {
	db, mock := newDB(t)
	m := newPostgresRepositoryManager(db)

	mock.ExpectPing()
	require.NoError(t, m.Ping(context.Background()))
}

func TestRunMigrations(t *testing.T) {
	db, _ := newDB(t)
	m := newPostgresRepositoryManager(db)

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	gooseUpContext = func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." || got != db {
			return errors.New("unexpected call")
		}
		return nil
	}
	require.NoError(t, m.RunMigrations(context.Background()))

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err := m.RunMigrations(context.Background())
	require.Error(t, err)
	assert.Equal(t, "migrations: boom", err.Error())
}

func TestMemory_WithTxSharesRepositories(t *testing.T) {
	m := NewMemoryRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background()))
	require.NoError(t, m.Ping(context.Background()))

	err := m.WithTx(context.Background(), func(_ context.Context, r Repos) error {
		assert.Same(t, m.Users(), r.Users)
		assert.Same(t, m.CityBreaks(), r.CityBreaks)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, m.Close())
}
