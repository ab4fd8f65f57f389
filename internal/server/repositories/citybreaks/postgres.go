package citybreaks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/dbx"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
)

const selectColumns = `id, user_id, name, start_date, end_date, price, transport_included, version, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCityBreak(s rowScanner) (*models.CityBreak, error) {
	c := &models.CityBreak{}
	err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.StartDate, &c.EndDate, &c.Price,
		&c.TransportIncluded, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.CityBreak, error) {
	query := `SELECT ` + selectColumns + ` FROM city_breaks
		 WHERE user_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.CityBreak
	for rows.Next() {
		c, err := scanCityBreak(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) get(ctx context.Context, query, userID, id string) (*models.CityBreak, error) {
	c, err := scanCityBreak(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.CityBreak, error) {
	query := `SELECT ` + selectColumns + ` FROM city_breaks
		 WHERE id = $1 AND user_id = $2
		 `
	return r.get(ctx, query, userID, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID, id string) (*models.CityBreak, error) {
	query := `SELECT ` + selectColumns + ` FROM city_breaks
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE
		 `
	return r.get(ctx, query, userID, id)
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.CityBreak) error {
	query :=
		`INSERT INTO city_breaks (id, user_id, name, start_date, end_date, price, transport_included, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, c.ID, c.UserID, c.Name, c.StartDate, c.EndDate,
		c.Price, c.TransportIncluded, c.Version).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.CityBreak) error {
	query :=
		`UPDATE city_breaks
		 SET name = $3, start_date = $4, end_date = $5, price = $6, transport_included = $7,
		     version = $8, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, c.ID, c.UserID, c.Name, c.StartDate, c.EndDate,
		c.Price, c.TransportIncluded, c.Version).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM city_breaks WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}
