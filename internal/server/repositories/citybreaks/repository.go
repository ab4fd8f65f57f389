// Package citybreaks persists the city breaks of each user.
package citybreaks

import (
	"context"

	"github.com/dmitrijs2005/citybreaks/internal/server/models"
)

// Repository is scoped by user: lookups for another user's id behave as if
// the record did not exist and return common.ErrNotFound.
type Repository interface {
	List(ctx context.Context, userID string) ([]*models.CityBreak, error)
	Get(ctx context.Context, userID, id string) (*models.CityBreak, error)
	// GetForUpdate is Get with a row lock held until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, userID, id string) (*models.CityBreak, error)
	Create(ctx context.Context, c *models.CityBreak) error
	Update(ctx context.Context, c *models.CityBreak) error
	Delete(ctx context.Context, userID, id string) error
}
