package users

import (
	"context"

	"github.com/dmitrijs2005/citybreaks/internal/server/models"
)

// Repository stores accounts. Create returns common.ErrAlreadyExists for a
// taken user name; GetUserByLogin returns common.ErrNotFound for an unknown one.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}
