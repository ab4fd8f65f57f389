package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in a map keyed by user name.
type MemoryRepository struct {
	mu     sync.RWMutex
	byName map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	r.byName[user.UserName] = *user
	return user, nil
}

func (r *MemoryRepository) GetUserByLogin(_ context.Context, userName string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[userName]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}
