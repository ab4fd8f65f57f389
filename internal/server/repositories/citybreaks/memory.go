package citybreaks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
)

// MemoryRepository is the storage used when no database DSN is configured.
// Records are copied on the way in and out.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]models.CityBreak
	now  func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows: make(map[string]models.CityBreak),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]*models.CityBreak, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.CityBreak
	for _, c := range r.rows {
		if c.UserID == userID {
			c := c
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *MemoryRepository) Get(_ context.Context, userID, id string) (*models.CityBreak, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.rows[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrNotFound
	}
	return &c, nil
}

// GetForUpdate takes no lock; callers serialize through the manager.
func (r *MemoryRepository) GetForUpdate(ctx context.Context, userID, id string) (*models.CityBreak, error) {
	return r.Get(ctx, userID, id)
}

func (r *MemoryRepository) Create(_ context.Context, c *models.CityBreak) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[c.ID]; ok {
		return common.ErrAlreadyExists
	}
	now := r.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.rows[c.ID] = *c
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, c *models.CityBreak) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.rows[c.ID]
	if !ok || old.UserID != c.UserID {
		return common.ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = r.now()
	r.rows[c.ID] = *c
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.rows[id]
	if !ok || c.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
