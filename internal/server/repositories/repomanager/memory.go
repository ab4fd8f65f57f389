package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/citybreaks"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Transactions
// are serialized and have no rollback.
type MemoryRepositoryManager struct {
	txMu       sync.Mutex
	users      *users.MemoryRepository
	cityBreaks *citybreaks.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:      users.NewMemoryRepository(),
		cityBreaks: citybreaks.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) CityBreaks() citybreaks.Repository {
	return m.cityBreaks
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, Repos{Users: m.users, CityBreaks: m.cityBreaks})
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
