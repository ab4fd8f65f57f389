package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/server/export"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/repomanager"
)

// ErrExportDisabled is returned when no object storage is configured.
var ErrExportDisabled = errors.New("export is not configured")

// ObjectStore is the part of export.S3Store used here.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte) error
	PresignGet(ctx context.Context, key string) (string, error)
}

type ExportService struct {
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	now         func() time.Time
}

// NewExportService accepts a nil store, in which case Export always fails
// with ErrExportDisabled.
func NewExportService(m repomanager.RepositoryManager, store ObjectStore) *ExportService {
	return &ExportService{repomanager: m, store: store, now: time.Now}
}

// Export uploads the user's city breaks as a JSON array and returns a
// presigned download link.
func (s *ExportService) Export(ctx context.Context, userID string) (string, error) {
	if s.store == nil {
		return "", ErrExportDisabled
	}

	list, err := s.repomanager.CityBreaks().List(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("error listing city breaks: %w", err)
	}
	if list == nil {
		list = []*models.CityBreak{}
	}

	body, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	key := export.StorageKey(userID, s.now().UTC())
	if err := s.store.Upload(ctx, key, body); err != nil {
		return "", err
	}

	return s.store.PresignGet(ctx, key)
}
