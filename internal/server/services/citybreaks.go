package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Notifier fans a committed change out to the owner's live connections.
type Notifier interface {
	Publish(ctx context.Context, userID string, t models.ChangeType, c *models.CityBreak)
}

// CityBreakService implements the versioned record store. A create assigns
// version 1; an update stores version stored+1 and is refused when the
// caller's copy is older than the stored one.
type CityBreakService struct {
	repomanager repomanager.RepositoryManager
	notifier    Notifier
	logger      logging.Logger
	newID       func() string
}

func NewCityBreakService(m repomanager.RepositoryManager, n Notifier, l logging.Logger) *CityBreakService {
	return &CityBreakService{
		repomanager: m,
		notifier:    n,
		logger:      l.With("module", "citybreaks"),
		newID:       uuid.NewString,
	}
}

func (s *CityBreakService) List(ctx context.Context, userID string) ([]*models.CityBreak, error) {
	list, err := s.repomanager.CityBreaks().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing city breaks: %w", err)
	}
	if list == nil {
		list = []*models.CityBreak{}
	}
	return list, nil
}

func (s *CityBreakService) Get(ctx context.Context, userID, id string) (*models.CityBreak, error) {
	return s.repomanager.CityBreaks().Get(ctx, userID, id)
}

func (s *CityBreakService) Create(ctx context.Context, userID string, in models.CityBreak) (*models.CityBreak, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c := in
	c.ID = s.newID()
	c.UserID = userID
	c.Version = 1

	if err := s.repomanager.CityBreaks().Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("error creating city break: %w", err)
	}

	s.logger.Info(ctx, "city break created", "user_id", userID, "id", c.ID)
	s.publish(ctx, userID, models.ChangeCreated, &c)
	return &c, nil
}

func (s *CityBreakService) Update(ctx context.Context, userID, id string, in models.CityBreak) (*models.CityBreak, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c := in
	c.ID = id
	c.UserID = userID

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		stored, err := r.CityBreaks.GetForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if in.Version < stored.Version {
			return fmt.Errorf("%w: %s has version %d, got %d", common.ErrVersionConflict, id, stored.Version, in.Version)
		}
		c.Version = stored.Version + 1
		return r.CityBreaks.Update(ctx, &c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "city break updated", "user_id", userID, "id", id, "version", c.Version)
	s.publish(ctx, userID, models.ChangeUpdated, &c)
	return &c, nil
}

func (s *CityBreakService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repomanager.CityBreaks().Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "city break deleted", "user_id", userID, "id", id)
	return nil
}

func (s *CityBreakService) publish(ctx context.Context, userID string, t models.ChangeType, c *models.CityBreak) {
	if s.notifier == nil {
		return
	}
	cp := *c
	s.notifier.Publish(ctx, userID, t, &cp)
}
