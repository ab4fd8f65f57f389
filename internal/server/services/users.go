// Package services contains server-side business logic. UserService handles
// registration, login and bearer token validation.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/server/auth"
	"github.com/dmitrijs2005/citybreaks/internal/server/config"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type UserService struct {
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		bcryptCost:    bcrypt.DefaultCost,
	}
}

// Signup creates an account and returns a token for it.
func (s *UserService) Signup(ctx context.Context, userName, password string) (string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must have at least %d characters", common.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repomanager.Users().Create(ctx, &models.User{UserName: userName, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return "", fmt.Errorf("user %q: %w", userName, common.ErrAlreadyExists)
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	return s.generateToken(u.ID)
}

// Login checks the credentials. Unknown users and wrong passwords both yield
// common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, error) {
	u, err := s.repomanager.Users().GetUserByLogin(ctx, strings.TrimSpace(userName))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}

	return s.generateToken(u.ID)
}

// UserIDFromToken validates a bearer token.
func (s *UserService) UserIDFromToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) generateToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
