// Package common defines shared constants and sentinel errors used across
// client and server layers of citybreaks. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid username/password")

	// Transport errors.
	ErrUnavailable = errors.New("server unavailable")
)
