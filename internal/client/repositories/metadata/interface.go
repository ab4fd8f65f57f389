// Package metadata stores small client-side settings such as the session
// token and the signed-in user name.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyToken    = "token"
	KeyUserName = "username"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
