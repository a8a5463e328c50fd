package repository

import (
	"context"

	"github.com/splax/placefinder/internal/domain"
)

// UserRepository provides account lookups. The in-memory implementation holds
// a single seeded admin account; a durable implementation can replace it
// without changing the authentication flow.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int) (*domain.User, error)
}
