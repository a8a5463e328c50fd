package memory

import (
	"context"
	"time"

	"github.com/splax/placefinder/internal/domain"
	"github.com/splax/placefinder/internal/repository"
)

// Store is an in-memory user repository seeded once at construction and
// read-only afterwards, so concurrent lookups need no locking.
type Store struct {
	users []domain.User
}

// NewStore seeds the store with the single admin account.
func NewStore(adminEmail, adminName string, passwordHash []byte) *Store {
	return &Store{
		users: []domain.User{{
			ID:           1,
			Email:        adminEmail,
			Name:         adminName,
			PasswordHash: passwordHash,
			CreatedAt:    time.Now().UTC(),
		}},
	}
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for i := range s.users {
		if s.users[i].Email == email {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetUserByID returns the user with the given id.
func (s *Store) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}
