package auth

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/splax/placefinder/internal/domain"
	"github.com/splax/placefinder/internal/repository"
	"github.com/splax/placefinder/pkg/config"
	"github.com/splax/placefinder/pkg/crypto"
	jwtpkg "github.com/splax/placefinder/pkg/jwt"
)

// ErrInvalidCredentials covers both unknown email and wrong password so the
// response never reveals which check failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles authentication workflows.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// Login authenticates an account and returns it with a session token.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := jwtpkg.Generate(user.ID, user.Email, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// Authorize validates a bearer token and returns the associated user and claims.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, *jwtpkg.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, nil, jwtpkg.ErrInvalidToken
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Profile returns the account for a verified identity.
func (s Service) Profile(ctx context.Context, id int) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}
