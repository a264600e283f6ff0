package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/store"
	"github.com/aussiebroadwan/pqauth/pkg/cryptox"
)

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// Authenticate checks a username/password pair against the stored argon2
// hash. An unknown username and a wrong password are indistinguishable to
// the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}
