package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/store"
	"github.com/aussiebroadwan/pqauth/pkg/cryptox"
	"github.com/aussiebroadwan/pqauth/pkg/idx"
)

// SessionService manages browser login sessions at the authorization
// server. The cookie value is an opaque token; only its fingerprint hits
// the database.
type SessionService struct {
	Store store.Store
	TTL   time.Duration
}

const defaultSessionTTL = 12 * time.Hour

// Login authenticates the user and mints a fresh session. The returned
// token is the raw cookie value; it is never stored.
func (s *SessionService) Login(ctx context.Context, username, password string) (string, domain.Session, error) {
	users := &UserService{Store: s.Store}
	user, err := users.Authenticate(ctx, username, password)
	if err != nil {
		return "", domain.Session{}, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.Session{}, err
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	now := time.Now()
	session := domain.Session{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		AuthTime:  now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return "", domain.Session{}, err
	}

	return token, session, nil
}

// Resolve maps a cookie value back to its live session. Expired or
// unknown cookies come back as ErrLoginRequired.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, ErrLoginRequired
	}

	session, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrLoginRequired
		}
		return domain.Session{}, err
	}

	return session, nil
}

// Logout removes the session backing a cookie value. Unknown cookies are
// a no-op.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	session, err := s.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrLoginRequired) {
			return nil
		}
		return err
	}
	return s.Store.Sessions().DeleteSession(ctx, session.ID)
}
