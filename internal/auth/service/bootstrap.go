package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/store"
	"github.com/aussiebroadwan/pqauth/pkg/cryptox"
	"github.com/aussiebroadwan/pqauth/pkg/idx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

var (
	ErrBootstrapAlready              = errors.New("system already bootstrapped")
	ErrBootstrapFailedToCreateAdmin  = errors.New("failed to create initial user")
	ErrBootstrapFailedToCreateClient = errors.New("failed to create client")
)

// BootstrapService seeds an empty database with the first user and a
// confidential relying-party client so the flow is usable out of the box.
type BootstrapService struct {
	Store store.Store
}

// BootstrapResult reports the generated credentials. The password and
// client secret are only ever available here; the database holds hashes.
type BootstrapResult struct {
	UserID       string
	Password     string
	ClientID     string
	ClientSecret string
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	userEmpty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	clientEmpty, err := s.Store.Clients().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !userEmpty && !clientEmpty, nil
}

// Bootstrap creates the initial user and client. When req.Password is
// empty a random one is generated and returned in the result.
func (s *BootstrapService) Bootstrap(ctx context.Context, req domain.BootstrapData) (*BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, _ := s.IsBootstrapped(ctx); bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return nil, ErrBootstrapAlready
	}

	password := req.Password
	if password == "" {
		var err error
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return nil, ErrBootstrapFailedToCreateAdmin
		}
	}

	passHash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash initial password", slog.Any("error", err))
		return nil, ErrBootstrapFailedToCreateAdmin
	}

	clientSecret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		l.Error("failed to generate client secret", slog.Any("error", err))
		return nil, ErrBootstrapFailedToCreateClient
	}

	clientSecretHash, err := cryptox.HashPassword(clientSecret)
	if err != nil {
		l.Error("failed to hash client secret", slog.Any("error", err))
		return nil, ErrBootstrapFailedToCreateClient
	}

	userID := idx.New().String()
	clientID := idx.New().String()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Users().CreateUser(ctx, domain.User{
			ID:           userID,
			Username:     req.Username,
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: passHash,
		})
		if err != nil {
			l.Error("failed to create initial user",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
			return ErrBootstrapFailedToCreateAdmin
		}

		scopes := req.ClientScopes
		if len(scopes) == 0 {
			scopes = []string{"openid", "profile", "email"}
		}

		err = tx.Clients().CreateClient(ctx, domain.Client{
			ID:            clientID,
			Name:          req.ClientName,
			SecretHash:    clientSecretHash,
			RedirectURIs:  req.RedirectURIs,
			GrantTypes:    []string{"authorization_code"},
			ResponseTypes: []string{"code"},
			Scopes:        scopes,
			Protected:     true, // Bootstrap client cannot be deleted
		})
		if err != nil {
			l.Error("failed to create client",
				slog.String("client_id", clientID),
				slog.Any("error", err),
			)
			return ErrBootstrapFailedToCreateClient
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("successfully bootstrapped system",
		slog.String("user_id", userID),
		slog.String("client_id", clientID),
	)

	return &BootstrapResult{
		UserID:       userID,
		Password:     password,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}, nil
}
