package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/store"
	"github.com/aussiebroadwan/pqauth/pkg/cryptox"
	"github.com/aussiebroadwan/pqauth/pkg/idx"
	"github.com/aussiebroadwan/pqauth/pkg/jwtx"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

type TokenService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Issuer     string
	AccessTTL  time.Duration
	IDTokenTTL time.Duration
}

// ExchangeRequest carries the token endpoint form parameters.
type ExchangeRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
}

// Exchange implements the authorization_code grant.
//
// Client authentication is checked before anything about the grant, so a
// bad secret never reveals whether the code exists. Redemption itself is
// a compare-and-set inside one transaction: of two concurrent exchanges
// of the same code exactly one succeeds and the other gets
// ErrInvalidGrant.
func (s *TokenService) Exchange(ctx context.Context, req ExchangeRequest) (*domain.TokenBundle, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	client, err := s.Store.Clients().GetClientByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}

	if req.ClientSecret == "" || cryptox.VerifyPassword(req.ClientSecret, client.SecretHash) != nil {
		l.Info("token exchange client authentication failed", slog.String("client_id", req.ClientID))
		return nil, ErrInvalidClient
	}

	if req.GrantType != "authorization_code" || !client.AllowsGrantType(req.GrantType) {
		return nil, ErrUnsupportedGrantType
	}

	code := strings.TrimSpace(req.Code)
	redirectURI := strings.TrimSpace(req.RedirectURI)
	if code == "" || redirectURI == "" {
		return nil, ErrInvalidGrant
	}

	codeHash := cryptox.FingerprintToken(code)

	var result *domain.TokenBundle

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		authCode, err := tx.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, codeHash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}

		if authCode.ClientID != client.ID {
			return ErrInvalidGrant
		}
		if authCode.RedirectURI != redirectURI {
			return ErrInvalidGrant
		}
		if authCode.UsedAt != nil || now.After(authCode.ExpiresAt) {
			return ErrInvalidGrant
		}

		// The CAS: only one concurrent exchange gets past this.
		if err := tx.AuthorizationCodes().ConsumeAuthorizationCode(ctx, authCode.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}

		user, err := tx.Users().GetUserByID(ctx, authCode.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}

		idToken, err := s.signIDToken(user, client.ID, authCode, now)
		if err != nil {
			return err
		}

		accessOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}

		access := domain.AccessToken{
			ID:        idx.New().String(),
			UserID:    user.ID,
			ClientID:  client.ID,
			TokenHash: cryptox.FingerprintToken(accessOpaque),
			Scopes:    authCode.Scopes,
			ExpiresAt: now.Add(s.AccessTTL),
		}
		if err := tx.AccessTokens().CreateAccessToken(ctx, access); err != nil {
			return err
		}

		result = &domain.TokenBundle{
			AccessToken: accessOpaque,
			TokenType:   "Bearer",
			ExpiresIn:   int64(s.AccessTTL.Seconds()),
			IDToken:     idToken,
			Scope:       strings.Join(authCode.Scopes, " "),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// signIDToken builds the OIDC ID token. Which identity claims go in is
// gated by the scopes the code was minted with.
func (s *TokenService) signIDToken(
	user domain.User,
	clientID string,
	authCode domain.AuthorizationCode,
	now time.Time,
) (string, error) {
	ttl := s.IDTokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultIDTokenTTL
	}

	claims := jwtx.NewIDClaims(s.Issuer, user.ID, []string{clientID}, ttl, now)
	claims.AuthTime = authCode.AuthTime.Unix()
	if authCode.Nonce != nil {
		claims.Nonce = *authCode.Nonce
	}

	if slices.Contains(authCode.Scopes, "profile") {
		claims.Name = user.Name
		claims.GivenName = user.GivenName
		claims.FamilyName = user.FamilyName
	}
	if slices.Contains(authCode.Scopes, "email") {
		claims.Email = user.Email
		claims.EmailVerified = true
	}

	return s.Signer.Sign(claims)
}

// ResolveAccessToken maps an opaque bearer token to its subject and
// scopes. Satisfies httpx.TokenResolver.
func (s *TokenService) ResolveAccessToken(ctx context.Context, token string) (string, []string, error) {
	if token == "" {
		return "", nil, ErrInvalidToken
	}

	access, err := s.Store.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidToken
		}
		return "", nil, err
	}

	return access.UserID, access.Scopes, nil
}

// UserInfo returns the OIDC userinfo claims for a live access token,
// gated by the token's scopes the same way the ID token is.
func (s *TokenService) UserInfo(ctx context.Context, token string) (map[string]any, error) {
	access, err := s.Store.AccessTokens().GetAccessTokenByHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, access.UserID)
	if err != nil {
		return nil, err
	}

	claims := map[string]any{"sub": user.ID}
	if slices.Contains(access.Scopes, "profile") {
		claims["name"] = user.Name
		claims["given_name"] = user.GivenName
		claims["family_name"] = user.FamilyName
	}
	if slices.Contains(access.Scopes, "email") {
		claims["email"] = user.Email
		claims["email_verified"] = true
	}

	return claims, nil
}

// Revoke invalidates an access token by its raw value. Unknown tokens
// are a no-op per RFC 7009.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Store.AccessTokens().RevokeAccessToken(ctx, cryptox.FingerprintToken(token))
}
