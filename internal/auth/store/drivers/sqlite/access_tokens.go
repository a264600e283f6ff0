package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
)

type accessTokensRepo struct {
	db dbtx
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_tokens (id, user_id, client_id, token_hash, scopes, expires_at, revoked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		t.ID, t.UserID, t.ClientID, t.TokenHash, joinScopes(t.Scopes),
		toUnix(t.ExpiresAt), toUnix(time.Now()))
	return mapConstraint(err)
}

func (r *accessTokensRepo) GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, client_id, token_hash, scopes, expires_at, revoked, created_at
		 FROM access_tokens WHERE token_hash = ? AND revoked = 0 AND expires_at > ?`,
		hash, toUnix(time.Now()))

	var t domain.AccessToken
	var scopes string
	var expires, created int64
	err := row.Scan(&t.ID, &t.UserID, &t.ClientID, &t.TokenHash, &scopes, &expires, &t.Revoked, &created)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	t.Scopes = splitScopes(scopes)
	t.ExpiresAt = fromUnix(expires)
	t.CreatedAt = fromUnix(created)
	return t, nil
}

func (r *accessTokensRepo) RevokeAccessToken(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_tokens SET revoked = 1 WHERE token_hash = ?`, hash)
	return err
}

func (r *accessTokensRepo) RevokeAllUserClientAccessTokens(ctx context.Context, userID, clientID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_tokens SET revoked = 1 WHERE user_id = ? AND client_id = ?`, userID, clientID)
	return err
}

func (r *accessTokensRepo) DeleteExpiredAccessTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM access_tokens WHERE expires_at <= ?`, toUnix(time.Now()))
	return err
}
