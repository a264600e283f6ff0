package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/store"
)

type authorizationCodesRepo struct {
	db dbtx
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO authorization_codes
		 (id, user_id, client_id, code_hash, redirect_uri, scopes, nonce, session_id, auth_time, expires_at, used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)`,
		code.ID, code.UserID, code.ClientID, code.CodeHash, code.RedirectURI,
		joinScopes(code.Scopes), mapOptionalString(code.Nonce), code.SessionID,
		toUnix(code.AuthTime), toUnix(code.ExpiresAt), toUnix(time.Now()))
	return mapConstraint(err)
}

func (r *authorizationCodesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, client_id, code_hash, redirect_uri, scopes, nonce, session_id, auth_time, expires_at, used_at, created_at
		 FROM authorization_codes WHERE code_hash = ?`, hash)

	var c domain.AuthorizationCode
	var scopes string
	var nonce sql.NullString
	var authTime, expires, created int64
	var usedAt sql.NullInt64
	err := row.Scan(
		&c.ID, &c.UserID, &c.ClientID, &c.CodeHash, &c.RedirectURI,
		&scopes, &nonce, &c.SessionID, &authTime, &expires, &usedAt, &created,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	c.Scopes = splitScopes(scopes)
	c.Nonce = mapNullStringPtr(nonce)
	c.AuthTime = fromUnix(authTime)
	c.ExpiresAt = fromUnix(expires)
	c.UsedAt = fromUnixPtr(usedAt)
	c.CreatedAt = fromUnix(created)
	return c, nil
}

// ConsumeAuthorizationCode is a compare-and-set: the UPDATE only lands on
// a row that is still unused, so of two concurrent redemptions exactly one
// sees RowsAffected == 1.
func (r *authorizationCodesRepo) ConsumeAuthorizationCode(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE authorization_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		toUnix(time.Now()), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM authorization_codes WHERE expires_at <= ?`, toUnix(time.Now()))
	return err
}
