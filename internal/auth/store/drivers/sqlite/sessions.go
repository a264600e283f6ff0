package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, auth_time, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, toUnix(s.AuthTime), toUnix(s.ExpiresAt), toUnix(time.Now()))
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, auth_time, expires_at, created_at
		 FROM sessions WHERE token_hash = ? AND expires_at > ?`,
		hash, toUnix(time.Now()))

	var s domain.Session
	var authTime, expires, created int64
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &authTime, &expires, &created)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.AuthTime = fromUnix(authTime)
	s.ExpiresAt = fromUnix(expires)
	s.CreatedAt = fromUnix(created)
	return s, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, toUnix(time.Now()))
	return err
}
