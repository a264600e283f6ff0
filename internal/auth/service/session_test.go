package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sessions := &SessionService{Store: env.store, TTL: time.Hour}

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := sessions.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := sessions.Login(ctx, "mallory", testPassword)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("login resolve logout", func(t *testing.T) {
		token, session, err := sessions.Login(ctx, "alice", testPassword)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, env.user.ID, session.UserID)

		resolved, err := sessions.Resolve(ctx, token)
		require.NoError(t, err)
		require.Equal(t, session.ID, resolved.ID)

		require.NoError(t, sessions.Logout(ctx, token))

		_, err = sessions.Resolve(ctx, token)
		require.ErrorIs(t, err, ErrLoginRequired)
	})

	t.Run("empty cookie", func(t *testing.T) {
		_, err := sessions.Resolve(ctx, "")
		require.ErrorIs(t, err, ErrLoginRequired)
	})

	t.Run("unknown cookie", func(t *testing.T) {
		_, err := sessions.Resolve(ctx, "stale-cookie")
		require.ErrorIs(t, err, ErrLoginRequired)
	})

	t.Run("logout of unknown cookie is a no-op", func(t *testing.T) {
		require.NoError(t, sessions.Logout(ctx, "stale-cookie"))
	})
}

func TestSessionExpiredCookie(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sessions := &SessionService{Store: env.store, TTL: time.Hour}

	token, session, err := sessions.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	// Age the row past its expiry; the store hides expired sessions.
	now := time.Now()
	session.AuthTime = now.Add(-2 * time.Hour)
	session.ExpiresAt = now.Add(-time.Hour)
	require.NoError(t, env.store.Sessions().DeleteSession(ctx, session.ID))
	require.NoError(t, env.store.Sessions().CreateSession(ctx, session))

	_, err = sessions.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrLoginRequired)
}
