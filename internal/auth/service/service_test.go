package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	"github.com/aussiebroadwan/pqauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/pqauth/pkg/cryptox"
	"github.com/aussiebroadwan/pqauth/pkg/idx"
	"github.com/aussiebroadwan/pqauth/pkg/jwtx"
	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
)

const (
	testPassword     = "correct-horse-battery"
	testClientSecret = "s3cret-client-secret"
	testRedirectURI  = "https://app.example/callback"
	testIssuer       = "https://issuer.test"
)

type testEnv struct {
	store  *sqlite.Store
	signer *jwtx.MLDSASigner
	user   domain.User
	client domain.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	passHash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)

	user := domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		Email:        "alice@example.com",
		Name:         "Alice Example",
		GivenName:    "Alice",
		FamilyName:   "Example",
		PasswordHash: passHash,
	}
	require.NoError(t, s.Users().CreateUser(ctx, user))

	secretHash, err := cryptox.HashPassword(testClientSecret)
	require.NoError(t, err)

	client := domain.Client{
		ID:            idx.New().String(),
		Name:          "web-app",
		SecretHash:    secretHash,
		RedirectURIs:  []string{testRedirectURI},
		GrantTypes:    []string{"authorization_code"},
		ResponseTypes: []string{"code"},
		Scopes:        []string{"openid", "profile", "email"},
	}
	require.NoError(t, s.Clients().CreateClient(ctx, client))

	signer, err := jwtx.NewSigner(pqcrypto.MLDSA44)
	require.NoError(t, err)

	return &testEnv{store: s, signer: signer, user: user, client: client}
}

func (env *testEnv) login(t *testing.T) (string, domain.Session) {
	t.Helper()
	sessions := &SessionService{Store: env.store, TTL: time.Hour}
	token, session, err := sessions.Login(context.Background(), "alice", testPassword)
	require.NoError(t, err)
	return token, session
}

func (env *testEnv) authorizeService() *AuthorizeService {
	return &AuthorizeService{Store: env.store, CodeTTL: 5 * time.Minute}
}

func (env *testEnv) tokenService() *TokenService {
	return &TokenService{
		Store:      env.store,
		Signer:     env.signer,
		Issuer:     testIssuer,
		AccessTTL:  time.Hour,
		IDTokenTTL: 15 * time.Minute,
	}
}

// mintCode runs the full authorize step and returns the raw code.
func (env *testEnv) mintCode(t *testing.T, scopes []string, nonce string) string {
	t.Helper()
	_, session := env.login(t)

	resp, err := env.authorizeService().Authorize(context.Background(), AuthorizeRequest{
		ResponseType: "code",
		ClientID:     env.client.ID,
		RedirectURI:  testRedirectURI,
		Scope:        scopes,
		State:        "st",
		Nonce:        nonce,
		Session:      &session,
	})
	require.NoError(t, err)
	return resp.Code
}
