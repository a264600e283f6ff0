package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/pqauth/internal/auth/http"
	"github.com/aussiebroadwan/pqauth/internal/auth/service"
	"github.com/aussiebroadwan/pqauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/pqauth/pkg/jwtx"
	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
	"github.com/aussiebroadwan/pqauth/pkg/slogx"
)

const (
	adminUsername = "admin"
	adminPassword = "e2e-admin-password"
	redirectURI   = "https://example.com/callback"
)

// testServer is a fully wired authorization server on a loopback
// listener, seeded with one admin user and one confidential client.
type testServer struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

func setupAuthServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	bootstrap := &service.BootstrapService{Store: st}
	seed, err := bootstrap.Bootstrap(ctx, domain.BootstrapData{
		Username:     adminUsername,
		Password:     adminPassword,
		Email:        "admin@example.com",
		Name:         "Administrator",
		ClientName:   "e2e-client",
		RedirectURIs: []string{redirectURI},
	})
	require.NoError(t, err)

	signer, err := jwtx.NewSigner(pqcrypto.MLDSA44)
	require.NoError(t, err)

	// The issuer has to match the listener URL, which only exists once
	// the server is up, so the handler is swapped in afterwards.
	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	logger := slogx.Discard()
	router := httpapi.NewRouter(signer, srv.URL, "e2e", st, logger)
	router.TokenService = &service.TokenService{
		Store:      st,
		Signer:     signer,
		Issuer:     srv.URL,
		AccessTTL:  time.Hour,
		IDTokenTTL: 15 * time.Minute,
	}
	router.UserService = &service.UserService{Store: st}
	router.SessionService = &service.SessionService{Store: st, TTL: time.Hour}
	router.AuthorizeService = &service.AuthorizeService{Store: st, CodeTTL: 5 * time.Minute}
	router.BootstrapService = bootstrap
	router.ApplyRoutes()
	handler = router

	return &testServer{
		BaseURL:      srv.URL,
		ClientID:     seed.ClientID,
		ClientSecret: seed.ClientSecret,
	}
}

// noRedirectClient returns redirects to the caller instead of following
// them, so tests can inspect Location headers.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// authorizeWithCredentials drives POST /v1/oauth2/authorize with inline
// username/password and returns the 302 Location URL.
func authorizeWithCredentials(t *testing.T, ts *testServer, scopes []string, state, nonce string) *url.URL {
	t.Helper()

	form := url.Values{
		"response_type": {"code"},
		"client_id":     {ts.ClientID},
		"redirect_uri":  {redirectURI},
		"scope":         {strings.Join(scopes, " ")},
		"state":         {state},
		"username":      {adminUsername},
		"password":      {adminPassword},
	}
	if nonce != "" {
		form.Set("nonce", nonce)
	}

	resp, err := noRedirectClient().Post(
		ts.BaseURL+"/v1/oauth2/authorize",
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return location
}
