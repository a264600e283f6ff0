package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pqauth/pkg/authsdk"
)

func TestHealthEndpoints(t *testing.T) {
	ts := setupAuthServer(t)
	client := authsdk.NewSDKClient(ts.BaseURL)

	live, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "e2e", live.Version)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}

func TestDiscoveryDocument(t *testing.T) {
	ts := setupAuthServer(t)
	client := authsdk.NewSDKClient(ts.BaseURL)

	metadata, err := client.Discovery(t.Context())
	require.NoError(t, err)
	require.Equal(t, ts.BaseURL, metadata.Issuer)
	require.Equal(t, ts.BaseURL+"/v1/oauth2/token", metadata.TokenEndpoint)
	require.Equal(t, []string{"code"}, metadata.ResponseTypesSupported)
	require.Contains(t, metadata.ScopesSupported, "openid")
}

func TestPublishedKeys(t *testing.T) {
	ts := setupAuthServer(t)
	client := authsdk.NewSDKClient(ts.BaseURL)

	keys, err := client.FetchKeys(t.Context())
	require.NoError(t, err)
	require.Len(t, keys.Keys, 1)
	require.Equal(t, "ML-DSA-44", keys.Keys[0].Algorithm)
	require.Equal(t, "sig", keys.Keys[0].Use)
	require.NotEmpty(t, keys.Keys[0].PublicKey)
}
