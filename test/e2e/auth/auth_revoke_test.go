package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pqauth/pkg/authsdk"
)

func TestRevokeAccessToken(t *testing.T) {
	ts := setupAuthServer(t)
	client := authsdk.NewSDKClient(ts.BaseURL)

	location := authorizeWithCredentials(t, ts, []string{"openid"}, "st", "")
	code, err := authsdk.ParseCallback(location.Query(), "st")
	require.NoError(t, err)

	tokens, err := client.ExchangeAuthorizationCode(t.Context(),
		ts.ClientID, ts.ClientSecret, code, redirectURI)
	require.NoError(t, err)

	// Token works before revocation
	_, err = client.UserInfo(t.Context(), tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, client.RevokeToken(t.Context(), tokens.AccessToken))

	// And is dead afterwards
	_, err = client.UserInfo(t.Context(), tokens.AccessToken)
	var oauthErr *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oauthErr)

	// Revoking again stays a 200 per RFC 7009
	require.NoError(t, client.RevokeToken(t.Context(), tokens.AccessToken))
}

func TestUserInfoRejectsGarbageToken(t *testing.T) {
	ts := setupAuthServer(t)
	client := authsdk.NewSDKClient(ts.BaseURL)

	_, err := client.UserInfo(t.Context(), "not-a-real-token")
	var oauthErr *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oauthErr)
	require.Equal(t, 401, oauthErr.StatusCode)
}
