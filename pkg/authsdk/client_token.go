package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ExchangeAuthorizationCode redeems an authorization code at the token
// endpoint. Codes are single use: a second exchange of the same code
// fails with invalid_grant.
func (c *SDKClient) ExchangeAuthorizationCode(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}

	return c.requestToken(ctx, data)
}

// RevokeToken revokes an access token per RFC 7009. Revoking an unknown
// token is not an error.
func (c *SDKClient) RevokeToken(ctx context.Context, token string) error {
	data := url.Values{
		"token": {token},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/oauth2/revoke",
		strings.NewReader(data.Encode()), formHeaders())
	if err != nil {
		return err
	}

	var body map[string]any
	return decodeJSON(resp, &body, http.StatusOK)
}

func (c *SDKClient) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/oauth2/token",
		strings.NewReader(data.Encode()), formHeaders())
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}

	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("token response carries no access_token")
	}
	return &tokens, nil
}

func formHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}
}
