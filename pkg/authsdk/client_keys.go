package authsdk

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/pqauth/pkg/jwtx"
)

// Discovery fetches the provider metadata document.
func (c *SDKClient) Discovery(ctx context.Context) (*ProviderMetadata, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/openid-configuration", nil, nil)
	if err != nil {
		return nil, err
	}

	var metadata ProviderMetadata
	if err := decodeJSON(resp, &metadata, http.StatusOK); err != nil {
		return nil, err
	}
	return &metadata, nil
}

// FetchKeys fetches the published ID token verification keys.
func (c *SDKClient) FetchKeys(ctx context.Context) (*KeySetResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/jwks", nil, nil)
	if err != nil {
		return nil, err
	}

	var keys KeySetResponse
	if err := decodeJSON(resp, &keys, http.StatusOK); err != nil {
		return nil, err
	}
	return &keys, nil
}

// NewIDTokenVerifier fetches the server's signing key and builds a
// verifier pinned to it. The issuer checked is the client's base URL
// and the expected audience is the relying party's client id.
//
// Fetch once at startup and reuse: the key is stable for the life of
// the signer and every Verify call is purely local.
func (c *SDKClient) NewIDTokenVerifier(ctx context.Context, clientID string) (jwtx.Verifier, error) {
	keys, err := c.FetchKeys(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys.Keys) == 0 {
		return nil, fmt.Errorf("server published no signing keys")
	}

	key := keys.Keys[0]
	pub, err := base64.RawURLEncoding.DecodeString(key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decode published key: %w", err)
	}

	return jwtx.NewVerifier(key.Algorithm, pub, jwtx.VerifyOptions{
		Issuer:   c.BaseURL,
		Audience: []string{clientID},
	})
}
