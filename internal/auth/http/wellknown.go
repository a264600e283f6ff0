package http

import (
	"encoding/base64"
	"net/http"

	"github.com/aussiebroadwan/pqauth/pkg/authsdk"
	"github.com/aussiebroadwan/pqauth/pkg/httpx"
	"github.com/aussiebroadwan/pqauth/pkg/jwtx"
)

// DiscoveryHandler serves GET /.well-known/openid-configuration with
// the provider metadata relying parties need to drive the flow.
func DiscoveryHandler(issuer string) http.HandlerFunc {
	metadata := authsdk.ProviderMetadata{
		Issuer:                           issuer,
		AuthorizationEndpoint:            issuer + "/v1/oauth2/authorize",
		TokenEndpoint:                    issuer + "/v1/oauth2/token",
		UserInfoEndpoint:                 issuer + "/v1/userinfo",
		RevocationEndpoint:               issuer + "/v1/oauth2/revoke",
		KeysEndpoint:                     issuer + "/jwks",
		ResponseTypesSupported:           []string{"code"},
		GrantTypesSupported:              []string{"authorization_code"},
		ScopesSupported:                  []string{"openid", "profile", "email"},
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{"ML-DSA-44", "ML-DSA-65", "ML-DSA-87"},
		TokenEndpointAuthMethods:         []string{"client_secret_basic", "client_secret_post"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, metadata)
	}
}

// KeysHandler serves GET /jwks: the packed ML-DSA
// verification key for the active ID token signer. Relying parties pin
// this key, there is no JOSE key wrapping for these algorithms yet.
func KeysHandler(signer jwtx.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := authsdk.KeySetResponse{
			Keys: []authsdk.SignatureKey{{
				Algorithm: signer.Alg(),
				Use:       "sig",
				PublicKey: base64.RawURLEncoding.EncodeToString(signer.PublicKey()),
			}},
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
