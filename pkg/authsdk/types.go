package authsdk

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// This is used internally for parsing HTTP error responses.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the token endpoint response per RFC 6749 with
// the OIDC id_token alongside.
type TokenResponse struct {
	// AccessToken is the opaque bearer token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer" per OAuth2 spec
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int64 `json:"expires_in"`

	// IDToken is the ML-DSA signed OIDC identity token
	IDToken string `json:"id_token"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// SessionResponse is returned from the login endpoint.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

// UserInfoResponse carries the claims from the userinfo endpoint. Which
// fields are populated depends on the scopes of the access token.
type UserInfoResponse struct {
	Subject       string `json:"sub"`
	Name          string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// ============================================================================
// Discovery Types
// ============================================================================

// ProviderMetadata is the subset of OIDC provider metadata this server
// publishes at /.well-known/openid-configuration.
type ProviderMetadata struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	UserInfoEndpoint                 string   `json:"userinfo_endpoint"`
	RevocationEndpoint               string   `json:"revocation_endpoint"`
	KeysEndpoint                     string   `json:"keys_endpoint"`
	ResponseTypesSupported           []string `json:"response_types_supported"`
	GrantTypesSupported              []string `json:"grant_types_supported"`
	ScopesSupported                  []string `json:"scopes_supported"`
	SubjectTypesSupported            []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
	TokenEndpointAuthMethods         []string `json:"token_endpoint_auth_methods_supported"`
}

// SignatureKey is one published ID token verification key. ML-DSA keys
// have no JOSE JWK encoding yet, so the packed key bytes travel as
// base64url directly.
type SignatureKey struct {
	Algorithm string `json:"alg"` // e.g. "ML-DSA-44"
	Use       string `json:"use"` // always "sig"
	PublicKey string `json:"pub"` // base64url packed key
}

// KeySetResponse is the /jwks document.
type KeySetResponse struct {
	Keys []SignatureKey `json:"keys"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned from the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"` // "ok" or "degraded"
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
