package domain

import "time"

// TokenBundle is what the token endpoint returns: an opaque bearer
// access token plus the signed OIDC ID token.
type TokenBundle struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // always "Bearer"
	ExpiresIn   int64  `json:"expires_in"` // seconds until expiry
	IDToken     string `json:"id_token"`
	Scope       string `json:"scope,omitempty"` // space-delimited
}

// AccessToken models the stored access token record in the DB.
type AccessToken struct {
	ID        string
	UserID    string
	ClientID  string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	Scopes    []string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
