package domain

import "time"

// AuthorizationCode represents an OAuth 2.0 authorization code issuance.
// The code itself is never stored, only its fingerprint.
type AuthorizationCode struct {
	ID          string
	UserID      string
	ClientID    string
	CodeHash    string
	RedirectURI string
	Scopes      []string
	Nonce       *string
	SessionID   string
	AuthTime    time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}
