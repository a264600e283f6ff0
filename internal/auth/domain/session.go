package domain

import "time"

// Session is a browser login session at the authorization server. The
// cookie value is opaque; only its fingerprint is stored.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	AuthTime  time.Time // when the user actually entered credentials
	ExpiresAt time.Time
	CreatedAt time.Time
}
