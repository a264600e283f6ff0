package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIDTokenTTL is the default lifetime for ID tokens. Short-lived,
// they only need to survive the redirect back to the relying party.
const DefaultIDTokenTTL = 15 * time.Minute

// Claims are ID-token claims. The typed fields cover the registered and
// OIDC standard claims; anything else a caller supplies rides along in
// Extra and is flattened into the payload object on the wire.
type Claims struct {
	jwt.RegisteredClaims

	// Nonce binds the token to the authorization request that minted it.
	Nonce string `json:"nonce,omitempty"`

	// AuthTime is when the end user actually authenticated (unix seconds).
	AuthTime int64 `json:"auth_time,omitempty"`

	/* "profile" scope */

	Name       string `json:"name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`

	/* "email" scope */

	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`

	// Extra holds non-standard claims keyed by name. Reserved claim names
	// are ignored here, the typed fields always win.
	Extra map[string]any `json:"-"`
}

// reservedClaimKeys are the payload keys owned by the typed fields above.
var reservedClaimKeys = []string{
	"iss", "sub", "aud", "exp", "nbf", "iat", "jti",
	"nonce", "auth_time",
	"name", "given_name", "family_name",
	"email", "email_verified",
}

// NewIDClaims builds minimally-correct ID-token claims.
func NewIDClaims(
	issuer, subject string,
	audience []string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// MarshalJSON flattens Extra into the payload object alongside the typed
// fields. Reserved keys in Extra are dropped rather than letting them
// shadow the typed values.
func (c Claims) MarshalJSON() ([]byte, error) {
	type alias Claims
	base, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return base, nil
	}

	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		if slices.Contains(reservedClaimKeys, k) {
			continue
		}
		m[k] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON fills the typed fields and collects any leftover keys
// into Extra so round trips preserve caller-supplied claims.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type alias Claims
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for _, k := range reservedClaimKeys {
		delete(m, k)
	}
	if len(m) > 0 {
		a.Extra = m
	}

	*c = Claims(a)
	return nil
}

// ValidateExpiry ensures the token hasn’t expired (exp) and isn’t being
// used before it is valid (nbf). Leeway allows for clock skew.
func (c *Claims) ValidateExpiry(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}
