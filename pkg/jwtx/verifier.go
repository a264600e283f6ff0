package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// VerifyOptions captures the claim expectations a verifier enforces.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience values the token must contain (claims.aud). Empty means "don't care".
	Audience []string

	// SkipExpiry disables the exp/nbf checks. Useful for inspecting
	// expired tokens, never for live authorization decisions.
	SkipExpiry bool

	// Leeway allows small clock skew when validating exp/nbf.
	// Because time sync is never perfect.
	Leeway time.Duration
}

// MLDSAVerifier validates JWTs signed with one ML-DSA parameter set.
//
// Checks run in a fixed order and the first failure wins: structure,
// then algorithm, then signature, then exp/nbf, then audience, then
// issuer. Callers can rely on the returned sentinel to tell the cases
// apart.
type MLDSAVerifier struct {
	method *SigningMethodMLDSA
	pub    PublicKey
	opts   VerifyOptions
}

// NewVerifier creates a verifier pinned to one algorithm and public key.
func NewVerifier(alg string, publicKey []byte, opts VerifyOptions) (*MLDSAVerifier, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}
	if len(publicKey) != method.scheme.PublicKeySize() {
		return nil, fmt.Errorf("jwtx: %s public key must be %d bytes, got %d",
			alg, method.scheme.PublicKeySize(), len(publicKey))
	}

	return &MLDSAVerifier{method: method, pub: publicKey, opts: opts}, nil
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *MLDSAVerifier) Verify(tokenStr string) (*Claims, error) {
	// Structure and algorithm are checked up front so a token with a
	// wrong or unknown alg reports that, not a signature failure.
	alg, err := peekAlg(tokenStr)
	if err != nil {
		return nil, err
	}
	if alg != v.method.Alg() {
		return nil, ErrAlgMismatch
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrMalformed
		}
		return nil, ErrInvalidSig
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSig
	}

	if !v.opts.SkipExpiry {
		if err := claims.ValidateExpiry(v.opts.Leeway); err != nil {
			return nil, err
		}
	}
	if err := claims.ValidateAudience(v.opts.Audience); err != nil {
		return nil, err
	}
	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return nil, err
	}

	return claims, nil
}

// peekAlg decodes just the JOSE header and returns its alg value.
func peekAlg(tokenStr string) (string, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return "", ErrMalformed
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrMalformed
	}

	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return "", ErrMalformed
	}
	if header.Alg == "" {
		return "", ErrMalformed
	}
	if !pqcrypto.IsSignatureAlgorithm(header.Alg) {
		return "", ErrAlgMismatch
	}

	return header.Alg, nil
}
