package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer turns claims into a signed compact JWT.
type Signer interface {
	Alg() string
	PublicKey() []byte
	Sign(claims Claims) (string, error)
}

// MLDSASigner implements Signer for one ML-DSA parameter set.
type MLDSASigner struct {
	method *SigningMethodMLDSA
	priv   PrivateKey
	pub    PublicKey
}

// NewSigner generates a fresh keypair for alg.
func NewSigner(alg string) (*MLDSASigner, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}

	pub, priv, err := method.scheme.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate %s keypair: %w", alg, err)
	}

	return &MLDSASigner{method: method, priv: priv, pub: pub}, nil
}

// NewSignerFromKeys wraps an existing packed keypair, e.g. one loaded
// from configuration or a KEMTLS identity.
func NewSignerFromKeys(alg string, priv, pub []byte) (*MLDSASigner, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}
	if len(priv) != method.scheme.PrivateKeySize() {
		return nil, fmt.Errorf("jwtx: %s private key must be %d bytes, got %d",
			alg, method.scheme.PrivateKeySize(), len(priv))
	}
	if len(pub) != method.scheme.PublicKeySize() {
		return nil, fmt.Errorf("jwtx: %s public key must be %d bytes, got %d",
			alg, method.scheme.PublicKeySize(), len(pub))
	}

	return &MLDSASigner{method: method, priv: priv, pub: pub}, nil
}

func (s *MLDSASigner) Alg() string { return s.method.Alg() }

// PublicKey returns the packed verification key, shared with relying
// parties so they can check tokens offline.
func (s *MLDSASigner) PublicKey() []byte { return s.pub }

// Sign takes your claims and turns them into a signed JWT string.
func (s *MLDSASigner) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(s.method, claims)

	signed, err := token.SignedString(s.priv)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, nil
}
