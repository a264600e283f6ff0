// Package jwtx issues and verifies JWTs signed with post-quantum
// ML-DSA signatures. The signing methods plug into golang-jwt the same
// way the built-in RSA/ECDSA methods do, so the rest of the token
// plumbing stays standard.
package jwtx

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
)

// PrivateKey and PublicKey wrap raw ML-DSA key bytes so the jwt keyfunc
// plumbing stays type-safe.
type (
	PrivateKey []byte
	PublicKey  []byte
)

// SigningMethodMLDSA implements jwt.SigningMethod for one ML-DSA
// parameter set. Keys are the packed byte encodings from pqcrypto.
type SigningMethodMLDSA struct {
	alg    string
	scheme *pqcrypto.Signature
}

var (
	SigningMethodMLDSA44 *SigningMethodMLDSA
	SigningMethodMLDSA65 *SigningMethodMLDSA
	SigningMethodMLDSA87 *SigningMethodMLDSA
)

func init() {
	SigningMethodMLDSA44 = mustSigningMethod(pqcrypto.MLDSA44)
	SigningMethodMLDSA65 = mustSigningMethod(pqcrypto.MLDSA65)
	SigningMethodMLDSA87 = mustSigningMethod(pqcrypto.MLDSA87)

	for _, m := range []*SigningMethodMLDSA{
		SigningMethodMLDSA44,
		SigningMethodMLDSA65,
		SigningMethodMLDSA87,
	} {
		method := m
		jwt.RegisterSigningMethod(method.alg, func() jwt.SigningMethod { return method })
	}
}

func mustSigningMethod(alg string) *SigningMethodMLDSA {
	scheme, err := pqcrypto.NewSignature(alg)
	if err != nil {
		panic(err)
	}
	return &SigningMethodMLDSA{alg: alg, scheme: scheme}
}

// signingMethod returns the registered method for alg.
func signingMethod(alg string) (*SigningMethodMLDSA, error) {
	switch alg {
	case pqcrypto.MLDSA44:
		return SigningMethodMLDSA44, nil
	case pqcrypto.MLDSA65:
		return SigningMethodMLDSA65, nil
	case pqcrypto.MLDSA87:
		return SigningMethodMLDSA87, nil
	default:
		return nil, pqcrypto.ErrUnsupportedAlgorithm
	}
}

func (m *SigningMethodMLDSA) Alg() string { return m.alg }

// Sign produces a raw ML-DSA signature over the signing string. The key
// must be a jwtx.PrivateKey.
func (m *SigningMethodMLDSA) Sign(signingString string, key any) ([]byte, error) {
	priv, ok := key.(PrivateKey)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}
	return m.scheme.Sign(priv, []byte(signingString))
}

// Verify checks a raw ML-DSA signature. The key must be a jwtx.PublicKey.
func (m *SigningMethodMLDSA) Verify(signingString string, sig []byte, key any) error {
	pub, ok := key.(PublicKey)
	if !ok {
		return jwt.ErrInvalidKeyType
	}
	if !m.scheme.Verify(pub, []byte(signingString), sig) {
		return jwt.ErrSignatureInvalid
	}
	return nil
}
