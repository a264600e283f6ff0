package pqcrypto

import (
	"fmt"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
)

// Supported signature algorithm identifiers. These double as JWT "alg" header
// values and certificate algorithm tags.
const (
	MLDSA44 = "ML-DSA-44"
	MLDSA65 = "ML-DSA-65"
	MLDSA87 = "ML-DSA-87"
)

var sigSchemes = map[string]sign.Scheme{
	MLDSA44: mldsa44.Scheme(),
	MLDSA65: mldsa65.Scheme(),
	MLDSA87: mldsa87.Scheme(),
}

// SignatureAlgorithms returns the supported signature algorithm names.
func SignatureAlgorithms() []string {
	return []string{MLDSA44, MLDSA65, MLDSA87}
}

// IsSignatureAlgorithm reports whether name is a recognised signature algorithm.
func IsSignatureAlgorithm(name string) bool {
	_, ok := sigSchemes[name]
	return ok
}

// Signature is a sign/verify capability bound to a single algorithm.
type Signature struct {
	name   string
	scheme sign.Scheme
}

// NewSignature resolves a signature capability by algorithm name.
func NewSignature(name string) (*Signature, error) {
	scheme, ok := sigSchemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return &Signature{name: name, scheme: scheme}, nil
}

// Name returns the algorithm identifier this capability was built with.
func (s *Signature) Name() string { return s.name }

func (s *Signature) PublicKeySize() int  { return s.scheme.PublicKeySize() }
func (s *Signature) PrivateKeySize() int { return s.scheme.PrivateKeySize() }
func (s *Signature) SignatureSize() int  { return s.scheme.SignatureSize() }

// GenerateKeyPair creates a fresh signing keypair and returns the raw encodings.
func (s *Signature) GenerateKeyPair() (publicKey, privateKey []byte, err error) {
	pub, priv, err := s.scheme.GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("pqcrypto: generate %s keypair: %w", s.name, err)
	}

	publicKey, err = pub.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	privateKey, err = priv.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return publicKey, privateKey, nil
}

// Sign produces a detached signature over message with the given private key.
func (s *Signature) Sign(privateKey, message []byte) ([]byte, error) {
	priv, err := s.scheme.UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("pqcrypto: parse %s private key: %w", s.name, err)
	}
	return s.scheme.Sign(priv, message, nil), nil
}

// Verify reports whether signature is valid over message for the given public
// key. Malformed keys or signatures simply verify as false; the caller only
// ever learns valid/invalid.
func (s *Signature) Verify(publicKey, message, signature []byte) bool {
	pub, err := s.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false
	}
	return s.scheme.Verify(pub, message, signature, nil)
}
