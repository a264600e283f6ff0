// Package pqcrypto wraps the CIRCL post-quantum primitives behind small
// byte-buffer capabilities. Callers pick an algorithm by name once at
// construction; everything after that is fixed-size []byte in and out, so
// the rest of the codebase never touches CIRCL types directly.
package pqcrypto

import (
	"errors"
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem512"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// Supported KEM algorithm identifiers. These are the names that appear on the
// wire (client hello, certificates), so they are part of the protocol surface.
const (
	MLKEM512  = "ML-KEM-512"
	MLKEM768  = "ML-KEM-768"
	MLKEM1024 = "ML-KEM-1024"
)

var ErrUnsupportedAlgorithm = errors.New("pqcrypto: unsupported algorithm")

var kemSchemes = map[string]kem.Scheme{
	MLKEM512:  mlkem512.Scheme(),
	MLKEM768:  mlkem768.Scheme(),
	MLKEM1024: mlkem1024.Scheme(),
}

// KEMAlgorithms returns the supported KEM algorithm names.
func KEMAlgorithms() []string {
	return []string{MLKEM512, MLKEM768, MLKEM1024}
}

// KEM is a key-encapsulation capability bound to a single algorithm.
type KEM struct {
	name   string
	scheme kem.Scheme
}

// NewKEM resolves a KEM capability by algorithm name. Unknown names fail here,
// before any key material exists.
func NewKEM(name string) (*KEM, error) {
	scheme, ok := kemSchemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return &KEM{name: name, scheme: scheme}, nil
}

// Name returns the algorithm identifier this capability was built with.
func (k *KEM) Name() string { return k.name }

func (k *KEM) PublicKeySize() int  { return k.scheme.PublicKeySize() }
func (k *KEM) PrivateKeySize() int { return k.scheme.PrivateKeySize() }
func (k *KEM) CiphertextSize() int { return k.scheme.CiphertextSize() }
func (k *KEM) SharedKeySize() int  { return k.scheme.SharedKeySize() }

// GenerateKeyPair creates a fresh keypair and returns the raw encodings.
func (k *KEM) GenerateKeyPair() (publicKey, privateKey []byte, err error) {
	pub, priv, err := k.scheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("pqcrypto: generate %s keypair: %w", k.name, err)
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

// Encapsulate derives a fresh shared secret against the peer's public key and
// returns the ciphertext to transmit alongside the local copy of the secret.
func (k *KEM) Encapsulate(peerPublicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	pub, err := k.scheme.UnmarshalBinaryPublicKey(peerPublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("pqcrypto: parse %s public key: %w", k.name, err)
	}

	ciphertext, sharedSecret, err = k.scheme.Encapsulate(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("pqcrypto: encapsulate %s: %w", k.name, err)
	}
	return ciphertext, sharedSecret, nil
}

// Decapsulate recovers the shared secret from a ciphertext using the private key.
func (k *KEM) Decapsulate(ciphertext, privateKey []byte) ([]byte, error) {
	priv, err := k.scheme.UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("pqcrypto: parse %s private key: %w", k.name, err)
	}

	sharedSecret, err := k.scheme.Decapsulate(priv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("pqcrypto: decapsulate %s: %w", k.name, err)
	}
	return sharedSecret, nil
}
