package kemtls

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// NonceSize is the length of the client and server handshake nonces.
	NonceSize = 16

	// Derived key material: 32-byte encryption key, 32-byte MAC key, 16-byte IV.
	EncryptionKeySize = 32
	MACKeySize        = 32
	IVSize            = 16

	transcriptHashSize = sha256.Size
)

// HKDF parameters. The info string binds the derived keys to this protocol
// version and to the two session nonces, so both sides compute identical keys
// without negotiating anything.
var (
	sessionKeySalt   = []byte("KEMTLS-Session-Keys")
	sessionKeyPrefix = []byte("PQ-OIDC-v1|")
)

// Session holds the per-connection handshake secrets and the keys derived from
// them. A Session belongs to exactly one connection and is never reused; the
// KEM keypair behind SharedSecret is ephemeral, which is where forward secrecy
// comes from.
type Session struct {
	ClientNonce  []byte
	ServerNonce  []byte
	SharedSecret []byte

	EncryptionKey []byte
	MACKey        []byte
	IV            []byte
}

// DeriveKeys populates the session atomically: either every field is set on
// return or none are. Derivation is HKDF-SHA-256 over the shared secret with
// client_nonce ‖ server_nonce as context, expanded to 80 bytes and split
// 32/32/16.
func (s *Session) DeriveKeys(sharedSecret, clientNonce, serverNonce []byte) error {
	if len(sharedSecret) == 0 {
		return fmt.Errorf("%w: empty shared secret", ErrState)
	}
	if len(clientNonce) != NonceSize || len(serverNonce) != NonceSize {
		return fmt.Errorf("%w: nonces must be %d bytes", ErrState, NonceSize)
	}

	info := make([]byte, 0, len(sessionKeyPrefix)+2*NonceSize)
	info = append(info, sessionKeyPrefix...)
	info = append(info, clientNonce...)
	info = append(info, serverNonce...)

	material := make([]byte, EncryptionKeySize+MACKeySize+IVSize)
	r := hkdf.New(sha256.New, sharedSecret, sessionKeySalt, info)
	if _, err := io.ReadFull(r, material); err != nil {
		return fmt.Errorf("kemtls: derive session keys: %w", err)
	}

	s.SharedSecret = append([]byte(nil), sharedSecret...)
	s.ClientNonce = append([]byte(nil), clientNonce...)
	s.ServerNonce = append([]byte(nil), serverNonce...)
	s.EncryptionKey = material[:EncryptionKeySize]
	s.MACKey = material[EncryptionKeySize : EncryptionKeySize+MACKeySize]
	s.IV = material[EncryptionKeySize+MACKeySize:]
	return nil
}

// Ready reports whether every session field has been derived.
func (s *Session) Ready() bool {
	return len(s.SharedSecret) > 0 &&
		len(s.ClientNonce) == NonceSize &&
		len(s.ServerNonce) == NonceSize &&
		len(s.EncryptionKey) == EncryptionKeySize &&
		len(s.MACKey) == MACKeySize &&
		len(s.IV) == IVSize
}

// transcriptHash is the Finished check value: a digest over everything both
// sides must agree on. It is a liveness and consistency check, not a MAC over
// application data.
func (s *Session) transcriptHash() []byte {
	h := sha256.New()
	h.Write(s.ClientNonce)
	h.Write(s.ServerNonce)
	h.Write(s.SharedSecret)
	return h.Sum(nil)
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// newNonce returns NonceSize bytes from crypto/rand.
func newNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("kemtls: generate nonce: %w", err)
	}
	return nonce, nil
}
