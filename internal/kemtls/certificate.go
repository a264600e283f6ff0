package kemtls

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
)

// Certificate binds a subject name to a KEM public key and a signature public
// key, self-signed by the matching signature private key. There is no chain
// and no CA: a verified certificate proves the keys and subject were signed
// together, nothing more. That boundary is deliberate.
type Certificate struct {
	Subject      string
	KEMAlgorithm string
	SigAlgorithm string
	KEMPublicKey []byte
	SigPublicKey []byte
	Signature    []byte // nil until signed
}

// certificateWire is the serialised map form. Key material travels hex-encoded.
type certificateWire struct {
	Subject      string `json:"subject"`
	KEMAlgorithm string `json:"kem_alg"`
	SigAlgorithm string `json:"sig_alg"`
	KEMPublicKey string `json:"kem_pk"`
	SigPublicKey string `json:"sig_pk"`
	Signature    string `json:"signature,omitempty"`
}

// tbs is the to-be-signed encoding: the pipe-joined triple of subject and the
// hex forms of both public keys.
func (c *Certificate) tbs() []byte {
	return fmt.Appendf(nil, "%s|%s|%s",
		c.Subject, hex.EncodeToString(c.KEMPublicKey), hex.EncodeToString(c.SigPublicKey))
}

// Sign self-signs the certificate with the private key matching SigPublicKey.
func (c *Certificate) Sign(sig *pqcrypto.Signature, privateKey []byte) error {
	if sig.Name() != c.SigAlgorithm {
		return fmt.Errorf("%w: certificate declares %s, signer is %s",
			ErrCertificate, c.SigAlgorithm, sig.Name())
	}

	signature, err := sig.Sign(privateKey, c.tbs())
	if err != nil {
		return fmt.Errorf("kemtls: sign certificate: %w", err)
	}
	c.Signature = signature
	return nil
}

// Verify checks the embedded signature over the to-be-signed bytes using the
// certificate's own signature public key. An unsigned certificate never
// verifies. The signature capability is resolved from the certificate's
// declared algorithm tag, so peers need no out-of-band algorithm agreement.
func (c *Certificate) Verify() bool {
	if len(c.Signature) == 0 {
		return false
	}

	sig, err := pqcrypto.NewSignature(c.SigAlgorithm)
	if err != nil {
		return false
	}
	return sig.Verify(c.SigPublicKey, c.tbs(), c.Signature)
}

// Marshal serialises the certificate for embedding in a ServerHello.
func (c *Certificate) Marshal() ([]byte, error) {
	wire := certificateWire{
		Subject:      c.Subject,
		KEMAlgorithm: c.KEMAlgorithm,
		SigAlgorithm: c.SigAlgorithm,
		KEMPublicKey: hex.EncodeToString(c.KEMPublicKey),
		SigPublicKey: hex.EncodeToString(c.SigPublicKey),
	}
	if len(c.Signature) > 0 {
		wire.Signature = hex.EncodeToString(c.Signature)
	}
	return json.Marshal(wire)
}

// ParseCertificate deserialises a certificate received from a peer.
func ParseCertificate(data []byte) (*Certificate, error) {
	var wire certificateWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificate, err)
	}

	kemPK, err := hex.DecodeString(wire.KEMPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad kem_pk encoding", ErrCertificate)
	}
	sigPK, err := hex.DecodeString(wire.SigPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sig_pk encoding", ErrCertificate)
	}

	cert := &Certificate{
		Subject:      wire.Subject,
		KEMAlgorithm: wire.KEMAlgorithm,
		SigAlgorithm: wire.SigAlgorithm,
		KEMPublicKey: kemPK,
		SigPublicKey: sigPK,
	}
	if wire.Signature != "" {
		cert.Signature, err = hex.DecodeString(wire.Signature)
		if err != nil {
			return nil, fmt.Errorf("%w: bad signature encoding", ErrCertificate)
		}
	}
	return cert, nil
}
