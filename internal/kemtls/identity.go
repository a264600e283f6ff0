package kemtls

import (
	"fmt"

	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
)

// Identity is a server's long-lived handshake identity: its KEM and signature
// keypairs plus the self-signed certificate binding them to a subject name.
// It is created once at startup and read-only afterwards, shared by every
// handshake the server runs.
type Identity struct {
	Certificate *Certificate

	kem *pqcrypto.KEM
	sig *pqcrypto.Signature

	kemPrivateKey []byte
	sigPrivateKey []byte
}

// NewIdentity generates fresh keypairs for the given algorithms, builds the
// certificate and self-signs it. Unknown algorithm names fail before any key
// material is produced.
func NewIdentity(subject, kemAlgorithm, sigAlgorithm string) (*Identity, error) {
	kem, err := pqcrypto.NewKEM(kemAlgorithm)
	if err != nil {
		return nil, err
	}
	sig, err := pqcrypto.NewSignature(sigAlgorithm)
	if err != nil {
		return nil, err
	}

	kemPub, kemPriv, err := kem.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	sigPub, sigPriv, err := sig.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	cert := &Certificate{
		Subject:      subject,
		KEMAlgorithm: kemAlgorithm,
		SigAlgorithm: sigAlgorithm,
		KEMPublicKey: kemPub,
		SigPublicKey: sigPub,
	}
	if err := cert.Sign(sig, sigPriv); err != nil {
		return nil, err
	}
	if !cert.Verify() {
		return nil, fmt.Errorf("%w: freshly signed certificate failed self-check", ErrCertificate)
	}

	return &Identity{
		Certificate:   cert,
		kem:           kem,
		sig:           sig,
		kemPrivateKey: kemPriv,
		sigPrivateKey: sigPriv,
	}, nil
}

// KEMAlgorithm returns the KEM algorithm this identity advertises.
func (id *Identity) KEMAlgorithm() string { return id.kem.Name() }
