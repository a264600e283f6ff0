package kemtls

import (
	"testing"

	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
	"github.com/stretchr/testify/require"
)

func newTestIdentity(t *testing.T) *Identity {
	t.Helper()

	// ML-KEM-512 and ML-DSA-44 keep key generation cheap in tests.
	id, err := NewIdentity("CN=localhost", pqcrypto.MLKEM512, pqcrypto.MLDSA44)
	require.NoError(t, err)
	return id
}

func TestCertificateSignAndVerify(t *testing.T) {
	t.Parallel()

	id := newTestIdentity(t)
	require.True(t, id.Certificate.Verify())
}

func TestUnsignedCertificateDoesNotVerify(t *testing.T) {
	t.Parallel()

	id := newTestIdentity(t)
	cert := *id.Certificate
	cert.Signature = nil
	require.False(t, cert.Verify())
}

func TestTamperedCertificateDoesNotVerify(t *testing.T) {
	t.Parallel()

	id := newTestIdentity(t)

	t.Run("subject changed", func(t *testing.T) {
		cert := *id.Certificate
		cert.Subject = "CN=evil.example"
		require.False(t, cert.Verify())
	})

	t.Run("kem key swapped", func(t *testing.T) {
		kem, err := pqcrypto.NewKEM(pqcrypto.MLKEM512)
		require.NoError(t, err)
		otherPub, _, err := kem.GenerateKeyPair()
		require.NoError(t, err)

		cert := *id.Certificate
		cert.KEMPublicKey = otherPub
		require.False(t, cert.Verify())
	})

	t.Run("signature bit flipped", func(t *testing.T) {
		cert := *id.Certificate
		cert.Signature = append([]byte(nil), cert.Signature...)
		cert.Signature[0] ^= 0x01
		require.False(t, cert.Verify())
	})
}

func TestCertificateMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	id := newTestIdentity(t)

	data, err := id.Certificate.Marshal()
	require.NoError(t, err)

	parsed, err := ParseCertificate(data)
	require.NoError(t, err)
	require.Equal(t, id.Certificate, parsed)
	require.True(t, parsed.Verify())
}

func TestCertificateSignRejectsAlgorithmMismatch(t *testing.T) {
	t.Parallel()

	id := newTestIdentity(t)

	otherSig, err := pqcrypto.NewSignature(pqcrypto.MLDSA65)
	require.NoError(t, err)
	_, otherPriv, err := otherSig.GenerateKeyPair()
	require.NoError(t, err)

	cert := *id.Certificate
	err = cert.Sign(otherSig, otherPriv)
	require.ErrorIs(t, err, ErrCertificate)
}

func TestNewIdentityRejectsUnknownAlgorithms(t *testing.T) {
	t.Parallel()

	_, err := NewIdentity("CN=localhost", "Kyber512", pqcrypto.MLDSA44)
	require.ErrorIs(t, err, pqcrypto.ErrUnsupportedAlgorithm)

	_, err = NewIdentity("CN=localhost", pqcrypto.MLKEM512, "Falcon-512")
	require.ErrorIs(t, err, pqcrypto.ErrUnsupportedAlgorithm)
}
