package pqcrypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKEMRejectsUnknownAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := NewKEM("Kyber9000")
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestKEMEncapsulateDecapsulateRoundTrip(t *testing.T) {
	t.Parallel()

	for _, alg := range KEMAlgorithms() {
		t.Run(alg, func(t *testing.T) {
			t.Parallel()

			k, err := NewKEM(alg)
			require.NoError(t, err)

			pub, priv, err := k.GenerateKeyPair()
			require.NoError(t, err)
			require.Len(t, pub, k.PublicKeySize())
			require.Len(t, priv, k.PrivateKeySize())

			ct, ssSender, err := k.Encapsulate(pub)
			require.NoError(t, err)
			require.Len(t, ct, k.CiphertextSize())
			require.Len(t, ssSender, k.SharedKeySize())

			ssReceiver, err := k.Decapsulate(ct, priv)
			require.NoError(t, err)
			require.Equal(t, ssSender, ssReceiver)
		})
	}
}

func TestKEMRejectsTruncatedPublicKey(t *testing.T) {
	t.Parallel()

	k, err := NewKEM(MLKEM768)
	require.NoError(t, err)

	pub, _, err := k.GenerateKeyPair()
	require.NoError(t, err)

	_, _, err = k.Encapsulate(pub[:len(pub)-1])
	require.Error(t, err)
}

func TestNewSignatureRejectsUnknownAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := NewSignature("Falcon-512")
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestSignatureSignVerify(t *testing.T) {
	t.Parallel()

	for _, alg := range SignatureAlgorithms() {
		t.Run(alg, func(t *testing.T) {
			t.Parallel()

			s, err := NewSignature(alg)
			require.NoError(t, err)

			pub, priv, err := s.GenerateKeyPair()
			require.NoError(t, err)

			msg := []byte("post-quantum identity assertion")
			sig, err := s.Sign(priv, msg)
			require.NoError(t, err)
			require.Len(t, sig, s.SignatureSize())

			require.True(t, s.Verify(pub, msg, sig))
			require.False(t, s.Verify(pub, []byte("tampered message"), sig))

			// Flip one bit of the signature.
			sig[0] ^= 0x01
			require.False(t, s.Verify(pub, msg, sig))
		})
	}
}

func TestSignatureRejectsForeignKey(t *testing.T) {
	t.Parallel()

	s, err := NewSignature(MLDSA44)
	require.NoError(t, err)

	_, priv, err := s.GenerateKeyPair()
	require.NoError(t, err)
	otherPub, _, err := s.GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("signed by one key, verified by another")
	sig, err := s.Sign(priv, msg)
	require.NoError(t, err)

	require.False(t, s.Verify(otherPub, msg, sig))
}
