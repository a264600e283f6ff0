package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/pqauth/pkg/jwtx"
	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
)

// InitSigningKey builds the ML-DSA signer for ID tokens.
//
// With no key file configured the keypair is ephemeral: generated at
// startup, gone at shutdown, and every outstanding ID token fails
// verification after a restart. With a key file, the keypair is loaded
// from it, or generated and written there on first boot, so the
// published verification key stays stable across restarts.
//
// The file holds the packed private key followed by the packed public
// key; both sizes are fixed by the algorithm.
func InitSigningKey(cfg Config, logger *slog.Logger) (*jwtx.MLDSASigner, error) {
	if !pqcrypto.IsSignatureAlgorithm(cfg.Algorithm) {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	if cfg.SigningKeyFile == "" {
		logger.Info("using ephemeral signing key", "algorithm", cfg.Algorithm)
		return jwtx.NewSigner(cfg.Algorithm)
	}

	data, err := os.ReadFile(cfg.SigningKeyFile)
	switch {
	case err == nil:
		return signerFromKeyFile(cfg, data, logger)
	case errors.Is(err, fs.ErrNotExist):
		return generateKeyFile(cfg, logger)
	default:
		return nil, fmt.Errorf("read signing key file: %w", err)
	}
}

func signerFromKeyFile(cfg Config, data []byte, logger *slog.Logger) (*jwtx.MLDSASigner, error) {
	scheme, err := pqcrypto.NewSignature(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	privSize, pubSize := scheme.PrivateKeySize(), scheme.PublicKeySize()
	if len(data) != privSize+pubSize {
		return nil, fmt.Errorf("signing key file %s: want %d bytes for %s, got %d",
			cfg.SigningKeyFile, privSize+pubSize, cfg.Algorithm, len(data))
	}

	signer, err := jwtx.NewSignerFromKeys(cfg.Algorithm, data[:privSize], data[privSize:])
	if err != nil {
		return nil, err
	}

	logger.Info("signing key loaded", "algorithm", cfg.Algorithm, "path", cfg.SigningKeyFile)
	return signer, nil
}

func generateKeyFile(cfg Config, logger *slog.Logger) (*jwtx.MLDSASigner, error) {
	scheme, err := pqcrypto.NewSignature(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	pub, priv, err := scheme.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, len(priv)+len(pub))
	data = append(data, priv...)
	data = append(data, pub...)
	if err := os.WriteFile(cfg.SigningKeyFile, data, 0o600); err != nil {
		return nil, fmt.Errorf("write signing key file: %w", err)
	}

	logger.Info("signing key generated", "algorithm", cfg.Algorithm, "path", cfg.SigningKeyFile)
	return jwtx.NewSignerFromKeys(cfg.Algorithm, priv, pub)
}
