package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// PEMFormat selects the private key encoding produced by GenerateRSAKey.
type PEMFormat int

const (
	// PKCS1 produces an "RSA PRIVATE KEY" block, the format Salesforce's
	// connected-app docs generate with openssl.
	PKCS1 PEMFormat = iota
	// PKCS8 produces a "PRIVATE KEY" block.
	PKCS8
)

// MinRSABits is the smallest key size GenerateRSAKey accepts.
const MinRSABits = 2048

// GenerateRSAKey generates a new RSA private key and returns it PEM encoded.
func GenerateRSAKey(bits int, format PEMFormat) ([]byte, error) {
	if bits < MinRSABits {
		return nil, fmt.Errorf("cryptox: RSA key size must be at least %d bits", MinRSABits)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate RSA key: %w", err)
	}

	block := &pem.Block{}
	switch format {
	case PKCS1:
		block.Type = "RSA PRIVATE KEY"
		block.Bytes = x509.MarshalPKCS1PrivateKey(privateKey)
	case PKCS8:
		der, err := x509.MarshalPKCS8PrivateKey(privateKey)
		if err != nil {
			return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
		}
		block.Type = "PRIVATE KEY"
		block.Bytes = der
	default:
		return nil, fmt.Errorf("cryptox: unknown PEM format %d", format)
	}

	return pem.EncodeToMemory(block), nil
}

// ParseRSAPrivateKey loads an RSA private key from PEM bytes. Handles both
// PKCS1 and PKCS8 because connected-app keys show up in either.
func ParseRSAPrivateKey(pemKey []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("cryptox: invalid PEM for RSA key")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cryptox: parse RSA key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cryptox: parse PKCS8: %w", err)
		}
		key, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("cryptox: not RSA private key")
		}
		return key, nil
	default:
		return nil, fmt.Errorf("cryptox: unsupported PEM type %q", block.Type)
	}
}
