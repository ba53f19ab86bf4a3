package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

const generatedKeyBits = 2048

// loadJWTKeys reads the base64 PEM keypair from JWT_PRIVATE_KEY and JWT_PUBLIC_KEY.
// Outside production a missing pair is replaced by a fresh one, which invalidates
// issued tokens on every restart.
func (c *Config) loadJWTKeys() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateB64 := os.Getenv("JWT_PRIVATE_KEY")
	publicB64 := os.Getenv("JWT_PUBLIC_KEY")

	switch {
	case privateB64 != "" && publicB64 != "":
		private, err := decodeKey("JWT_PRIVATE_KEY", privateB64, parseRSAPrivateKey)
		if err != nil {
			return nil, nil, err
		}
		public, err := decodeKey("JWT_PUBLIC_KEY", publicB64, parseRSAPublicKey)
		if err != nil {
			return nil, nil, err
		}
		if !private.PublicKey.Equal(public) {
			return nil, nil, errors.New("JWT_PUBLIC_KEY does not match JWT_PRIVATE_KEY")
		}
		return private, public, nil
	case privateB64 != "" || publicB64 != "":
		return nil, nil, errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set together")
	case c.IsProduction():
		return nil, nil, errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required in production")
	}

	slog.Warn("Generating an ephemeral RSA keypair; tokens will not survive a restart")
	return GenerateRSAKeyPair()
}

func decodeKey[K any](name, encoded string, parse func([]byte) (K, error)) (K, error) {
	var zero K
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", name, err)
	}
	key, err := parse(raw)
	if err != nil {
		return zero, fmt.Errorf("parse %s: %w", name, err)
	}
	return key, nil
}

func GenerateRSAKeyPair() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, generatedKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("generate RSA key pair: %w", err)
	}
	return privateKey, &privateKey.PublicKey, nil
}

func pemBlock(data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	return block.Bytes, nil
}

// parseRSAPrivateKey accepts PKCS#1 and PKCS#8 encodings.
func parseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	der, err := pemBlock(data)
	if err != nil {
		return nil, err
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("expected an RSA private key, got %T", parsed)
	}
	return key, nil
}

func parseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	der, err := pemBlock(data)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("expected an RSA public key, got %T", parsed)
	}
	return key, nil
}
