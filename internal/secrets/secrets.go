// Package secrets seals sensitive values (the market-data API key) before
// they are written to the persistence store, using fernet symmetric
// tokens.
package secrets

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// Sealer encrypts and decrypts short secrets with a fernet key.
type Sealer struct {
	key *fernet.Key
}

// NewSealer parses a base64 fernet key. An empty key string yields a nil
// Sealer, which callers treat as sealing disabled.
func NewSealer(encodedKey string) (*Sealer, error) {
	if encodedKey == "" {
		return nil, nil
	}

	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid fernet key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext into a fernet token.
func (s *Sealer) Seal(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to seal secret: %w", err)
	}
	return string(token), nil
}

// Open decrypts a fernet token produced by Seal. Tokens do not expire; a
// zero TTL disables the age check.
func (s *Sealer) Open(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{s.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to open sealed secret: token invalid")
	}
	return string(plaintext), nil
}
