// Package crypto wraps fernet symmetric encryption for secrets stored in the
// database, currently the ACH mandate ids on payment sources.
package crypto

import (
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
)

// Encryptor encrypts and decrypts short secrets with a single fernet key.
type Encryptor struct {
	key *fernet.Key
}

// NewEncryptor parses a base64 url-safe fernet key.
func NewEncryptor(encodedKey string) (*Encryptor, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &Encryptor{key: key}, nil
}

// Encrypt returns the fernet token for the given plaintext.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), e.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and decrypts a fernet token. Tokens do not expire: stored
// mandate ids must stay readable indefinitely, so TTL is zero.
func (e *Encryptor) Decrypt(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0*time.Second, []*fernet.Key{e.key})
	if plaintext == nil {
		return "", fmt.Errorf("failed to decrypt token")
	}
	return string(plaintext), nil
}

// GenerateKey creates a new random fernet key in encoded form. Used by setup
// tooling and tests.
func GenerateKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate fernet key: %w", err)
	}
	return key.Encode(), nil
}
