package crypto_test

import (
	"testing"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/crypto"
)

func TestEncryptor(t *testing.T) {
	newEncryptor := func(t *testing.T) *crypto.Encryptor {
		t.Helper()
		key, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("GenerateKey() returned unexpected error: %v", err)
		}
		enc, err := crypto.NewEncryptor(key)
		if err != nil {
			t.Fatalf("NewEncryptor() returned unexpected error: %v", err)
		}
		return enc
	}

	t.Run("round-trips plaintext", func(t *testing.T) {
		enc := newEncryptor(t)

		token, err := enc.Encrypt("mandate_secret_1")
		if err != nil {
			t.Fatalf("Encrypt() returned unexpected error: %v", err)
		}
		if token == "mandate_secret_1" {
			t.Error("Expected ciphertext to differ from plaintext")
		}

		plaintext, err := enc.Decrypt(token)
		if err != nil {
			t.Fatalf("Decrypt() returned unexpected error: %v", err)
		}
		if plaintext != "mandate_secret_1" {
			t.Errorf("Expected round-trip to return the plaintext, got %q", plaintext)
		}
	})

	t.Run("rejects tokens from a different key", func(t *testing.T) {
		enc1 := newEncryptor(t)
		enc2 := newEncryptor(t)

		token, err := enc1.Encrypt("mandate_secret_1")
		if err != nil {
			t.Fatalf("Encrypt() returned unexpected error: %v", err)
		}

		if _, err := enc2.Decrypt(token); err == nil {
			t.Error("Expected decryption with the wrong key to fail")
		}
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		enc := newEncryptor(t)

		if _, err := enc.Decrypt("not-a-token"); err == nil {
			t.Error("Expected error for garbage token, got nil")
		}
	})

	t.Run("rejects malformed keys", func(t *testing.T) {
		if _, err := crypto.NewEncryptor("short"); err == nil {
			t.Error("Expected error for malformed key, got nil")
		}
	})
}
