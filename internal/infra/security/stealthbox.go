package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	stealthKeyIterations = 100000
	stealthKeyLength     = 32
)

// ErrStealthCipher signals that a ciphertext failed authentication or could
// not be decoded.
var ErrStealthCipher = errors.New("stealthbox: cannot open ciphertext")

// StealthBox seals and opens the hidden ledger's field values with
// AES-256-GCM. The key is derived once from the configured secret via
// PBKDF2-SHA256, matching the iteration count the legacy system used.
type StealthBox struct {
	aead cipher.AEAD
}

// NewStealthBox derives the encryption key from the secret and salt.
func NewStealthBox(secret, salt string) (*StealthBox, error) {
	if secret == "" {
		return nil, errors.New("stealthbox: secret is required")
	}

	key := pbkdf2.Key([]byte(secret), []byte(salt), stealthKeyIterations, stealthKeyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("stealthbox: init cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("stealthbox: init gcm: %w", err)
	}

	return &StealthBox{aead: aead}, nil
}

// Seal encrypts the plaintext. The nonce is prepended to the returned blob.
func (b *StealthBox) Seal(plaintext string) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("stealthbox: generate nonce: %w", err)
	}

	return b.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Open decrypts a blob produced by Seal. Tampered or truncated input fails
// with ErrStealthCipher.
func (b *StealthBox) Open(blob []byte) (string, error) {
	if len(blob) < b.aead.NonceSize() {
		return "", ErrStealthCipher
	}

	nonce := blob[:b.aead.NonceSize()]
	plaintext, err := b.aead.Open(nil, nonce, blob[b.aead.NonceSize():], nil)
	if err != nil {
		return "", ErrStealthCipher
	}

	return string(plaintext), nil
}
