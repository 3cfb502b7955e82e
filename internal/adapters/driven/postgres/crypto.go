package postgres

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

var (
	// ErrInvalidKeySize is returned when the encryption key is not 32 bytes.
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

	// ErrCiphertextTooShort is returned when a stored blob cannot hold a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")

	// ErrDecryptFailed is returned on a wrong key or a corrupted blob.
	ErrDecryptFailed = errors.New("contact decryption failed")
)

// ContactEncryptor seals booking contact fields (email, phone) with
// AES-256-GCM before they reach the bookings table. Stored blob layout
// is nonce || ciphertext; GCM authenticates, so tampering surfaces as
// ErrDecryptFailed rather than garbage contact data.
type ContactEncryptor struct {
	aead cipher.AEAD
}

// NewContactEncryptor creates an encryptor from a 32-byte key.
func NewContactEncryptor(key []byte) (*ContactEncryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &ContactEncryptor{aead: aead}, nil
}

// Seal encrypts a contact value for storage.
func (e *ContactEncryptor) Seal(value string) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, []byte(value), nil), nil
}

// Open decrypts a stored contact blob.
func (e *ContactEncryptor) Open(blob []byte) (string, error) {
	if len(blob) < e.aead.NonceSize() {
		return "", ErrCiphertextTooShort
	}
	nonce, ciphertext := blob[:e.aead.NonceSize()], blob[e.aead.NonceSize():]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
