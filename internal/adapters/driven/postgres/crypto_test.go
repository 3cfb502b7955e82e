package postgres

import (
	"bytes"
	"errors"
	"testing"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestContactEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewContactEncryptor(testKey(0x42))
	if err != nil {
		t.Fatalf("NewContactEncryptor: %v", err)
	}

	for _, value := range []string{"alice@example.com", "07700 900123", ""} {
		blob, err := enc.Seal(value)
		if err != nil {
			t.Fatalf("Seal(%q): %v", value, err)
		}
		if bytes.Contains(blob, []byte("alice")) {
			t.Error("plaintext visible in sealed blob")
		}

		got, err := enc.Open(blob)
		if err != nil {
			t.Fatalf("Open(%q): %v", value, err)
		}
		if got != value {
			t.Errorf("round trip changed %q to %q", value, got)
		}
	}
}

func TestContactEncryptor_NoncesDiffer(t *testing.T) {
	enc, _ := NewContactEncryptor(testKey(0x42))

	a, _ := enc.Seal("alice@example.com")
	b, _ := enc.Seal("alice@example.com")
	if bytes.Equal(a, b) {
		t.Error("sealing the same value twice must not produce the same blob")
	}
}

func TestContactEncryptor_KeySize(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		if _, err := NewContactEncryptor(make([]byte, size)); !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("key size %d: expected ErrInvalidKeySize, got %v", size, err)
		}
	}
	if _, err := NewContactEncryptor(make([]byte, 32)); err != nil {
		t.Errorf("32-byte key rejected: %v", err)
	}
}

func TestContactEncryptor_WrongKey(t *testing.T) {
	enc1, _ := NewContactEncryptor(testKey(0x01))
	enc2, _ := NewContactEncryptor(testKey(0x02))

	blob, _ := enc1.Seal("555-1234")
	if _, err := enc2.Open(blob); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("expected ErrDecryptFailed with the wrong key, got %v", err)
	}
}

func TestContactEncryptor_CorruptedBlob(t *testing.T) {
	enc, _ := NewContactEncryptor(testKey(0x42))

	blob, _ := enc.Seal("alice@example.com")
	blob[len(blob)-1] ^= 0xff
	if _, err := enc.Open(blob); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("expected ErrDecryptFailed for a tampered blob, got %v", err)
	}

	if _, err := enc.Open([]byte{0x01, 0x02}); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("expected ErrCiphertextTooShort, got %v", err)
	}
}
