package services

import (
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"
)

// MaxIdentityLen caps the plaintext identity accepted at ingestion.
const MaxIdentityLen = 256

// IdentityCipher seals optional respondent identities with an authenticated
// cipher. The sealed blob is nonce||ciphertext||tag, so any bit-level
// tampering fails authentication at decrypt time instead of yielding
// altered text.
type IdentityCipher struct {
	key []byte
}

// NewIdentityCipher builds a cipher from a 32-byte key.
func NewIdentityCipher(key []byte) (*IdentityCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, NewInvalidError("escrow key must be 32 bytes")
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &IdentityCipher{key: k}, nil
}

// Encrypt seals the identity under a fresh random nonce.
func (c *IdentityCipher) Encrypt(plaintext string) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, NewInvalidError("identity is empty")
	}
	if len(plaintext) > MaxIdentityLen {
		return nil, NewInvalidError("identity exceeds maximum length")
	}
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a sealed blob. A short blob, wrong key or flipped bit all
// surface as an integrity error; partial plaintext is never returned.
func (c *IdentityCipher) Decrypt(blob []byte) (string, error) {
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", err
	}
	if len(blob) < chacha20poly1305.NonceSize+aead.Overhead() {
		return "", NewIntegrityError("sealed identity is truncated")
	}
	nonce, ct := blob[:chacha20poly1305.NonceSize], blob[chacha20poly1305.NonceSize:]
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", NewIntegrityError("sealed identity failed authentication")
	}
	return string(pt), nil
}
