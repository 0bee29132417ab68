// Package encryption seals snapshot payloads with ChaCha20-Poly1305.
// The wire format is nonce || ciphertext+tag, so a blob carries
// everything needed for decryption except the key itself.
package encryption

import (
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/tether-cli/tether/pkg/errors"
)

// KeySize is the required key length in bytes
const KeySize = chacha20poly1305.KeySize

// GenerateKey returns a fresh random key
func GenerateKey() ([KeySize]byte, error) {
	var key [KeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return key, errors.Wrap(err, errors.ErrInternal, "failed to generate encryption key")
	}
	return key, nil
}

// Encrypt seals plaintext under key. Each call draws a fresh random
// nonce, prepended to the returned blob.
func Encrypt(plaintext []byte, key [KeySize]byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to initialize cipher")
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to generate nonce")
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. Tampering, truncation, or a
// wrong key all surface as DECRYPT_AUTH_FAILED.
func Decrypt(blob []byte, key [KeySize]byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to initialize cipher")
	}

	if len(blob) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New(errors.ErrDecryptAuthFailed, "encrypted payload is too short").
			WithDetail("length", len(blob))
	}

	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDecryptAuthFailed, "decryption failed, wrong key or corrupted payload")
	}
	return plaintext, nil
}
