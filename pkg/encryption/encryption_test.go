package encryption_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/errors"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := encryption.GenerateKey()
	require.NoError(t, err)

	plaintext := []byte("machine snapshot payload")
	blob, err := encryption.Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, blob)

	decrypted, err := encryption.Decrypt(blob, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptWrongKey(t *testing.T) {
	key1, err := encryption.GenerateKey()
	require.NoError(t, err)
	key2, err := encryption.GenerateKey()
	require.NoError(t, err)

	blob, err := encryption.Encrypt([]byte("payload"), key1)
	require.NoError(t, err)

	_, err = encryption.Decrypt(blob, key2)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDecryptAuthFailed))
}

func TestDecryptCorruptedPayload(t *testing.T) {
	key, err := encryption.GenerateKey()
	require.NoError(t, err)

	blob, err := encryption.Encrypt([]byte("payload"), key)
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xff

	_, err = encryption.Decrypt(blob, key)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDecryptAuthFailed))
}

func TestDecryptTruncatedPayload(t *testing.T) {
	key, err := encryption.GenerateKey()
	require.NoError(t, err)

	_, err = encryption.Decrypt([]byte{1, 2, 3}, key)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDecryptAuthFailed))
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	key, err := encryption.GenerateKey()
	require.NoError(t, err)

	blob, err := encryption.Encrypt(nil, key)
	require.NoError(t, err)

	decrypted, err := encryption.Decrypt(blob, key)
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestEncryptNonceUniqueness(t *testing.T) {
	key, err := encryption.GenerateKey()
	require.NoError(t, err)

	a, err := encryption.Encrypt([]byte("same input"), key)
	require.NoError(t, err)
	b, err := encryption.Encrypt([]byte("same input"), key)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(a, b))
}

func TestGenerateKeyNotZero(t *testing.T) {
	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, [encryption.KeySize]byte{}, key)
}
