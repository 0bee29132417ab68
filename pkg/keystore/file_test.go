package keystore_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/keystore"
)

func TestFileKeystoreRoundTrip(t *testing.T) {
	ks := keystore.NewFile(filepath.Join(t.TempDir(), "state", "key"))

	key, err := encryption.GenerateKey()
	require.NoError(t, err)

	assert.False(t, ks.Has())
	require.NoError(t, ks.Store(key))
	assert.True(t, ks.Has())

	got, err := ks.Get()
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestFileKeystoreGetMissing(t *testing.T) {
	ks := keystore.NewFile(filepath.Join(t.TempDir(), "key"))

	_, err := ks.Get()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrKeyNotFound))
}

func TestFileKeystoreStoreReplaces(t *testing.T) {
	ks := keystore.NewFile(filepath.Join(t.TempDir(), "key"))

	key1, err := encryption.GenerateKey()
	require.NoError(t, err)
	key2, err := encryption.GenerateKey()
	require.NoError(t, err)

	require.NoError(t, ks.Store(key1))
	require.NoError(t, ks.Store(key2))

	got, err := ks.Get()
	require.NoError(t, err)
	assert.Equal(t, key2, got)
}

func TestFileKeystoreDeleteIdempotent(t *testing.T) {
	ks := keystore.NewFile(filepath.Join(t.TempDir(), "key"))

	require.NoError(t, ks.Delete())

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, ks.Store(key))
	require.NoError(t, ks.Delete())
	assert.False(t, ks.Has())
	require.NoError(t, ks.Delete())
}

func TestFileKeystoreWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0600))

	ks := keystore.NewFile(path)
	assert.False(t, ks.Has())

	_, err := ks.Get()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrKeystoreUnavailable))
}

func TestFileKeystorePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "state", "key")
	ks := keystore.NewFile(path)

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, ks.Store(key))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}
