package keystore

import (
	"os"
	"path/filepath"

	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/errors"
)

// FileKeystore stores the key in a plain file with restricted
// permissions. Used on headless hosts where no credential store runs,
// and in tests.
type FileKeystore struct {
	path string
}

// NewFile returns a keystore backed by the given file path
func NewFile(path string) *FileKeystore {
	return &FileKeystore{path: path}
}

// Store implements Keystore
func (f *FileKeystore) Store(key [encryption.KeySize]byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, errors.ErrKeystoreUnavailable, "failed to create keystore directory %s", dir)
	}
	if err := os.WriteFile(f.path, key[:], 0600); err != nil {
		return errors.Wrapf(err, errors.ErrKeystoreUnavailable, "failed to write key file %s", f.path)
	}
	return nil
}

// Get implements Keystore
func (f *FileKeystore) Get() ([encryption.KeySize]byte, error) {
	var key [encryption.KeySize]byte

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return key, errors.New(errors.ErrKeyNotFound, "no encryption key stored, run init first")
		}
		return key, errors.Wrapf(err, errors.ErrKeystoreUnavailable, "failed to read key file %s", f.path)
	}
	if len(raw) != encryption.KeySize {
		return key, errors.Newf(errors.ErrKeystoreUnavailable, "key file has wrong length %d", len(raw))
	}

	copy(key[:], raw)
	return key, nil
}

// Has implements Keystore
func (f *FileKeystore) Has() bool {
	info, err := os.Stat(f.path)
	return err == nil && info.Size() == encryption.KeySize
}

// Delete implements Keystore
func (f *FileKeystore) Delete() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrKeystoreUnavailable, "failed to delete key file %s", f.path)
	}
	return nil
}
