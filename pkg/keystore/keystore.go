// Package keystore persists the snapshot encryption key. The system
// implementation binds to the OS credential store; a file-backed
// implementation covers headless hosts and tests.
package keystore

import (
	"encoding/base64"

	"github.com/zalando/go-keyring"

	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/errors"
)

const (
	// ServiceName identifies this tool in the OS credential store
	ServiceName = "com.tether-cli"
	// AccountName is the single slot the encryption key lives under
	AccountName = "encryption-key"
)

// Keystore stores and retrieves the snapshot encryption key
type Keystore interface {
	// Store saves the key, replacing any existing one
	Store(key [encryption.KeySize]byte) error

	// Get returns the stored key, or KEY_NOT_FOUND
	Get() ([encryption.KeySize]byte, error)

	// Has reports whether a key is stored. Never fails.
	Has() bool

	// Delete removes the stored key. Deleting a missing key is not an
	// error.
	Delete() error
}

// SystemKeystore stores the key in the OS credential store
type SystemKeystore struct {
	service string
	account string
}

// NewSystem returns a keystore bound to the OS credential store
func NewSystem() *SystemKeystore {
	return &SystemKeystore{service: ServiceName, account: AccountName}
}

// Store implements Keystore. The existing entry is deleted first so a
// re-init never leaves a stale duplicate behind.
func (s *SystemKeystore) Store(key [encryption.KeySize]byte) error {
	_ = keyring.Delete(s.service, s.account)

	encoded := base64.StdEncoding.EncodeToString(key[:])
	if err := keyring.Set(s.service, s.account, encoded); err != nil {
		return errors.Wrap(err, errors.ErrKeystoreUnavailable, "failed to store key in system keystore")
	}
	return nil
}

// Get implements Keystore
func (s *SystemKeystore) Get() ([encryption.KeySize]byte, error) {
	var key [encryption.KeySize]byte

	encoded, err := keyring.Get(s.service, s.account)
	if err != nil {
		if err == keyring.ErrNotFound {
			return key, errors.New(errors.ErrKeyNotFound, "no encryption key stored, run init first")
		}
		return key, errors.Wrap(err, errors.ErrKeystoreUnavailable, "failed to read system keystore")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return key, errors.Wrap(err, errors.ErrKeystoreUnavailable, "stored key is not valid base64")
	}
	if len(raw) != encryption.KeySize {
		return key, errors.Newf(errors.ErrKeystoreUnavailable, "stored key has wrong length %d", len(raw))
	}

	copy(key[:], raw)
	return key, nil
}

// Has implements Keystore
func (s *SystemKeystore) Has() bool {
	_, err := keyring.Get(s.service, s.account)
	return err == nil
}

// Delete implements Keystore
func (s *SystemKeystore) Delete() error {
	err := keyring.Delete(s.service, s.account)
	if err != nil && err != keyring.ErrNotFound {
		return errors.Wrap(err, errors.ErrKeystoreUnavailable, "failed to delete key from system keystore")
	}
	return nil
}
