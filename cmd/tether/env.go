package main

import (
	"path/filepath"

	"github.com/tether-cli/tether/pkg/config"
	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/keystore"
	"github.com/tether-cli/tether/pkg/managers"
	"github.com/tether-cli/tether/pkg/paths"
	"github.com/tether-cli/tether/pkg/runner"
)

// env bundles what nearly every command needs
type env struct {
	home     string
	settings *config.Settings
	registry *managers.Registry
}

func loadEnv() (*env, error) {
	home, err := paths.GetHomeDirectory()
	if err != nil {
		return nil, err
	}

	settings, err := config.Load(home)
	if err != nil {
		return nil, err
	}

	r := runner.NewWithTimeout(settings.ProcessTimeout())
	reg := managers.NewRegistry(r)
	if len(settings.Packages.Managers) > 0 {
		reg = reg.Restrict(settings.Packages.Managers)
	}

	return &env{home: home, settings: settings, registry: reg}, nil
}

func fileKeystorePath(home string) string {
	return filepath.Join(paths.StateDir(home), "keyfile")
}

// loadKey reads the encryption key, preferring the OS credential store
// and falling back to the file keystore for headless hosts.
func loadKey(home string) ([encryption.KeySize]byte, error) {
	stores := []keystore.Keystore{
		keystore.NewSystem(),
		keystore.NewFile(fileKeystorePath(home)),
	}

	var lastErr error
	for _, ks := range stores {
		key, err := ks.Get()
		if err == nil {
			return key, nil
		}
		lastErr = err
	}

	if errors.IsErrorCode(lastErr, errors.ErrKeyNotFound) {
		return [encryption.KeySize]byte{}, lastErr
	}
	return [encryption.KeySize]byte{}, errors.Wrap(lastErr, errors.ErrKeystoreUnavailable, "no usable keystore found")
}

// storeKey persists the encryption key, falling back to the file
// keystore when no credential store is reachable.
func storeKey(home string, key [encryption.KeySize]byte) (string, error) {
	if err := keystore.NewSystem().Store(key); err == nil {
		return "system keystore", nil
	}

	if err := keystore.NewFile(fileKeystorePath(home)).Store(key); err != nil {
		return "", err
	}
	return "file keystore", nil
}
