package config

import (
	"os"
	"path/filepath"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/paths"
)

// Default returns the built-in settings without user or environment overrides
func Default() (*Settings, error) {
	var settings Settings
	if err := gotoml.Unmarshal(defaultConfig, &settings); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "embedded defaults are invalid")
	}
	return &settings, nil
}

// WriteDefaultConfig writes the default settings to ~/.tether/config.toml
// so users have a file to edit. Refuses to overwrite an existing config.
func WriteDefaultConfig(home string) (string, error) {
	path := filepath.Join(paths.TetherDir(home), "config.toml")
	if _, err := os.Stat(path); err == nil {
		return "", errors.Newf(errors.ErrInvalidInput, "config already exists at %s", path)
	}

	settings, err := Default()
	if err != nil {
		return "", err
	}

	data, err := gotoml.Marshal(settings)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render default config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "failed to create config directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrFileWrite, "failed to write config")
	}

	return path, nil
}
