// Package config loads tether settings from layered sources: embedded
// defaults, an optional user config file under ~/.tether, and TETHER_*
// environment variables, in increasing precedence.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/paths"
)

//go:embed defaults.toml
var defaultConfig []byte

// Settings is the fully resolved tether configuration
type Settings struct {
	Dotfiles DotfilesSettings `koanf:"dotfiles" toml:"dotfiles"`
	Packages PackagesSettings `koanf:"packages" toml:"packages"`
	Security SecuritySettings `koanf:"security" toml:"security"`
	Backup   BackupSettings   `koanf:"backup" toml:"backup"`
	Process  ProcessSettings  `koanf:"process" toml:"process"`
}

// DotfilesSettings lists the dotfiles tracked for sync, relative to $HOME
type DotfilesSettings struct {
	Files []string `koanf:"files" toml:"files"`
}

// PackagesSettings lists the enabled package manager keys
type PackagesSettings struct {
	Managers []string `koanf:"managers" toml:"managers"`
}

// SecuritySettings controls secret scanning during capture
type SecuritySettings struct {
	ScanSecrets  bool `koanf:"scan_secrets" toml:"scan_secrets"`
	AllowSecrets bool `koanf:"allow_secrets" toml:"allow_secrets"`
}

// BackupSettings controls the backup rotation policy
type BackupSettings struct {
	Retention int `koanf:"retention" toml:"retention"`
}

// ProcessSettings controls subprocess execution
type ProcessSettings struct {
	TimeoutSeconds int `koanf:"timeout_seconds" toml:"timeout_seconds"`
}

// ProcessTimeout returns the per-invocation subprocess timeout
func (s *Settings) ProcessTimeout() time.Duration {
	if s.Process.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.Process.TimeoutSeconds) * time.Second
}

// Load resolves settings for the given home directory.
// Precedence, lowest to highest: embedded defaults, the first of
// ~/.tether/config.toml or ~/.tether/config.yaml that exists, then
// TETHER_* environment variables (TETHER_BACKUP_RETENTION=3 sets
// backup.retention).
func Load(home string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	for _, candidate := range configFileCandidates(home) {
		if _, err := os.Stat(candidate.path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(candidate.path), candidate.parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", candidate.path)
		}
		break
	}

	if err := k.Load(env.Provider("TETHER_", ".", envKeyToPath), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}

	return &settings, nil
}

type configFile struct {
	path   string
	parser koanf.Parser
}

func configFileCandidates(home string) []configFile {
	dir := paths.TetherDir(home)
	return []configFile{
		{path: filepath.Join(dir, "config.toml"), parser: toml.Parser()},
		{path: filepath.Join(dir, "config.yaml"), parser: yaml.Parser()},
	}
}

// envKeyToPath maps TETHER_BACKUP_RETENTION to backup.retention.
// Only the first underscore becomes a section separator so keys like
// timeout_seconds survive.
func envKeyToPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "TETHER_"))
	return strings.Replace(key, "_", ".", 1)
}
