// Package paths centralizes the on-disk layout used by tether.
//
// Everything tether owns lives under ~/.tether/:
//
//	backups/<timestamp>/<category>/<relative_path>   pre-overwrite copies
//	apply.lock                                       advisory apply lock
//	state/machine_id                                 stable machine identifier
//	config.toml (or config.yaml)                     optional user config
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tether-cli/tether/pkg/errors"
)

const (
	// TetherDirName is the directory under $HOME holding all tether state
	TetherDirName = ".tether"

	// BackupsDirName is the backups subdirectory name
	BackupsDirName = "backups"

	// StateDirName is the state subdirectory name
	StateDirName = "state"

	// ApplyLockName is the advisory lock file guarding apply runs
	ApplyLockName = "apply.lock"

	// MachineIDName is the file holding the stable machine identifier
	MachineIDName = "machine_id"
)

// GetHomeDirectory returns the user's home directory.
// It first tries os.UserHomeDir(), then falls back to the HOME environment
// variable. If both fail, it returns an error rather than using dangerous
// defaults.
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		return homeDir, nil
	}

	homeDir = os.Getenv("HOME")
	if homeDir != "" {
		return homeDir, nil
	}

	return "", errors.New(errors.ErrFileAccess,
		"unable to determine home directory: neither os.UserHomeDir() nor HOME environment variable are available")
}

// TetherDir returns the tether state directory for the given home
func TetherDir(home string) string {
	return filepath.Join(home, TetherDirName)
}

// BackupsDir returns the backups directory for the given home
func BackupsDir(home string) string {
	return filepath.Join(TetherDir(home), BackupsDirName)
}

// StateDir returns the state directory for the given home
func StateDir(home string) string {
	return filepath.Join(TetherDir(home), StateDirName)
}

// ApplyLockPath returns the advisory lock path for the given home
func ApplyLockPath(home string) string {
	return filepath.Join(TetherDir(home), ApplyLockName)
}

// MachineIDPath returns the machine identifier path for the given home
func MachineIDPath(home string) string {
	return filepath.Join(StateDir(home), MachineIDName)
}

// ExpandHome expands a leading ~ or $HOME against the given home directory.
// Paths without a home prefix are returned unchanged.
func ExpandHome(path, home string) string {
	if path == "~" || path == "$HOME" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	if strings.HasPrefix(path, "$HOME/") {
		return filepath.Join(home, path[len("$HOME/"):])
	}
	return path
}

// DisplayPath renders an absolute path under home as ~/<relative>.
// Paths outside home are returned unchanged.
func DisplayPath(path, home string) string {
	rel, err := filepath.Rel(home, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return "~/" + filepath.ToSlash(rel)
}
