// Package managers exposes a uniform capability set over heterogeneous
// package managers. Each adapter shells out through a shared runner and
// parses the tool's native output; the closed set of manager keys is the
// only dispatch surface.
package managers

import (
	"context"
	"sort"

	"github.com/tether-cli/tether/pkg/errors"
)

// Key identifies one package manager inventory slot
type Key string

// The closed set of manager keys
const (
	KeyBrewFormulae Key = "brew_formulae"
	KeyBrewCasks    Key = "brew_casks"
	KeyBrewTaps     Key = "brew_taps"
	KeyNpm          Key = "npm"
	KeyPnpm         Key = "pnpm"
	KeyBun          Key = "bun"
	KeyGem          Key = "gem"
	KeyUv           Key = "uv"
	KeyWinget       Key = "winget"
)

// AllKeys returns every manager key, sorted ascending
func AllKeys() []Key {
	keys := []Key{
		KeyBrewFormulae, KeyBrewCasks, KeyBrewTaps,
		KeyNpm, KeyPnpm, KeyBun, KeyGem, KeyUv, KeyWinget,
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Label returns the stable human label for a key
func (k Key) Label() string {
	switch k {
	case KeyBrewFormulae:
		return "Homebrew Formulae"
	case KeyBrewCasks:
		return "Homebrew Casks"
	case KeyBrewTaps:
		return "Homebrew Taps"
	case KeyNpm:
		return "npm"
	case KeyPnpm:
		return "pnpm"
	case KeyBun:
		return "Bun"
	case KeyGem:
		return "RubyGems"
	case KeyUv:
		return "uv Tools"
	case KeyWinget:
		return "WinGet"
	default:
		return string(k)
	}
}

// Valid reports whether the key belongs to the closed set
func (k Key) Valid() bool {
	switch k {
	case KeyBrewFormulae, KeyBrewCasks, KeyBrewTaps,
		KeyNpm, KeyPnpm, KeyBun, KeyGem, KeyUv, KeyWinget:
		return true
	}
	return false
}

// PackageInfo describes one installed package. Reconciliation compares
// packages by name only.
type PackageInfo struct {
	Name    string `cbor:"name" json:"name" yaml:"name"`
	Version string `cbor:"version,omitempty" json:"version,omitempty" yaml:"version,omitempty"`
}

// Spec renders the package as name or name@version for install commands
func (p PackageInfo) Spec() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}

// Adapter is the uniform capability set over one package manager.
// Capabilities a manager cannot provide return NOT_SUPPORTED errors.
type Adapter interface {
	// Key returns the inventory slot this adapter fills
	Key() Key

	// IsAvailable reports whether the underlying program is on PATH.
	// Never fails.
	IsAvailable() bool

	// ListInstalled returns installed packages sorted by name with no
	// duplicates. Manager-specific "no data yet" states yield an empty
	// list rather than an error.
	ListInstalled(ctx context.Context) ([]PackageInfo, error)

	// Install installs one package, optionally at a pinned version.
	// Installing an already-installed package is a no-op.
	Install(ctx context.Context, pkg PackageInfo) error

	// Uninstall removes a package. A missing package is not an error.
	Uninstall(ctx context.Context, name string) error

	// UpdateAll upgrades all installed packages to latest
	UpdateAll(ctx context.Context) error

	// ExportManifest returns newline-delimited package names
	ExportManifest(ctx context.Context) (string, error)

	// ImportManifest installs packages from a manifest that are not yet
	// installed. Per-package failures are logged and do not abort the
	// remaining installs.
	ImportManifest(ctx context.Context, manifest string) error

	// GetDependents returns reverse-dependency names, or empty on failure
	GetDependents(ctx context.Context, name string) ([]string, error)
}

// unsupported supplies NOT_SUPPORTED defaults for optional capabilities
type unsupported struct {
	key Key
}

func (u unsupported) notSupported(capability string) error {
	return errors.Newf(errors.ErrNotSupported, "%s does not support %s", u.key.Label(), capability)
}

func (u unsupported) Uninstall(ctx context.Context, name string) error {
	return u.notSupported("uninstall")
}

func (u unsupported) UpdateAll(ctx context.Context) error {
	return u.notSupported("update")
}

func (u unsupported) GetDependents(ctx context.Context, name string) ([]string, error) {
	return nil, u.notSupported("reverse dependency lookup")
}

// sortPackages sorts by name ascending and drops duplicate names,
// keeping the first occurrence.
func sortPackages(pkgs []PackageInfo) []PackageInfo {
	sort.SliceStable(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })

	out := pkgs[:0]
	var last string
	for _, p := range pkgs {
		if p.Name == last && len(out) > 0 {
			continue
		}
		out = append(out, p)
		last = p.Name
	}
	return out
}
