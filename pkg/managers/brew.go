package managers

import (
	"context"
	"strings"

	"github.com/tether-cli/tether/pkg/runner"
)

// brewKind selects which Homebrew inventory an adapter covers
type brewKind int

const (
	brewFormulae brewKind = iota
	brewCasks
	brewTaps
)

// BrewAdapter covers one of the three Homebrew inventories: formulae,
// casks, or taps. The three slots share the brew binary but are captured
// and reconciled independently.
type BrewAdapter struct {
	unsupported
	runner runner.Runner
	kind   brewKind
}

// NewBrewFormulae returns the adapter for brew formulae
func NewBrewFormulae(r runner.Runner) *BrewAdapter {
	return &BrewAdapter{unsupported: unsupported{KeyBrewFormulae}, runner: r, kind: brewFormulae}
}

// NewBrewCasks returns the adapter for brew casks
func NewBrewCasks(r runner.Runner) *BrewAdapter {
	return &BrewAdapter{unsupported: unsupported{KeyBrewCasks}, runner: r, kind: brewCasks}
}

// NewBrewTaps returns the adapter for brew taps
func NewBrewTaps(r runner.Runner) *BrewAdapter {
	return &BrewAdapter{unsupported: unsupported{KeyBrewTaps}, runner: r, kind: brewTaps}
}

// Key implements Adapter
func (a *BrewAdapter) Key() Key {
	return a.unsupported.key
}

// IsAvailable implements Adapter
func (a *BrewAdapter) IsAvailable() bool {
	return a.runner.Available("brew")
}

// ListInstalled implements Adapter
func (a *BrewAdapter) ListInstalled(ctx context.Context) ([]PackageInfo, error) {
	var args []string
	switch a.kind {
	case brewFormulae:
		args = []string{"list", "--formula"}
	case brewCasks:
		args = []string{"list", "--cask"}
	case brewTaps:
		args = []string{"tap"}
	}

	result, err := a.runner.Run(ctx, "brew", args...)
	if err != nil {
		return nil, err
	}

	return sortPackages(parseNameLines(string(result.Stdout))), nil
}

// Install implements Adapter. Casks need the --cask flag to disambiguate
// from same-named formulae; taps are added rather than installed.
func (a *BrewAdapter) Install(ctx context.Context, pkg PackageInfo) error {
	var args []string
	switch a.kind {
	case brewFormulae:
		args = []string{"install", pkg.Name}
	case brewCasks:
		args = []string{"install", "--cask", pkg.Name}
	case brewTaps:
		args = []string{"tap", pkg.Name}
	}

	_, err := a.runner.Run(ctx, "brew", args...)
	return err
}

// Uninstall implements Adapter. Taps cannot be uninstalled through this
// surface.
func (a *BrewAdapter) Uninstall(ctx context.Context, name string) error {
	if a.kind == brewTaps {
		return a.notSupported("uninstall")
	}
	result, err := a.runner.Run(ctx, "brew", "uninstall", name)
	if err != nil && strings.Contains(string(result.Stderr), "No such keg") {
		return nil
	}
	return err
}

// UpdateAll implements Adapter
func (a *BrewAdapter) UpdateAll(ctx context.Context) error {
	if a.kind == brewTaps {
		return a.notSupported("update")
	}
	_, err := a.runner.Run(ctx, "brew", "upgrade")
	return err
}

// ExportManifest implements Adapter
func (a *BrewAdapter) ExportManifest(ctx context.Context) (string, error) {
	pkgs, err := a.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	return BuildManifest(pkgs), nil
}

// ImportManifest implements Adapter
func (a *BrewAdapter) ImportManifest(ctx context.Context, manifest string) error {
	return importMissing(ctx, a, manifest)
}

// GetDependents implements Adapter. Only formulae have a reverse
// dependency query.
func (a *BrewAdapter) GetDependents(ctx context.Context, name string) ([]string, error) {
	if a.kind != brewFormulae {
		return nil, a.notSupported("reverse dependency lookup")
	}

	result, err := a.runner.Run(ctx, "brew", "uses", "--installed", name)
	if err != nil {
		return nil, nil
	}

	var dependents []string
	for _, line := range strings.Split(string(result.Stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			dependents = append(dependents, line)
		}
	}
	return dependents, nil
}

// NormalizeFormulaName strips a tap prefix from a formula name, so
// "oven-sh/bun/bun" becomes "bun". Plain names pass through.
func NormalizeFormulaName(name string) string {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// parseNameLines turns one-name-per-line output into packages
func parseNameLines(output string) []PackageInfo {
	var pkgs []PackageInfo
	for _, line := range strings.Split(output, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			pkgs = append(pkgs, PackageInfo{Name: name})
		}
	}
	return pkgs
}
