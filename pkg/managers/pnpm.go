package managers

import (
	"context"
	"encoding/json"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/runner"
)

// PnpmAdapter covers global pnpm packages
type PnpmAdapter struct {
	unsupported
	runner runner.Runner
}

// NewPnpm returns the pnpm adapter
func NewPnpm(r runner.Runner) *PnpmAdapter {
	return &PnpmAdapter{unsupported: unsupported{KeyPnpm}, runner: r}
}

// pnpm list -g --json emits an array of workspace entries
type pnpmEntry struct {
	Name         string                    `json:"name"`
	Version      string                    `json:"version"`
	Dependencies map[string]pnpmDependency `json:"dependencies"`
}

type pnpmDependency struct {
	Version string `json:"version"`
}

// Key implements Adapter
func (a *PnpmAdapter) Key() Key {
	return KeyPnpm
}

// IsAvailable implements Adapter
func (a *PnpmAdapter) IsAvailable() bool {
	return a.runner.Available("pnpm")
}

// ListInstalled implements Adapter. pnpm itself is excluded, as is the
// synthetic global workspace entry.
func (a *PnpmAdapter) ListInstalled(ctx context.Context) ([]PackageInfo, error) {
	result, err := a.runner.Run(ctx, "pnpm", "list", "-g", "--depth=0", "--json")
	if err != nil {
		return nil, err
	}

	var entries []pnpmEntry
	if err := json.Unmarshal(result.Stdout, &entries); err != nil {
		return nil, errors.Wrap(err, errors.ErrParseFailed, "failed to parse pnpm list output").
			WithDetail("source", "pnpm list -g --depth=0 --json")
	}

	var pkgs []PackageInfo
	for _, entry := range entries {
		for name, dep := range entry.Dependencies {
			if name == "pnpm" {
				continue
			}
			pkgs = append(pkgs, PackageInfo{Name: name, Version: dep.Version})
		}
	}
	return sortPackages(pkgs), nil
}

// Install implements Adapter
func (a *PnpmAdapter) Install(ctx context.Context, pkg PackageInfo) error {
	_, err := a.runner.Run(ctx, "pnpm", "add", "-g", pkg.Spec())
	return err
}

// Uninstall implements Adapter
func (a *PnpmAdapter) Uninstall(ctx context.Context, name string) error {
	_, err := a.runner.Run(ctx, "pnpm", "remove", "-g", name)
	return err
}

// UpdateAll implements Adapter
func (a *PnpmAdapter) UpdateAll(ctx context.Context) error {
	_, err := a.runner.Run(ctx, "pnpm", "update", "-g")
	return err
}

// ExportManifest implements Adapter
func (a *PnpmAdapter) ExportManifest(ctx context.Context) (string, error) {
	pkgs, err := a.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	return BuildManifest(pkgs), nil
}

// ImportManifest implements Adapter
func (a *PnpmAdapter) ImportManifest(ctx context.Context, manifest string) error {
	return importMissing(ctx, a, manifest)
}
