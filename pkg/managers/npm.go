package managers

import (
	"context"
	"encoding/json"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/runner"
)

// NpmAdapter covers global npm packages
type NpmAdapter struct {
	unsupported
	runner runner.Runner
}

// NewNpm returns the npm adapter
func NewNpm(r runner.Runner) *NpmAdapter {
	return &NpmAdapter{unsupported: unsupported{KeyNpm}, runner: r}
}

type npmListOutput struct {
	Dependencies map[string]npmDependency `json:"dependencies"`
}

type npmDependency struct {
	Version string `json:"version"`
}

// Key implements Adapter
func (a *NpmAdapter) Key() Key {
	return KeyNpm
}

// IsAvailable implements Adapter
func (a *NpmAdapter) IsAvailable() bool {
	return a.runner.Available("npm")
}

// ListInstalled implements Adapter. npm itself is excluded from the
// inventory; syncing it would fight the node installation.
func (a *NpmAdapter) ListInstalled(ctx context.Context) ([]PackageInfo, error) {
	result, err := a.runner.Run(ctx, "npm", "ls", "-g", "--depth=0", "--json")
	if err != nil {
		return nil, err
	}

	var list npmListOutput
	if err := json.Unmarshal(result.Stdout, &list); err != nil {
		return nil, errors.Wrap(err, errors.ErrParseFailed, "failed to parse npm ls output").
			WithDetail("source", "npm ls -g --depth=0 --json")
	}

	var pkgs []PackageInfo
	for name, dep := range list.Dependencies {
		if name == "npm" {
			continue
		}
		pkgs = append(pkgs, PackageInfo{Name: name, Version: dep.Version})
	}
	return sortPackages(pkgs), nil
}

// Install implements Adapter
func (a *NpmAdapter) Install(ctx context.Context, pkg PackageInfo) error {
	_, err := a.runner.Run(ctx, "npm", "install", "-g", pkg.Spec())
	return err
}

// Uninstall implements Adapter
func (a *NpmAdapter) Uninstall(ctx context.Context, name string) error {
	_, err := a.runner.Run(ctx, "npm", "uninstall", "-g", name)
	return err
}

// UpdateAll implements Adapter
func (a *NpmAdapter) UpdateAll(ctx context.Context) error {
	_, err := a.runner.Run(ctx, "npm", "update", "-g")
	return err
}

// ExportManifest implements Adapter
func (a *NpmAdapter) ExportManifest(ctx context.Context) (string, error) {
	pkgs, err := a.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	return BuildManifest(pkgs), nil
}

// ImportManifest implements Adapter
func (a *NpmAdapter) ImportManifest(ctx context.Context, manifest string) error {
	return importMissing(ctx, a, manifest)
}
