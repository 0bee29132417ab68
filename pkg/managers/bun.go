package managers

import (
	"context"
	"strings"

	"github.com/tether-cli/tether/pkg/logging"
	"github.com/tether-cli/tether/pkg/runner"
)

// BunAdapter covers global bun packages
type BunAdapter struct {
	unsupported
	runner runner.Runner
}

// NewBun returns the bun adapter
func NewBun(r runner.Runner) *BunAdapter {
	return &BunAdapter{unsupported: unsupported{KeyBun}, runner: r}
}

// Key implements Adapter
func (a *BunAdapter) Key() Key {
	return KeyBun
}

// IsAvailable implements Adapter
func (a *BunAdapter) IsAvailable() bool {
	return a.runner.Available("bun")
}

// ListInstalled implements Adapter. Before any global install bun has no
// package.json and reports that as an error; treat it as an empty
// inventory rather than failing the sync.
func (a *BunAdapter) ListInstalled(ctx context.Context) ([]PackageInfo, error) {
	result, err := a.runner.Run(ctx, "bun", "pm", "ls", "-g")
	if err != nil {
		if strings.Contains(string(result.Stderr), "No package.json was found") {
			return nil, nil
		}
		return nil, err
	}

	return sortPackages(parseBunTree(string(result.Stdout))), nil
}

// parseBunTree parses `bun pm ls -g` output:
//
//	/home/u/.bun/install/global node_modules (2)
//	├── @google/gemini-cli@0.18.4
//	└── ts-node@10.9.2
func parseBunTree(output string) []PackageInfo {
	var pkgs []PackageInfo

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Header line names the global node_modules directory
		if strings.Contains(line, "node_modules") {
			continue
		}

		cleaned := line
		cleaned = strings.TrimPrefix(cleaned, "├──")
		cleaned = strings.TrimPrefix(cleaned, "└──")
		cleaned = strings.TrimPrefix(cleaned, "│")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			continue
		}

		name, version := SplitPackageSpec(cleaned)
		if name == "" || name == "@" {
			continue
		}
		pkgs = append(pkgs, PackageInfo{Name: name, Version: version})
	}

	return pkgs
}

// SplitPackageSpec splits name@version on the rightmost @, leaving scoped
// names like @org/name intact. The @ is only a version separator when the
// prefix before it does not end in /.
func SplitPackageSpec(spec string) (name, version string) {
	idx := strings.LastIndex(spec, "@")
	if idx > 0 && !strings.HasSuffix(spec[:idx], "/") {
		return spec[:idx], spec[idx+1:]
	}
	return spec, ""
}

// Install implements Adapter
func (a *BunAdapter) Install(ctx context.Context, pkg PackageInfo) error {
	_, err := a.runner.Run(ctx, "bun", "add", "-g", pkg.Spec())
	return err
}

// Uninstall implements Adapter
func (a *BunAdapter) Uninstall(ctx context.Context, name string) error {
	_, err := a.runner.Run(ctx, "bun", "remove", "-g", name)
	return err
}

// UpdateAll implements Adapter. bun update -g only updates the first
// package, so each package is re-added individually to pick up latest.
func (a *BunAdapter) UpdateAll(ctx context.Context) error {
	pkgs, err := a.ListInstalled(ctx)
	if err != nil {
		return err
	}

	logger := logging.GetLogger("managers.bun")
	for _, pkg := range pkgs {
		if _, err := a.runner.Run(ctx, "bun", "add", "-g", pkg.Name); err != nil {
			logger.Warn().Err(err).
				Str("package", pkg.Name).Msg("Failed to update package, continuing")
		}
	}
	return nil
}

// ExportManifest implements Adapter
func (a *BunAdapter) ExportManifest(ctx context.Context) (string, error) {
	pkgs, err := a.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	return BuildManifest(pkgs), nil
}

// ImportManifest implements Adapter
func (a *BunAdapter) ImportManifest(ctx context.Context, manifest string) error {
	return importMissing(ctx, a, manifest)
}
