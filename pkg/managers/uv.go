package managers

import (
	"context"
	"strings"

	"github.com/tether-cli/tether/pkg/runner"
)

// UvAdapter covers uv-managed Python tools
type UvAdapter struct {
	unsupported
	runner runner.Runner
}

// NewUv returns the uv adapter
func NewUv(r runner.Runner) *UvAdapter {
	return &UvAdapter{unsupported: unsupported{KeyUv}, runner: r}
}

// Key implements Adapter
func (a *UvAdapter) Key() Key {
	return KeyUv
}

// IsAvailable implements Adapter
func (a *UvAdapter) IsAvailable() bool {
	return a.runner.Available("uv")
}

// ListInstalled implements Adapter
func (a *UvAdapter) ListInstalled(ctx context.Context) ([]PackageInfo, error) {
	result, err := a.runner.Run(ctx, "uv", "tool", "list")
	if err != nil {
		return nil, err
	}

	return sortPackages(parseUvToolList(string(result.Stdout))), nil
}

// parseUvToolList parses `uv tool list` output:
//
//	black v24.10.0
//	    - black
//	    - blackd
//	ruff v0.6.0
//
// Tool headers start at column 0; indented or dash-prefixed lines are
// the tool's installed executables.
func parseUvToolList(output string) []PackageInfo {
	var pkgs []PackageInfo

	for _, line := range strings.Split(output, "\n") {
		if line == "" || strings.HasPrefix(line, " ") ||
			strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "-") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "" {
			continue
		}

		pkg := PackageInfo{Name: fields[0]}
		if len(fields) > 1 {
			pkg.Version = strings.TrimPrefix(fields[1], "v")
		}
		pkgs = append(pkgs, pkg)
	}

	return pkgs
}

// Install implements Adapter
func (a *UvAdapter) Install(ctx context.Context, pkg PackageInfo) error {
	_, err := a.runner.Run(ctx, "uv", "tool", "install", pkg.Name)
	return err
}

// Uninstall implements Adapter
func (a *UvAdapter) Uninstall(ctx context.Context, name string) error {
	_, err := a.runner.Run(ctx, "uv", "tool", "uninstall", name)
	return err
}

// UpdateAll implements Adapter
func (a *UvAdapter) UpdateAll(ctx context.Context) error {
	_, err := a.runner.Run(ctx, "uv", "tool", "upgrade", "--all")
	return err
}

// ExportManifest implements Adapter
func (a *UvAdapter) ExportManifest(ctx context.Context) (string, error) {
	pkgs, err := a.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	return BuildManifest(pkgs), nil
}

// ImportManifest implements Adapter
func (a *UvAdapter) ImportManifest(ctx context.Context, manifest string) error {
	return importMissing(ctx, a, manifest)
}
