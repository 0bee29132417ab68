package managers

import (
	"context"
	"strings"

	"github.com/tether-cli/tether/pkg/runner"
)

// GemAdapter covers user-installed RubyGems
type GemAdapter struct {
	unsupported
	runner runner.Runner
}

// NewGem returns the gem adapter
func NewGem(r runner.Runner) *GemAdapter {
	return &GemAdapter{unsupported: unsupported{KeyGem}, runner: r}
}

// Key implements Adapter
func (a *GemAdapter) Key() Key {
	return KeyGem
}

// IsAvailable implements Adapter
func (a *GemAdapter) IsAvailable() bool {
	return a.runner.Available("gem")
}

// ListInstalled implements Adapter
func (a *GemAdapter) ListInstalled(ctx context.Context) ([]PackageInfo, error) {
	result, err := a.runner.Run(ctx, "gem", "list", "--local", "--no-versions")
	if err != nil {
		return nil, err
	}

	return sortPackages(parseGemList(string(result.Stdout))), nil
}

// parseGemList parses `gem list --local --no-versions` output, skipping
// the `*** LOCAL GEMS ***` marker lines.
func parseGemList(output string) []PackageInfo {
	var pkgs []PackageInfo
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "***") || strings.Contains(line, "LOCAL GEMS") {
			continue
		}
		pkgs = append(pkgs, PackageInfo{Name: line})
	}
	return pkgs
}

// Install implements Adapter. Gems install to the user directory so no
// elevated privileges are needed.
func (a *GemAdapter) Install(ctx context.Context, pkg PackageInfo) error {
	spec := pkg.Name
	if pkg.Version != "" {
		spec = pkg.Name + ":" + pkg.Version
	}
	_, err := a.runner.Run(ctx, "gem", "install", spec, "--user-install")
	return err
}

// Uninstall implements Adapter
func (a *GemAdapter) Uninstall(ctx context.Context, name string) error {
	_, err := a.runner.Run(ctx, "gem", "uninstall", name, "-x", "-a")
	return err
}

// UpdateAll implements Adapter
func (a *GemAdapter) UpdateAll(ctx context.Context) error {
	_, err := a.runner.Run(ctx, "gem", "update", "--user-install")
	return err
}

// ExportManifest implements Adapter
func (a *GemAdapter) ExportManifest(ctx context.Context) (string, error) {
	pkgs, err := a.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	return BuildManifest(pkgs), nil
}

// ImportManifest implements Adapter
func (a *GemAdapter) ImportManifest(ctx context.Context, manifest string) error {
	return importMissing(ctx, a, manifest)
}

// GetDependents implements Adapter via `gem dependency -R`, parsing the
// "Used by" section. Failures yield an empty list.
func (a *GemAdapter) GetDependents(ctx context.Context, name string) ([]string, error) {
	result, err := a.runner.Run(ctx, "gem", "dependency", "-R", name)
	if err != nil {
		return nil, nil
	}

	var dependents []string
	inUsedBy := false
	for _, line := range strings.Split(string(result.Stdout), "\n") {
		if strings.Contains(line, "Used by") {
			inUsedBy = true
			continue
		}
		if !inUsedBy {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !strings.HasPrefix(line, " ") {
			break
		}
		// Entries look like "  gemname-1.2.3"
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			continue
		}
		depName := fields[0]
		if idx := strings.Index(depName, "-"); idx > 0 {
			depName = depName[:idx]
		}
		if depName != "" {
			dependents = append(dependents, depName)
		}
	}
	return dependents, nil
}
