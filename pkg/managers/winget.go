package managers

import (
	"context"
	"strings"

	"github.com/tether-cli/tether/pkg/runner"
)

// WingetAdapter covers Windows packages managed by winget
type WingetAdapter struct {
	unsupported
	runner runner.Runner
}

// NewWinget returns the winget adapter
func NewWinget(r runner.Runner) *WingetAdapter {
	return &WingetAdapter{unsupported: unsupported{KeyWinget}, runner: r}
}

// Key implements Adapter
func (a *WingetAdapter) Key() Key {
	return KeyWinget
}

// IsAvailable implements Adapter
func (a *WingetAdapter) IsAvailable() bool {
	return a.runner.Available("winget")
}

// ListInstalled implements Adapter
func (a *WingetAdapter) ListInstalled(ctx context.Context) ([]PackageInfo, error) {
	result, err := a.runner.Run(ctx, "winget", "list")
	if err != nil {
		return nil, err
	}

	return sortPackages(parseWingetList(string(result.Stdout))), nil
}

// parseWingetList parses winget's column-aligned table. The header line
// holds "Id" and "Version"; the header is ASCII so byte offsets equal
// display columns, and data rows are sliced at those offsets.
func parseWingetList(output string) []PackageInfo {
	lines := strings.Split(output, "\n")

	headerIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "Id") && strings.Contains(line, "Version") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	header := lines[headerIdx]
	idCol := strings.Index(header, "Id")
	if idCol < 0 {
		return nil
	}
	versionCol := strings.Index(header, "Version")
	if versionCol < 0 {
		versionCol = len(header)
	}

	dataStart := headerIdx + 1
	for i := headerIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "-") {
			dataStart = i + 1
			break
		}
	}

	var pkgs []PackageInfo
	for _, line := range lines[dataStart:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		id := strings.TrimSpace(sliceColumns(line, idCol, versionCol))
		if id == "" {
			continue
		}

		rest := strings.TrimSpace(sliceColumns(line, versionCol, len(line)))
		version := ""
		if fields := strings.Fields(rest); len(fields) > 0 {
			version = fields[0]
		}

		pkgs = append(pkgs, PackageInfo{Name: id, Version: version})
	}
	return pkgs
}

// sliceColumns slices a row by display column, tolerating short lines
// and multi-byte runes.
func sliceColumns(line string, from, to int) string {
	runes := []rune(line)
	if from >= len(runes) {
		return ""
	}
	if to > len(runes) {
		to = len(runes)
	}
	return string(runes[from:to])
}

// Install implements Adapter
func (a *WingetAdapter) Install(ctx context.Context, pkg PackageInfo) error {
	args := []string{
		"install", "--id", pkg.Name, "-e",
		"--disable-interactivity",
		"--accept-source-agreements",
		"--accept-package-agreements",
	}
	if pkg.Version != "" {
		args = append(args, "--version", pkg.Version)
	}
	_, err := a.runner.Run(ctx, "winget", args...)
	return err
}

// Uninstall implements Adapter
func (a *WingetAdapter) Uninstall(ctx context.Context, name string) error {
	_, err := a.runner.Run(ctx, "winget", "uninstall", "--id", name, "-e", "--disable-interactivity")
	return err
}

// ExportManifest implements Adapter
func (a *WingetAdapter) ExportManifest(ctx context.Context) (string, error) {
	pkgs, err := a.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	return BuildManifest(pkgs), nil
}

// ImportManifest implements Adapter
func (a *WingetAdapter) ImportManifest(ctx context.Context, manifest string) error {
	return importMissing(ctx, a, manifest)
}
