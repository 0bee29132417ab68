package managers

import (
	"context"
	"strings"

	"github.com/tether-cli/tether/pkg/logging"
)

// ParseManifest splits a manifest into trimmed, non-empty package names
func ParseManifest(manifest string) []string {
	var names []string
	for _, line := range strings.Split(manifest, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names
}

// BuildManifest renders packages as newline-delimited names
func BuildManifest(pkgs []PackageInfo) string {
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.Name)
	}
	return strings.Join(names, "\n")
}

// importMissing diffs a manifest against the currently installed set and
// installs what is missing. Per-package failures are logged as warnings
// and never abort the remaining installs.
func importMissing(ctx context.Context, a Adapter, manifest string) error {
	names := ParseManifest(manifest)
	if len(names) == 0 {
		return nil
	}

	installed, err := a.ListInstalled(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]struct{}, len(installed))
	for _, p := range installed {
		have[p.Name] = struct{}{}
	}

	logger := logging.GetLogger("managers." + string(a.Key()))
	for _, name := range names {
		if _, ok := have[name]; ok {
			continue
		}
		if err := a.Install(ctx, PackageInfo{Name: name}); err != nil {
			logger.Warn().Err(err).Str("package", name).Msg("Failed to install package, continuing")
		}
	}
	return nil
}
