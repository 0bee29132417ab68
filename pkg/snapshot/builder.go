package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tether-cli/tether/pkg/config"
	"github.com/tether-cli/tether/pkg/discovery"
	"github.com/tether-cli/tether/pkg/logging"
	"github.com/tether-cli/tether/pkg/managers"
	"github.com/tether-cli/tether/pkg/paths"
	"github.com/tether-cli/tether/pkg/secrets"
)

// Builder captures a machine snapshot from the live filesystem and the
// enabled package managers.
type Builder struct {
	home     string
	settings *config.Settings
	registry *managers.Registry
	scanner  *secrets.Scanner
}

// BuildResult is a snapshot plus the non-fatal warnings collected while
// capturing it.
type BuildResult struct {
	Snapshot *MachineSnapshot
	Warnings []string
}

// NewBuilder returns a builder over the given home directory
func NewBuilder(home string, settings *config.Settings, registry *managers.Registry) *Builder {
	return &Builder{
		home:     home,
		settings: settings,
		registry: registry,
		scanner:  secrets.Default(),
	}
}

// Build captures dotfiles, discovered shell directories, and package
// inventories. Per-manager failures quarantine that manager's slot and
// are reported as warnings; only filesystem-level failures abort.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	logger := logging.GetLogger("snapshot")
	start := time.Now()

	machineID, err := LoadOrCreateMachineID(b.home)
	if err != nil {
		return nil, err
	}

	discovered := discovery.DiscoverSourcedDirs(b.home, b.settings.Dotfiles.Files)

	var warnings []string
	dotfiles, skipped, warns := b.captureFiles(ctx, discovered)
	warnings = append(warnings, warns...)

	packages, warns := b.capturePackages(ctx)
	warnings = append(warnings, warns...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &MachineSnapshot{
		SchemaVersion:  SchemaVersion,
		MachineID:      machineID,
		CapturedAt:     time.Now().UTC(),
		Dotfiles:       dotfiles,
		SkippedFiles:   skipped,
		DiscoveredDirs: discovered,
		Packages:       packages,
	}

	logging.LogDuration(start, "snapshot build")
	logger.Info().
		Int("dotfiles", len(dotfiles)).
		Int("skipped", len(skipped)).
		Int("managers", len(packages)).
		Msg("Snapshot captured")

	return &BuildResult{Snapshot: snap, Warnings: warnings}, nil
}

// captureFiles reads the configured dotfiles plus the files directly
// under each discovered directory, gating every file on the secret scan.
func (b *Builder) captureFiles(ctx context.Context, discovered []string) ([]DotfileEntry, []SkippedRef, []string) {
	var (
		entries  []DotfileEntry
		skipped  []SkippedRef
		warnings []string
	)

	for _, rel := range b.candidateFiles(discovered) {
		if ctx.Err() != nil {
			break
		}

		full := filepath.Join(b.home, rel)
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		content, err := os.ReadFile(full)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", rel, err))
			continue
		}

		if findings := b.scanFile(content); len(findings) > 0 {
			skipped = append(skipped, SkippedRef{RelativePath: rel, Findings: findings})
			warnings = append(warnings, fmt.Sprintf("%s: withheld, %d potential secret(s) found", rel, len(findings)))
			continue
		}

		entries = append(entries, DotfileEntry{
			RelativePath: rel,
			Content:      content,
			Mode:         uint32(info.Mode().Perm()),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelativePath < entries[j].RelativePath })
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].RelativePath < skipped[j].RelativePath })
	return entries, skipped, warnings
}

// candidateFiles lists configured dotfiles plus files directly under
// each discovered directory, deduplicated, as home-relative paths.
func (b *Builder) candidateFiles(discovered []string) []string {
	seen := make(map[string]struct{})
	var rels []string

	add := func(rel string) {
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		rels = append(rels, rel)
	}

	for _, rel := range b.settings.Dotfiles.Files {
		add(rel)
	}

	for _, dir := range discovered {
		full := paths.ExpandHome(dir, b.home)
		dirEntries, err := os.ReadDir(full)
		if err != nil {
			continue
		}
		for _, de := range dirEntries {
			if de.IsDir() {
				continue
			}
			rel, err := filepath.Rel(b.home, filepath.Join(full, de.Name()))
			if err != nil {
				continue
			}
			add(filepath.ToSlash(rel))
		}
	}

	return rels
}

// scanFile applies the secret scan per configuration, returning the
// rendered findings for any flagged file.
func (b *Builder) scanFile(content []byte) []string {
	if !b.settings.Security.ScanSecrets || b.settings.Security.AllowSecrets {
		return nil
	}

	findings := b.scanner.ScanContent(string(content))
	rendered := make([]string, 0, len(findings))
	for _, f := range findings {
		rendered = append(rendered, fmt.Sprintf("line %d: %s", f.LineNumber, f.Type.Description()))
	}
	return rendered
}

// capturePackages lists installed packages from every enabled and
// available manager concurrently. A manager that fails to list is
// quarantined: its slot is omitted and a warning records why.
func (b *Builder) capturePackages(ctx context.Context) (map[managers.Key][]managers.PackageInfo, []string) {
	logger := logging.GetLogger("snapshot")

	reg := b.registry
	if len(b.settings.Packages.Managers) > 0 {
		reg = reg.Restrict(b.settings.Packages.Managers)
	}

	var (
		mu       sync.Mutex
		packages = make(map[managers.Key][]managers.PackageInfo)
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, key := range reg.Keys() {
		key := key
		adapter, err := reg.Get(key)
		if err != nil {
			continue
		}
		if !adapter.IsAvailable() {
			logger.Debug().Str("manager", string(key)).Msg("Manager not on PATH, skipping")
			continue
		}

		g.Go(func() error {
			pkgs, err := adapter.ListInstalled(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: list failed: %v", key, err))
				logger.Warn().Err(err).Str("manager", string(key)).Msg("Manager inventory quarantined")
				return nil
			}
			packages[key] = pkgs
			return nil
		})
	}
	_ = g.Wait()

	return packages, warnings
}
