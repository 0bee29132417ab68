// Package apply reconciles a machine snapshot onto the local machine:
// dotfiles first with backup and post-write verification, then package
// manager imports.
package apply

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"

	"github.com/tether-cli/tether/pkg/backup"
	"github.com/tether-cli/tether/pkg/config"
	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/logging"
	"github.com/tether-cli/tether/pkg/managers"
	"github.com/tether-cli/tether/pkg/paths"
	"github.com/tether-cli/tether/pkg/snapshot"
)

// Summary counts the outcomes within one category
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Result describes one apply run. Degraded means every step ran but at
// least one written file failed post-write verification.
type Result struct {
	Dotfiles    Summary
	Managers    Summary
	Degraded    bool
	FailedPaths []string
	Warnings    []string
	BackupDir   string
	Pruned      int
}

// Engine applies snapshots to a home directory
type Engine struct {
	home     string
	settings *config.Settings
	registry *managers.Registry
	store    *backup.Store
}

// New returns an engine over the given home directory
func New(home string, settings *config.Settings, registry *managers.Registry) *Engine {
	store := backup.NewStore(home).WithRetention(settings.Backup.Retention)
	return &Engine{home: home, settings: settings, registry: registry, store: store}
}

// NewWithStore returns an engine with an explicit backup store, used by
// tests.
func NewWithStore(home string, settings *config.Settings, registry *managers.Registry, store *backup.Store) *Engine {
	return &Engine{home: home, settings: settings, registry: registry, store: store}
}

// Apply reconciles the snapshot onto this machine. Exactly one apply
// runs per home directory at a time; a held lock fails fast with BUSY.
// Dotfiles are written before any manager import so a package failure
// never leaves dotfiles half-applied.
func (e *Engine) Apply(ctx context.Context, snap *snapshot.MachineSnapshot) (*Result, error) {
	logger := logging.GetLogger("apply")

	if err := os.MkdirAll(paths.TetherDir(e.home), 0700); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "failed to create state directory")
	}

	lock := flock.New(paths.ApplyLockPath(e.home))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to acquire apply lock")
	}
	if !locked {
		return nil, errors.New(errors.ErrBusy, "another apply is already running")
	}
	defer func() { _ = lock.Unlock() }()

	result := &Result{}

	backupDir, err := e.store.CreateBackupDir()
	if err != nil {
		return nil, err
	}
	result.BackupDir = backupDir

	if err := e.applyDotfiles(ctx, snap, backupDir, result); err != nil {
		return result, err
	}
	if err := e.applyPackages(ctx, snap, result); err != nil {
		return result, err
	}

	pruned, err := e.store.PruneOldBackups()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("backup prune failed: %v", err))
	}
	result.Pruned = pruned

	logger.Info().
		Int("dotfiles_succeeded", result.Dotfiles.Succeeded).
		Int("dotfiles_failed", result.Dotfiles.Failed).
		Int("managers_succeeded", result.Managers.Succeeded).
		Bool("degraded", result.Degraded).
		Msg("Apply finished")

	return result, nil
}

// applyDotfiles walks the snapshot's files in path order. Each file is
// backed up, written, then re-read and verified. A backup failure
// aborts only that file; a verification failure degrades the run.
func (e *Engine) applyDotfiles(ctx context.Context, snap *snapshot.MachineSnapshot, backupDir string, result *Result) error {
	logger := logging.GetLogger("apply")

	entries := make([]snapshot.DotfileEntry, len(snap.Dotfiles))
	copy(entries, snap.Dotfiles)
	sort.Slice(entries, func(i, j int) bool { return entries[i].RelativePath < entries[j].RelativePath })

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := entry.RelativePath
		dest := filepath.Join(e.home, rel)

		if existing, err := os.ReadFile(dest); err == nil && bytes.Equal(existing, entry.Content) {
			result.Dotfiles.Skipped++
			continue
		}

		if _, err := e.store.BackupFile(backupDir, backup.CategoryDotfiles, rel, dest); err != nil {
			logger.Warn().Err(err).Str("path", rel).Msg("Backup failed, leaving file untouched")
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: backup failed: %v", rel, err))
			result.Dotfiles.Failed++
			result.FailedPaths = append(result.FailedPaths, rel)
			continue
		}

		if err := e.writeFile(dest, entry); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: write failed: %v", rel, err))
			result.Dotfiles.Failed++
			result.FailedPaths = append(result.FailedPaths, rel)
			continue
		}

		if err := verifyFile(dest, entry.Content); err != nil {
			logger.Error().Err(err).Str("path", rel).Msg("Post-write verification failed")
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", rel, err))
			result.Degraded = true
			result.Dotfiles.Failed++
			result.FailedPaths = append(result.FailedPaths, rel)
			continue
		}

		result.Dotfiles.Succeeded++
	}

	return nil
}

func (e *Engine) writeFile(dest string, entry snapshot.DotfileEntry) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create parent directory")
	}

	mode := os.FileMode(entry.Mode)
	if mode == 0 {
		mode = 0644
	}
	if err := os.WriteFile(dest, entry.Content, mode); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write file")
	}
	return nil
}

// verifyFile re-reads a just-written file and compares length and
// content hash against what was intended.
func verifyFile(dest string, want []byte) error {
	got, err := os.ReadFile(dest)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "verification read failed")
	}
	if len(got) != len(want) || snapshot.HashContent(got) != snapshot.HashContent(want) {
		return errors.New(errors.ErrFileWrite, "verification failed, file on disk does not match").
			WithDetail("expected_length", len(want)).
			WithDetail("actual_length", len(got))
	}
	return nil
}

// applyPackages imports each manager's package set in sorted key order.
// Cancellation is honored between managers; an import already underway
// runs to completion.
func (e *Engine) applyPackages(ctx context.Context, snap *snapshot.MachineSnapshot, result *Result) error {
	logger := logging.GetLogger("apply")

	keys := make([]managers.Key, 0, len(snap.Packages))
	for k := range snap.Packages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		adapter, err := e.registry.Get(key)
		if err != nil {
			logger.Warn().Str("manager", string(key)).Msg("No adapter for snapshot manager, skipping")
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no adapter available", key))
			result.Managers.Skipped++
			continue
		}
		if !adapter.IsAvailable() {
			logger.Warn().Str("manager", string(key)).Msg("Manager not on PATH, skipping")
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: not installed on this machine", key))
			result.Managers.Skipped++
			continue
		}

		manifest := managers.BuildManifest(snap.Packages[key])
		if err := adapter.ImportManifest(context.WithoutCancel(ctx), manifest); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: import failed: %v", key, err))
			result.Managers.Failed++
			continue
		}
		result.Managers.Succeeded++
	}

	return nil
}
