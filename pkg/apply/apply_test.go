package apply_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tether-cli/tether/pkg/apply"
	"github.com/tether-cli/tether/pkg/backup"
	"github.com/tether-cli/tether/pkg/config"
	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/managers"
	"github.com/tether-cli/tether/pkg/paths"
	"github.com/tether-cli/tether/pkg/snapshot"
)

// recordingAdapter captures imported manifests
type recordingAdapter struct {
	key       managers.Key
	available bool
	importErr error

	manifests []string
}

func (a *recordingAdapter) Key() managers.Key { return a.key }
func (a *recordingAdapter) IsAvailable() bool { return a.available }
func (a *recordingAdapter) ListInstalled(ctx context.Context) ([]managers.PackageInfo, error) {
	return nil, nil
}
func (a *recordingAdapter) Install(ctx context.Context, pkg managers.PackageInfo) error { return nil }
func (a *recordingAdapter) Uninstall(ctx context.Context, name string) error            { return nil }
func (a *recordingAdapter) UpdateAll(ctx context.Context) error                         { return nil }
func (a *recordingAdapter) ExportManifest(ctx context.Context) (string, error)          { return "", nil }
func (a *recordingAdapter) ImportManifest(ctx context.Context, manifest string) error {
	a.manifests = append(a.manifests, manifest)
	return a.importErr
}
func (a *recordingAdapter) GetDependents(ctx context.Context, name string) ([]string, error) {
	return nil, nil
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s, err := config.Default()
	require.NoError(t, err)
	return s
}

func testSnapshot(dotfiles ...snapshot.DotfileEntry) *snapshot.MachineSnapshot {
	return &snapshot.MachineSnapshot{
		SchemaVersion: snapshot.SchemaVersion,
		MachineID:     "test-machine",
		Dotfiles:      dotfiles,
		Packages:      map[managers.Key][]managers.PackageInfo{},
	}
}

func TestApplyWritesDotfiles(t *testing.T) {
	home := t.TempDir()
	engine := apply.New(home, testSettings(t), managers.NewRegistryWith())

	snap := testSnapshot(
		snapshot.DotfileEntry{RelativePath: ".zshrc", Content: []byte("export EDITOR=vim\n"), Mode: 0644},
		snapshot.DotfileEntry{RelativePath: ".config/git/config", Content: []byte("[user]\n"), Mode: 0600},
	)

	result, err := engine.Apply(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Dotfiles.Succeeded)
	assert.Zero(t, result.Dotfiles.Failed)
	assert.False(t, result.Degraded)

	content, err := os.ReadFile(filepath.Join(home, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim\n", string(content))

	info, err := os.Stat(filepath.Join(home, ".config/git/config"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestApplyBacksUpExistingFiles(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ".zshrc"), []byte("old content\n"), 0644))

	engine := apply.New(home, testSettings(t), managers.NewRegistryWith())
	snap := testSnapshot(
		snapshot.DotfileEntry{RelativePath: ".zshrc", Content: []byte("new content\n"), Mode: 0644},
	)

	result, err := engine.Apply(context.Background(), snap)
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupDir)

	backedUp, err := os.ReadFile(filepath.Join(result.BackupDir, backup.CategoryDotfiles, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "old content\n", string(backedUp))

	current, err := os.ReadFile(filepath.Join(home, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "new content\n", string(current))
}

func TestApplySkipsUnchangedFiles(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ".zshrc"), []byte("same\n"), 0644))

	engine := apply.New(home, testSettings(t), managers.NewRegistryWith())
	snap := testSnapshot(
		snapshot.DotfileEntry{RelativePath: ".zshrc", Content: []byte("same\n"), Mode: 0644},
	)

	result, err := engine.Apply(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dotfiles.Skipped)
	assert.Zero(t, result.Dotfiles.Succeeded)
}

func TestApplyFailsFastWhenLockHeld(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(paths.TetherDir(home), 0700))

	held := flock.New(paths.ApplyLockPath(home))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = held.Unlock() }()

	engine := apply.New(home, testSettings(t), managers.NewRegistryWith())

	_, err = engine.Apply(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBusy))
}

func TestApplyImportsManagersInSortedOrder(t *testing.T) {
	home := t.TempDir()

	npm := &recordingAdapter{key: managers.KeyNpm, available: true}
	gem := &recordingAdapter{key: managers.KeyGem, available: true}
	engine := apply.New(home, testSettings(t), managers.NewRegistryWith(npm, gem))

	snap := testSnapshot()
	snap.Packages = map[managers.Key][]managers.PackageInfo{
		managers.KeyNpm: {{Name: "typescript", Version: "5.3.3"}, {Name: "eslint"}},
		managers.KeyGem: {{Name: "rake"}},
	}

	result, err := engine.Apply(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Managers.Succeeded)
	require.Len(t, npm.manifests, 1)
	assert.Equal(t, "typescript\neslint", npm.manifests[0])
	require.Len(t, gem.manifests, 1)
	assert.Equal(t, "rake", gem.manifests[0])
}

func TestApplyMissingAdapterWarnsAndContinues(t *testing.T) {
	home := t.TempDir()

	npm := &recordingAdapter{key: managers.KeyNpm, available: true}
	offline := &recordingAdapter{key: managers.KeyBun, available: false}
	engine := apply.New(home, testSettings(t), managers.NewRegistryWith(npm, offline))

	snap := testSnapshot()
	snap.Packages = map[managers.Key][]managers.PackageInfo{
		managers.KeyNpm:    {{Name: "typescript"}},
		managers.KeyBun:    {{Name: "prettier"}},
		managers.KeyWinget: {{Name: "Git.Git"}},
	}

	result, err := engine.Apply(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Managers.Succeeded)
	assert.Equal(t, 2, result.Managers.Skipped)
	assert.Len(t, result.Warnings, 2)
	assert.Empty(t, offline.manifests)
}

func TestApplyImportFailureDoesNotAbort(t *testing.T) {
	home := t.TempDir()

	gem := &recordingAdapter{key: managers.KeyGem, available: true, importErr: errors.New(errors.ErrProcessFailed, "gem broke")}
	npm := &recordingAdapter{key: managers.KeyNpm, available: true}
	engine := apply.New(home, testSettings(t), managers.NewRegistryWith(gem, npm))

	snap := testSnapshot()
	snap.Packages = map[managers.Key][]managers.PackageInfo{
		managers.KeyGem: {{Name: "rake"}},
		managers.KeyNpm: {{Name: "typescript"}},
	}

	result, err := engine.Apply(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Managers.Failed)
	assert.Equal(t, 1, result.Managers.Succeeded)
	require.Len(t, npm.manifests, 1)
}

func TestApplyPrunesOldBackups(t *testing.T) {
	home := t.TempDir()
	root := paths.BackupsDir(home)
	for _, ts := range []string{"2020-01-01T00-00-00", "2020-01-02T00-00-00", "2020-01-03T00-00-00"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, ts), 0755))
	}

	settings := testSettings(t)
	store := backup.NewStore(home).WithRetention(2)
	engine := apply.NewWithStore(home, settings, managers.NewRegistryWith(), store)

	result, err := engine.Apply(context.Background(), testSnapshot())
	require.NoError(t, err)

	// 3 pre-existing + 1 new, retention 2
	assert.Equal(t, 2, result.Pruned)

	remaining, err := store.ListBackups()
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestApplyCancelledContext(t *testing.T) {
	home := t.TempDir()
	engine := apply.New(home, testSettings(t), managers.NewRegistryWith())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := testSnapshot(
		snapshot.DotfileEntry{RelativePath: ".zshrc", Content: []byte("x\n"), Mode: 0644},
	)

	_, err := engine.Apply(ctx, snap)
	assert.ErrorIs(t, err, context.Canceled)
}
