package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tether-cli/tether/pkg/discovery"
)

func writeDotfile(t *testing.T, home, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(home, name), []byte(content), 0644))
}

func TestDiscoverSourcedDirs(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config/zsh"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config/bash"), 0755))

	writeDotfile(t, home, ".zshrc", `
for s in ~/.config/zsh/*.zsh(N); do source "$s"; done
source $HOME/.config/bash/*.sh
`)

	dirs := discovery.DiscoverSourcedDirs(home, []string{".zshrc"})
	assert.Equal(t, []string{"~/.config/bash", "~/.config/zsh"}, dirs)
}

func TestDiscoverSkipsMissingDirectories(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config/zsh"), 0755))

	writeDotfile(t, home, ".zshrc", `
source ~/.config/zsh/*.zsh
source ~/.config/ghost/*.sh
`)

	dirs := discovery.DiscoverSourcedDirs(home, []string{".zshrc"})
	assert.Equal(t, []string{"~/.config/zsh"}, dirs)
}

func TestDiscoverSkipsSingleFileSources(t *testing.T) {
	home := t.TempDir()

	writeDotfile(t, home, ".zshrc", `
[ -f ~/.fzf.zsh ] && source ~/.fzf.zsh
source ~/.cargo/env
`)

	dirs := discovery.DiscoverSourcedDirs(home, []string{".zshrc"})
	assert.Empty(t, dirs)
}

func TestDiscoverDotCommand(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".bash.d"), 0755))

	writeDotfile(t, home, ".bashrc", `. $HOME/.bash.d/*.sh`)

	dirs := discovery.DiscoverSourcedDirs(home, []string{".bashrc"})
	assert.Equal(t, []string{"~/.bash.d"}, dirs)
}

func TestDiscoverDeduplicatesAcrossDotfiles(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config/shared"), 0755))

	writeDotfile(t, home, ".zshrc", `source ~/.config/shared/*.sh`)
	writeDotfile(t, home, ".bashrc", `source ~/.config/shared/*.sh`)

	dirs := discovery.DiscoverSourcedDirs(home, []string{".zshrc", ".bashrc"})
	assert.Equal(t, []string{"~/.config/shared"}, dirs)
}

func TestDiscoverMissingDotfilesIgnored(t *testing.T) {
	home := t.TempDir()

	dirs := discovery.DiscoverSourcedDirs(home, []string{".zshrc", ".bashrc", ".profile"})
	assert.Empty(t, dirs)
}
