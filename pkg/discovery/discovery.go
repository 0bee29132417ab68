// Package discovery statically scans shell startup files for source
// directives that pull in whole directories of scripts, so those
// directories can be captured alongside the dotfiles themselves.
package discovery

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/tether-cli/tether/pkg/logging"
	"github.com/tether-cli/tether/pkg/paths"
)

// Matches `source ~/.config/zsh/*.zsh` and `. $HOME/.config/bash/*.sh`
var sourceGlobRe = regexp.MustCompile(`(?:source|\.)\s+["']?((?:~|\$HOME)/[^\s"'*]+)/\*\.[a-z]+`)

// Matches `for s in ~/.config/zsh/*.zsh(N); do ...` where (N) is a zsh
// glob qualifier
var forLoopGlobRe = regexp.MustCompile(`for\s+\w+\s+in\s+["']?((?:~|\$HOME)/[^\s"'*(]+)/\*\.[a-z]+(?:\([A-Z]+\))?`)

// DiscoverSourcedDirs scans the given dotfiles (relative to home) for glob
// source directives and returns the referenced directories that exist,
// deduplicated, sorted ascending, each rendered as ~/<relative>.
func DiscoverSourcedDirs(home string, dotfiles []string) []string {
	logger := logging.GetLogger("discovery")
	seen := make(map[string]struct{})

	for _, dotfile := range dotfiles {
		path := filepath.Join(home, dotfile)
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		for _, dir := range parseSourcedDirs(string(content), home) {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			display := paths.DisplayPath(dir, home)
			if _, dup := seen[display]; !dup {
				logger.Debug().Str("dir", display).Str("dotfile", dotfile).Msg("Discovered sourced directory")
				seen[display] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(seen))
	for dir := range seen {
		result = append(result, dir)
	}
	sort.Strings(result)
	return result
}

// parseSourcedDirs extracts directory references from shell config content,
// expanded against home. Single-file sources are ignored; only directory
// globs count.
func parseSourcedDirs(content, home string) []string {
	var dirs []string

	for _, re := range []*regexp.Regexp{sourceGlobRe, forLoopGlobRe} {
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			dirs = append(dirs, paths.ExpandHome(match[1], home))
		}
	}

	return dirs
}
