// Package backup implements the timestamped pre-overwrite backup store
// under ~/.tether/backups. Every file the apply engine is about to replace
// is copied here first, and the newest five backups are retained.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/logging"
	"github.com/tether-cli/tether/pkg/paths"
)

// TimestampFormat is the lexically sortable backup directory name format
const TimestampFormat = "2006-01-02T15-04-05"

// DefaultRetention is how many backups prune keeps
const DefaultRetention = 5

// Categories of backed-up files
const (
	CategoryDotfiles = "dotfiles"
	CategoryProjects = "projects"
)

// Store manages the backup directory tree for one home directory
type Store struct {
	root      string
	home      string
	retention int

	mu        sync.Mutex
	lastStamp string
}

// NewStore returns a store rooted at ~/.tether/backups
func NewStore(home string) *Store {
	return NewStoreAt(paths.BackupsDir(home), home)
}

// NewStoreAt returns a store with an explicit root, used by tests
func NewStoreAt(root, home string) *Store {
	return &Store{root: root, home: home, retention: DefaultRetention}
}

// WithRetention overrides the number of backups prune keeps
func (s *Store) WithRetention(n int) *Store {
	if n > 0 {
		s.retention = n
	}
	return s
}

// CreateBackupDir creates a new timestamped backup directory and returns
// its path. Timestamps are UTC and second-granular; a second call within
// the same second appends -N so names stay monotonic within a process.
func (s *Store) CreateBackupDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := time.Now().UTC().Format(TimestampFormat)
	if stamp <= s.lastStamp {
		n := 1
		if idx := strings.LastIndex(s.lastStamp, "-"); idx > len(TimestampFormat)-1 {
			fmt.Sscanf(s.lastStamp[idx+1:], "%d", &n)
			n++
		}
		stamp = fmt.Sprintf("%s-%d", stamp, n)
	}
	s.lastStamp = stamp

	dir := filepath.Join(s.root, stamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup directory %s", dir)
	}
	return dir, nil
}

// BackupFile copies source into dir under category/relativePath.
// Returns false without error when the source does not exist; the file
// simply has nothing to back up.
func (s *Store) BackupFile(dir, category, relativePath, source string) (bool, error) {
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrBackupFailed, "failed to stat %s", source)
	}

	dest := filepath.Join(dir, category, relativePath)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrBackupFailed, "failed to create parents for %s", dest)
	}

	if err := copyFile(source, dest, info.Mode()); err != nil {
		return false, errors.Wrapf(err, errors.ErrBackupFailed, "failed to copy %s", source).
			WithDetail("path", source)
	}
	return true, nil
}

// ListBackups returns backup timestamps, newest first
func (s *Store) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read backups directory")
	}

	var backups []string
	for _, entry := range entries {
		if entry.IsDir() {
			backups = append(backups, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// ListBackupFiles returns (category, relativePath) pairs in one backup
func (s *Store) ListBackupFiles(timestamp string) ([][2]string, error) {
	base := filepath.Join(s.root, timestamp)
	if _, err := os.Stat(base); err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "backup %q not found", timestamp)
	}

	var files [][2]string
	err := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
		if len(parts) == 2 {
			files = append(files, [2]string{parts[0], parts[1]})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to walk backup")
	}
	return files, nil
}

// RestoreFile copies a backed-up file to its original location.
// Only the dotfiles category has a derivable destination; projects require
// an explicit destination via RestoreFileTo.
func (s *Store) RestoreFile(timestamp, category, relativePath string) (string, error) {
	switch category {
	case CategoryDotfiles:
		return s.RestoreFileTo(timestamp, category, relativePath, filepath.Join(s.home, relativePath))
	case CategoryProjects:
		return "", errors.Newf(errors.ErrInvalidInput,
			"restoring %s/%s requires an explicit destination", category, relativePath)
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown backup category: %s", category)
	}
}

// RestoreFileTo copies a backed-up file to an explicit destination
func (s *Store) RestoreFileTo(timestamp, category, relativePath, dest string) (string, error) {
	source := filepath.Join(s.root, timestamp, category, relativePath)
	info, err := os.Stat(source)
	if err != nil {
		return "", errors.Newf(errors.ErrNotFound, "backup file not found: %s/%s", category, relativePath)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create parents for %s", dest)
	}
	if err := copyFile(source, dest, info.Mode()); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to restore %s", relativePath)
	}

	logger := logging.GetLogger("backup")
	logger.Info().
		Str("timestamp", timestamp).
		Str("file", relativePath).
		Str("dest", dest).
		Msg("Restored file from backup")
	return dest, nil
}

// PruneOldBackups removes all but the most recent backups and returns how
// many were removed.
func (s *Store) PruneOldBackups() (int, error) {
	backups, err := s.ListBackups()
	if err != nil {
		return 0, err
	}
	if len(backups) <= s.retention {
		return 0, nil
	}

	toRemove := backups[s.retention:]
	for _, stamp := range toRemove {
		if err := os.RemoveAll(filepath.Join(s.root, stamp)); err != nil {
			return 0, errors.Wrapf(err, errors.ErrFileAccess, "failed to remove backup %s", stamp)
		}
	}

	logger := logging.GetLogger("backup")
	logger.Debug().Int("removed", len(toRemove)).Msg("Pruned old backups")
	return len(toRemove), nil
}

// ParseTimestamp parses a backup directory name (without any -N suffix)
func ParseTimestamp(timestamp string) (time.Time, error) {
	t, err := time.Parse(TimestampFormat, timestamp)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid backup timestamp %q", timestamp)
	}
	return t.UTC(), nil
}

// FormatTimestamp renders a time as a backup directory name
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func copyFile(source, dest string, mode os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
