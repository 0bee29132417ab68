package snapshot

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/paths"
)

// LoadOrCreateMachineID returns this machine's stable identifier,
// generating and persisting one on first use. A corrupt id file is
// regenerated rather than propagated.
func LoadOrCreateMachineID(home string) (string, error) {
	idPath := paths.MachineIDPath(home)

	if raw, err := os.ReadFile(idPath); err == nil {
		id := strings.TrimSpace(string(raw))
		if _, err := uuid.Parse(id); err == nil {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(idPath), 0700); err != nil {
		return "", errors.Wrap(err, errors.ErrDirCreate, "failed to create state directory")
	}
	if err := os.WriteFile(idPath, []byte(id+"\n"), 0600); err != nil {
		return "", errors.Wrap(err, errors.ErrFileWrite, "failed to persist machine id")
	}
	return id, nil
}
