package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tether-cli/tether/pkg/paths"
	"github.com/tether-cli/tether/pkg/snapshot"
)

func TestLoadOrCreateMachineIDStable(t *testing.T) {
	home := t.TempDir()

	id1, err := snapshot.LoadOrCreateMachineID(home)
	require.NoError(t, err)
	_, err = uuid.Parse(id1)
	require.NoError(t, err)

	id2, err := snapshot.LoadOrCreateMachineID(home)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestLoadOrCreateMachineIDRegeneratesCorrupt(t *testing.T) {
	home := t.TempDir()
	idPath := paths.MachineIDPath(home)

	require.NoError(t, os.MkdirAll(filepath.Dir(idPath), 0700))
	require.NoError(t, os.WriteFile(idPath, []byte("not a uuid\n"), 0600))

	id, err := snapshot.LoadOrCreateMachineID(home)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
}
