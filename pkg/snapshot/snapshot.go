// Package snapshot defines the machine snapshot document and its CBOR
// codec, and builds snapshots from the live machine state.
package snapshot

import (
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/managers"
)

// SchemaVersion is the current snapshot document version
const SchemaVersion = 1

// DotfileEntry is one captured file, path relative to the home directory
type DotfileEntry struct {
	RelativePath string `cbor:"relative_path" json:"relative_path" yaml:"relative_path"`
	Content      []byte `cbor:"content" json:"content" yaml:"content"`
	Mode         uint32 `cbor:"mode" json:"mode" yaml:"mode"`
}

// SkippedRef records a file withheld from capture because scanning
// flagged it, along with what was found.
type SkippedRef struct {
	RelativePath string   `cbor:"relative_path" json:"relative_path" yaml:"relative_path"`
	Findings     []string `cbor:"findings" json:"findings" yaml:"findings"`
}

// MachineSnapshot is the full capture of one machine's synced state
type MachineSnapshot struct {
	SchemaVersion  int                                     `cbor:"schema_version" json:"schema_version" yaml:"schema_version"`
	MachineID      string                                  `cbor:"machine_id" json:"machine_id" yaml:"machine_id"`
	CapturedAt     time.Time                               `cbor:"captured_at" json:"captured_at" yaml:"captured_at"`
	Dotfiles       []DotfileEntry                          `cbor:"dotfiles" json:"dotfiles" yaml:"dotfiles"`
	SkippedFiles   []SkippedRef                            `cbor:"skipped_files,omitempty" json:"skipped_files,omitempty" yaml:"skipped_files,omitempty"`
	DiscoveredDirs []string                                `cbor:"discovered_dirs,omitempty" json:"discovered_dirs,omitempty" yaml:"discovered_dirs,omitempty"`
	Packages       map[managers.Key][]managers.PackageInfo `cbor:"packages" json:"packages" yaml:"packages"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Encode serializes a snapshot to CBOR
func Encode(s *MachineSnapshot) ([]byte, error) {
	data, err := encMode.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode snapshot")
	}
	return data, nil
}

// Decode deserializes a CBOR snapshot. Unknown fields from newer
// writers are ignored; an unsupported schema version is an error.
func Decode(data []byte) (*MachineSnapshot, error) {
	var s MachineSnapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotDecode, "failed to decode snapshot")
	}
	if s.SchemaVersion < 1 || s.SchemaVersion > SchemaVersion {
		return nil, errors.Newf(errors.ErrSnapshotDecode, "unsupported snapshot schema version %d", s.SchemaVersion).
			WithDetail("supported", SchemaVersion)
	}
	return &s, nil
}
