package snapshot

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// HashContent returns the hex blake3 digest of data, used for change
// detection and post-write verification.
func HashContent(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
