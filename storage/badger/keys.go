package badger

import (
	"encoding/binary"

	"github.com/poiesic/stockbrief/core"
)

// Key prefixes for different data types
const (
	fragmentPrefix = "frag"
)

// makeFragmentKey generates a key for a fragment by its hashed ID.
// Format: prefix:key (8 bytes, BigEndian)
func makeFragmentKey(key core.ID) []byte {
	prefix := fragmentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(key))
	return buf
}
