package util

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// ChunkKey derives a stable identifier for an embedding chunk from its
// owning proposal id and chunk index.
func ChunkKey(proposalID string, index int) string {
	base := proposalID + ":" + strconv.Itoa(index)
	h := sha1.Sum([]byte(base))
	return hex.EncodeToString(h[:])
}
