package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key prefixes.
const (
	GridPrefix = "grid:"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// GridKey returns the key for the grid decoded from the given file content.
// Keys depend on content only, so a renamed file still hits.
func GridKey(content []byte) string {
	return GridPrefix + Hash(content)
}
