package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashKey returns a stable hex identifier for an arbitrary string.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashParts joins the given parts with a separator that cannot appear from
// field concatenation ambiguity and hashes the result. Used for cache keys.
func HashParts(parts ...string) string {
	return HashKey(strings.Join(parts, "\x1f"))
}
