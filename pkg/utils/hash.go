package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// TaskKey derives a deterministic identifier from parts, used to deduplicate
// background tasks that target the same entity.
func TaskKey(parts ...string) string {
	sum := SumSHA256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:16])
}
