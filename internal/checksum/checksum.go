// Package checksum computes the content digests used for optimistic
// concurrency on document writes.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag returns the digest in quoted ETag form for HTTP responses.
func ETag(data []byte) string {
	return `"` + Sum(data) + `"`
}
