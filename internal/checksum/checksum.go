// Package checksum derives content digests for change detection: file
// checksums in storage listings and note ETags in the API.
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

// Fields digests parts as one record. Each part is NUL-terminated, so
// moving text between adjacent parts changes the result.
func Fields(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ETag returns a strong HTTP entity tag over parts.
func ETag(parts ...string) string {
	return `"` + Fields(parts...) + `"`
}
