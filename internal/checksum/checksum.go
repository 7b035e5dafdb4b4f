// Package checksum computes content fingerprints used to detect drift between
// a published post and the document it was generated from.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Length is the number of hexadecimal characters produced by Compute.
const Length = sha256.Size * 2

// Compute returns the lowercase hexadecimal SHA-256 digest of the provided bytes.
func Compute(content []byte) string {
	digest := sha256.Sum256(content)
	return hex.EncodeToString(digest[:])
}

// Matches reports whether the recorded checksum equals the checksum of the provided bytes.
// An empty recorded checksum never matches.
func Matches(recordedChecksum string, content []byte) bool {
	if len(recordedChecksum) == 0 {
		return false
	}
	return recordedChecksum == Compute(content)
}
