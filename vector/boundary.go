package vector

import (
	"crypto/sha256"
	"encoding/hex"
)

// boundaryLength is the number of hex characters kept from the label hash.
const boundaryLength = 10

// Boundary derives the MIME boundary token for a well-known label: the first
// ten hex characters of the SHA-256 of the label. Boundaries are never
// random; the same label always yields the same token, which keeps every
// vector byte-stable. Labels in use are the Message-ID of the vector (outer
// boundary), the Message-ID with a role suffix (inner structures), and fixed
// strings for the body containers.
func Boundary(label string) string {
	sum := sha256.Sum256([]byte(label))
	return hex.EncodeToString(sum[:])[:boundaryLength]
}
