package pgp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"io"
)

// stream is a deterministic byte source that stands in for the system random
// source during cryptographic operations. Every consumer of randomness in a
// vector (session-key padding, the encrypted-data prefix) reads from a stream
// seeded by the vector, so repeated runs emit identical bytes.
//
// This is the opposite of what a secure random source should do. It exists
// only because this repository builds fixed reference artifacts.
type stream struct {
	c cipher.Stream
}

// newStream derives a deterministic stream from a seed label using AES-CTR
// keyed by the SHA-256 of the label.
func newStream(seed string) io.Reader {
	key := sha256.Sum256([]byte(seed))
	blk, err := aes.NewCipher(key[:])
	if err != nil {
		// aes.NewCipher cannot fail on a 32-byte key
		panic(err)
	}
	return &stream{cipher.NewCTR(blk, make([]byte, aes.BlockSize))}
}

// Read fills p with the next bytes of the key stream. It never fails.
func (s *stream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	s.c.XORKeyStream(p, p)
	return len(p), nil
}
