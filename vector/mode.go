package vector

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Protection names the cryptographic protection applied to a payload.
type Protection int

const (
	// SignedOnly wraps the payload in multipart/signed with a detached
	// signature and no encryption.
	SignedOnly Protection = iota

	// SignedEncrypted embeds a signature inside the encrypted OpenPGP
	// container together with the payload (one combined cryptographic
	// object) and wraps the result in multipart/encrypted.
	SignedEncrypted

	// MultilayerSignedEncrypted first wraps the payload in multipart/signed
	// with a detached signature, then encrypts that whole structure and
	// wraps the ciphertext in multipart/encrypted.
	MultilayerSignedEncrypted
)

// String returns a short name for the protection.
func (p Protection) String() string {
	switch p {
	case SignedOnly:
		return "signed"
	case SignedEncrypted:
		return "signed+encrypted"
	case MultilayerSignedEncrypted:
		return "multilayer signed+encrypted"
	}
	return fmt.Sprintf("unknown protection %d", int(p))
}

// Encrypts reports whether this protection includes an encryption step.
func (p Protection) Encrypts() bool {
	return p == SignedEncrypted || p == MultilayerSignedEncrypted
}

// BodyShape names the shape of the human-readable payload body.
type BodyShape int

const (
	// SimpleBody is a single text/plain part.
	SimpleBody BodyShape = iota

	// MultipartBody is a multipart/mixed holding a multipart/alternative
	// (text and HTML renderings of the same content) plus a patch
	// attachment.
	MultipartBody
)

// Errors reported by Mode.Validate for descriptor combinations the pipeline
// refuses to build.
var (
	ErrMissingSessionKey = errors.New("encrypting modes require a session key")
	ErrUnusedSessionKey  = errors.New("session key is only meaningful with encryption")
	ErrLegacyNeedsCrypt  = errors.New("legacy display wrapping is only meaningful with encryption")
	ErrBodyNeedsCrypt    = errors.New("the multipart body shape is only meaningful with encryption")
	ErrBadSessionKeyHex  = errors.New("session key must be 64 hex digits (AES-256)")
)

// Mode describes the protection applied to one vector. The protection and
// body shape are tagged variants rather than independent booleans so that
// combinations like an unencrypted multilayer structure cannot be expressed.
type Mode struct {
	// Protection selects the cryptographic structure.
	Protection Protection

	// Body selects the payload body shape.
	Body BodyShape

	// LegacyDisplay wraps the payload so that clients unaware of the
	// protected-headers convention still display a usable Subject. Only
	// meaningful with an encrypting protection.
	LegacyDisplay bool

	// SessionKeyHex is the fixed AES-256 session key for encrypting
	// protections, hex encoded. Supplied rather than generated so that
	// output is reproducible.
	SessionKeyHex string
}

// Validate checks the descriptor for combinations the pipeline refuses to
// build and returns the decoded session key for encrypting modes.
func (m Mode) Validate() ([]byte, error) {
	if !m.Protection.Encrypts() {
		switch {
		case m.SessionKeyHex != "":
			return nil, ErrUnusedSessionKey
		case m.LegacyDisplay:
			return nil, ErrLegacyNeedsCrypt
		case m.Body == MultipartBody:
			return nil, ErrBodyNeedsCrypt
		}
		return nil, nil
	}

	if m.SessionKeyHex == "" {
		return nil, ErrMissingSessionKey
	}

	key, err := hex.DecodeString(m.SessionKeyHex)
	if err != nil || len(key) != 32 {
		return nil, ErrBadSessionKeyHex
	}

	return key, nil
}
