// Package pgp adapts the OpenPGP operations the vector pipeline needs:
// detached signing with a pinned creation time and hybrid public-key
// encryption under a caller-supplied session key.
//
// Everything here is tuned for reproducibility rather than security of fresh
// traffic. The session key is fixed by the caller and all remaining
// randomness (session-key padding, the encrypted-data prefix) is drawn from a
// deterministic stream, so that a given vector serializes to identical bytes
// on every run. Do not reuse this package to protect real mail.
package pgp
