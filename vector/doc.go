// Package vector assembles the protected-headers reference messages. It
// composes the cryptographic payload for each body shape, runs the protection
// pipeline (legacy display wrapping, header stamping, signing, encryption,
// envelope construction with header mirroring), and carries the registry of
// named vectors with their fixed identities, timestamps, session keys, and
// texts.
//
// Every value that feeds a vector is a fixed constant and every derived value
// (boundaries, Message-IDs, signatures, ciphertext) is computed
// deterministically from those constants, so generating the same vector twice
// always yields byte-identical output.
package vector
