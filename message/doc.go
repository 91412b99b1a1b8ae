// Package message provides the part model used to assemble the reference
// messages emitted by this repository. A message is a tree of parts: an
// Opaque part is a header plus opaque body content, and a Multipart part is a
// header plus an ordered list of sub-parts joined by a boundary.
//
// Unlike a general mail library, this package only ever constructs messages
// from known inputs. Part bodies are held as byte slices rather than readers
// so a tree may be serialized more than once and always produce identical
// bytes, which the signing pipeline depends on: the bytes signed must be the
// bytes later emitted.
package message
