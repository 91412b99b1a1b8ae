// Package header provides low-level and high-level tooling for building email
// message headers. If you need low-level access, you want to deal with
// methods that work with field.Field objects. However, it is generally
// expected that devs will prefer the high-level methods on Header, which keep
// manipulation of the header safe and strictly correct on output.
//
// Headers built here are ordered and case-preserving, and they render
// through a field.FoldEncoding so that no emitted line exceeds the configured
// maximum length.
package header
