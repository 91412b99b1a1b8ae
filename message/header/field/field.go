// Package field provides the single header field objects used by the header
// package and the folding machinery used to render them at a fixed maximum
// line length. Fields built here hold opaque string bodies; all semantics
// (addresses, dates, parameters) live in the header package.
package field

import (
	"fmt"
)

// Field is a single header field, a name and an unfolded body. The name is
// case-preserving: it is rendered exactly as given, but callers are expected
// to compare names case-insensitively.
type Field struct {
	name string
	body string
}

// New constructs a field from a name and an unfolded body.
func New(name, body string) *Field {
	return &Field{name, body}
}

// Name returns the name of the header field.
func (f *Field) Name() string {
	return f.name
}

// SetName updates the name of the header field.
func (f *Field) SetName(name string) {
	f.name = name
}

// Body returns the value of the header field as a string.
func (f *Field) Body() string {
	return f.body
}

// SetBody updates the body of the header field.
func (f *Field) SetBody(body string) {
	f.body = body
}

// String returns the complete unfolded header field as a string.
func (f *Field) String() string {
	return fmt.Sprintf("%s: %s", f.name, f.body)
}

// Bytes returns the complete unfolded header field as a slice of bytes.
func (f *Field) Bytes() []byte {
	return []byte(f.String())
}
