// Package param provides a tool for dealing with parameterized headers. These
// headers include the Content-type and Content-disposition header. In
// addition, it provides some helper methods for breaking down the MIME types
// that get set in the Content-type header.
package param

import (
	"errors"
	"mime"
	"strings"
)

// Names of common parameters used with Content-type and Content-disposition
// headers.
const (
	Boundary = "boundary"
	Charset  = "charset"
	Filename = "filename"
)

var (
	// ErrBadValue is returned by Parse when the primary value cannot be
	// parsed.
	ErrBadValue = errors.New("unable to parse parameterized header field value")
)

// Value represents a parsed parameterized header field body. The primary value
// always renders first, followed by the parameters in a stable (sorted)
// order. Objects of this type should be treated as immutable; use Modify to
// derive changed values.
type Value struct {
	v  string
	ps map[string]string
}

// New constructs a new Value from a primary value and zero or more parameter
// maps, which are merged.
func New(v string, pss ...map[string]string) *Value {
	ps := make(map[string]string, 2)
	for _, in := range pss {
		for k, pv := range in {
			ps[strings.ToLower(k)] = pv
		}
	}
	return &Value{v, ps}
}

// Parse parses a parameterized header field body, such as you would find on
// the Content-type or Content-disposition headers.
func Parse(body string) (*Value, error) {
	v, ps, err := mime.ParseMediaType(body)
	if err != nil {
		return nil, ErrBadValue
	}
	return &Value{v, ps}, nil
}

// Value returns the primary value.
func (v *Value) Value() string {
	return v.v
}

// Presentation is an alias for Value, for use with Content-disposition where
// the primary value names the presentation of a part.
func (v *Value) Presentation() string {
	return v.v
}

// MediaType is an alias for Value, for use with Content-type where the
// primary value is a MIME media type.
func (v *Value) MediaType() string {
	return v.v
}

// Type returns the part of the media type before the slash, or an empty
// string if the primary value has no slash.
func (v *Value) Type() string {
	if t, _, found := strings.Cut(v.v, "/"); found {
		return t
	}
	return ""
}

// Subtype returns the part of the media type after the slash, or an empty
// string if the primary value has no slash.
func (v *Value) Subtype() string {
	if _, s, found := strings.Cut(v.v, "/"); found {
		return s
	}
	return ""
}

// Parameter returns the named parameter value or an empty string.
func (v *Value) Parameter(name string) string {
	return v.ps[strings.ToLower(name)]
}

// Parameters returns a copy of all the parameters.
func (v *Value) Parameters() map[string]string {
	ps := make(map[string]string, len(v.ps))
	for k, pv := range v.ps {
		ps[k] = pv
	}
	return ps
}

// String renders the value with its parameters. Parameters render in sorted
// order, quoted only as needed, so output is always stable.
func (v *Value) String() string {
	return mime.FormatMediaType(v.v, v.ps)
}

// Bytes renders the value with its parameters as a slice of bytes.
func (v *Value) Bytes() []byte {
	return []byte(v.String())
}

// Modifier is an operation that Modify may apply to a Value.
type Modifier func(*Value)

// Change replaces the primary value.
func Change(v string) Modifier {
	return func(pv *Value) { pv.v = v }
}

// Set sets the named parameter.
func Set(name, value string) Modifier {
	return func(pv *Value) { pv.ps[strings.ToLower(name)] = value }
}

// Delete removes the named parameter.
func Delete(name string) Modifier {
	return func(pv *Value) { delete(pv.ps, strings.ToLower(name)) }
}

// Modify applies the given modifiers to a copy of the given Value and returns
// the copy.
func Modify(v *Value, ms ...Modifier) *Value {
	out := New(v.v, v.ps)
	for _, m := range ms {
		m(out)
	}
	return out
}
