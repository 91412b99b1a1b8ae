package message

import (
	"errors"
	"fmt"
	"io"

	"github.com/zostay/go-protected-headers/message/header"
	"github.com/zostay/go-protected-headers/message/header/param"
)

var (
	// ErrNot7Bit is returned by NewPart when content expected to be 7-bit
	// clean contains NUL or non-ASCII bytes.
	ErrNot7Bit = errors.New("part content is not 7-bit clean")
)

// Part is an interface defining the parts of a message tree. Each Part is
// either a branch or a leaf.
//
// A branch Part is one that has sub-parts. In this case, the IsMultipart()
// method will return true, the GetParts() method returns the sub-parts, and
// GetContent() returns nil.
//
// A leaf Part is one that contains content. In this case, the IsMultipart()
// method will return false, GetContent() returns the body bytes, and
// GetParts() returns nil.
type Part interface {
	io.WriterTo

	// IsMultipart will return true if this Part is a branch with nested
	// parts.
	IsMultipart() bool

	// GetHeader is available on all Part objects.
	GetHeader() *header.Header

	// GetContent provides the body content of a leaf part. This must return
	// nil if IsMultipart() returns true.
	GetContent() []byte

	// GetParts provides the sub-parts of a branch part. This must return nil
	// if IsMultipart() returns false.
	GetParts() []Part
}

// Opaque is the base-level part: a header and opaque body content.
type Opaque struct {
	// Header contains the header of the part.
	header.Header

	// Content contains the body content of the part.
	Content []byte
}

// NewPart constructs a leaf part from content bytes, a media type, and a
// charset. If charset is empty, the content is taken to be already encoded
// material (such as ASCII-armored cryptographic output) and no charset
// parameter is declared.
//
// All content emitted by this repository is constrained to be 7-bit clean by
// construction, so no Content-transfer-encoding header is ever declared and
// content containing NUL or non-ASCII bytes is rejected with ErrNot7Bit.
func NewPart(content []byte, mediaType, charset string) (*Opaque, error) {
	for _, c := range content {
		if c == 0 || c > 0x7f {
			return nil, fmt.Errorf("%w: media type %s", ErrNot7Bit, mediaType)
		}
	}

	m := &Opaque{Content: content}
	m.SetMediaType(mediaType)
	if charset != "" {
		_ = m.SetCharset(charset)
	}

	return m, nil
}

// WriteTo writes the Opaque header and body to the destination io.Writer.
// This may safely be called any number of times and always produces the same
// bytes.
func (m *Opaque) WriteTo(w io.Writer) (int64, error) {
	total, err := m.Header.WriteTo(w)
	if err != nil {
		return total, err
	}

	n, err := w.Write(m.Content)
	total += int64(n)
	return total, err
}

// IsMultipart always returns false.
func (m *Opaque) IsMultipart() bool {
	return false
}

// GetHeader returns the header for the part.
func (m *Opaque) GetHeader() *header.Header {
	return &m.Header
}

// GetContent returns the body content of the part.
func (m *Opaque) GetContent() []byte {
	return m.Content
}

// GetParts always returns nil.
func (m *Opaque) GetParts() []Part {
	return nil
}

// Multipart is a multipart MIME part. The MIME type set in the Content-type
// header always starts with multipart/* and always carries a boundary
// parameter.
type Multipart struct {
	// Header is the header for the part.
	header.Header

	// parts holds this layer's parts.
	parts []Part
}

// WriteTo writes the Multipart header and parts to the destination io.Writer.
// This method will fail with an error if the part does not have a
// Content-type boundary parameter set.
//
// Each sub-part is preceded by a boundary delimiter line and the output is
// terminated by the final boundary delimiter with no trailing line break, per
// the serialization rules this repository's vectors rely on.
func (mm *Multipart) WriteTo(w io.Writer) (int64, error) {
	boundary, err := mm.GetBoundary()
	if err != nil {
		return 0, err
	}

	br := mm.Break()

	n, err := mm.Header.WriteTo(w)
	if err != nil {
		return n, err
	}

	for i, part := range mm.parts {
		if i > 0 {
			bn, err := fmt.Fprint(w, br)
			n += int64(bn)
			if err != nil {
				return n, err
			}
		}

		bn, err := fmt.Fprintf(w, "--%s%s", boundary, br)
		n += int64(bn)
		if err != nil {
			return n, err
		}

		pn, err := part.WriteTo(w)
		n += pn
		if err != nil {
			return n, err
		}
	}

	bn, err := fmt.Fprintf(w, "%s--%s--", br, boundary)
	n += int64(bn)
	return n, err
}

// IsMultipart always returns true.
func (mm *Multipart) IsMultipart() bool {
	return true
}

// GetHeader returns the header for the part.
func (mm *Multipart) GetHeader() *header.Header {
	return &mm.Header
}

// GetContent always returns nil.
func (mm *Multipart) GetContent() []byte {
	return nil
}

// GetParts returns the sub-parts of this part.
func (mm *Multipart) GetParts() []Part {
	return mm.parts
}

// newMultipart builds a Multipart with the given Content-type value and
// boundary.
func newMultipart(ct *param.Value, boundary string, parts []Part) *Multipart {
	m := &Multipart{parts: parts}
	m.SetContentType(param.Modify(ct, param.Set(param.Boundary, boundary)))
	return m
}

// MultipartAlternative returns a Multipart with a Content-type header set to
// multipart/alternative using the given boundary and the given parts
// attached.
func MultipartAlternative(boundary string, parts ...Part) *Multipart {
	return newMultipart(param.New("multipart/alternative"), boundary, parts)
}

// MultipartMixed returns a Multipart with a Content-type header set to
// multipart/mixed using the given boundary and the given parts attached.
func MultipartMixed(boundary string, parts ...Part) *Multipart {
	return newMultipart(param.New("multipart/mixed"), boundary, parts)
}

// MultipartSigned returns a Multipart with a Content-type header set to
// multipart/signed declaring the given signature protocol and micalg
// parameters, per RFC 1847 and RFC 3156. The signed content part must come
// first and the signature part second.
func MultipartSigned(protocol, micalg, boundary string, parts ...Part) *Multipart {
	ct := param.New("multipart/signed", map[string]string{
		"protocol": protocol,
		"micalg":   micalg,
	})
	return newMultipart(ct, boundary, parts)
}

// MultipartEncrypted returns a Multipart with a Content-type header set to
// multipart/encrypted declaring the given control protocol parameter, per
// RFC 1847 and RFC 3156. The control part must come first and the encrypted
// data part second.
func MultipartEncrypted(protocol, boundary string, parts ...Part) *Multipart {
	ct := param.New("multipart/encrypted", map[string]string{
		"protocol": protocol,
	})
	return newMultipart(ct, boundary, parts)
}
