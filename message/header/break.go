package header

// Break represents the line break to use when rendering a message.
type Break string

// Constants for use when selecting a line break to use with a new header. The
// generators in this repository default to LF so that the emitted reference
// artifacts remain pleasant to read and diff as plain text files.
const (
	CRLF Break = "\x0d\x0a" // \r\n - network line break
	LF   Break = "\x0a"     // \n - Unix line break
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}
