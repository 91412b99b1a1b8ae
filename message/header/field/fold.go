package field

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

const (
	DefaultFoldIndent          = " "  // indent placed before folded lines
	DefaultPreferredFoldLength = 80   // prefer header lines shorter than this
	DefaultForcedFoldLength    = 1000 // forcibly break lines longer than this
)

// DefaultFoldEncoding is a FoldEncoding using the default settings. This is
// the recommended way to fold headers for output.
var DefaultFoldEncoding = &FoldEncoding{
	DefaultFoldIndent,
	DefaultPreferredFoldLength,
	DefaultForcedFoldLength,
}

var (
	// ErrFoldIndentSpace is returned by NewFoldEncoding when a
	// non-space/non-tab character is put in the foldIndent setting.
	ErrFoldIndentSpace = errors.New("fold indent may only contain spaces and tabs")

	// ErrFoldIndentTooShort is returned by NewFoldEncoding when the foldIndent
	// is empty.
	ErrFoldIndentTooShort = errors.New("fold indent must contain at least one space or tab")

	// ErrFoldIndentTooLong is returned by NewFoldEncoding when the foldIndent
	// setting is equal to or longer than the preferredFoldLength.
	ErrFoldIndentTooLong = errors.New("fold indent must be shorter than the preferred fold length")

	// ErrFoldLengthTooLong is returned by NewFoldEncoding when the
	// preferredFoldLength is longer than the forcedFoldLength.
	ErrFoldLengthTooLong = errors.New("preferred fold length must be no longer than the forced fold length")

	// ErrFoldLengthTooShort is returned by NewFoldEncoding when either fold
	// length is too short to fold at.
	ErrFoldLengthTooShort = errors.New("fold lengths cannot be too short")
)

// FoldEncoding provides the tooling for folding email message headers at a
// caller-specified maximum line length.
type FoldEncoding struct {
	foldIndent          string
	preferredFoldLength int
	forcedFoldLength    int
}

// NewFoldEncoding creates a new FoldEncoding with the given settings. The
// foldIndent must contain only one or more space or tab characters and must be
// shorter than the preferredFoldLength. The preferredFoldLength must be no
// longer than the forcedFoldLength.
func NewFoldEncoding(
	foldIndent string,
	preferredFoldLength,
	forcedFoldLength int,
) (*FoldEncoding, error) {
	if strings.IndexFunc(foldIndent, func(c rune) bool { return !isSpace(c) }) >= 0 {
		return nil, ErrFoldIndentSpace
	}

	if len(foldIndent) < 1 {
		return nil, ErrFoldIndentTooShort
	}

	if len(foldIndent) >= preferredFoldLength {
		return nil, ErrFoldIndentTooLong
	}

	if preferredFoldLength > forcedFoldLength {
		return nil, ErrFoldLengthTooLong
	}

	if preferredFoldLength < 3 || forcedFoldLength < 3 {
		return nil, ErrFoldLengthTooShort
	}

	return &FoldEncoding{foldIndent, preferredFoldLength, forcedFoldLength}, nil
}

func isSpace(c rune) bool    { return c == ' ' || c == '\t' }
func isNonSpace(c rune) bool { return c != ' ' && c != '\t' }

// Fold takes an unfolded header field line and folds it. Every fold line is
// properly indented, lines break on appropriate spaces where possible, and
// lines longer than the forced fold length are broken before the maximum line
// length regardless of spacing.
//
// Writes the folded output to the given io.Writer followed by the given line
// break and returns the number of bytes written.
func (vf *FoldEncoding) Fold(out io.Writer, f []byte, lb []byte) (int64, error) {
	total := int64(0)
	continuingLine := false
	writeFold := func(f []byte, end int) ([]byte, error) {
		if continuingLine && !isSpace(rune(f[0])) {
			n, err := out.Write([]byte(vf.foldIndent))
			total += int64(n)
			if err != nil {
				return nil, err
			}
		}
		n, err := out.Write(f[:end])
		total += int64(n)
		if err != nil {
			return nil, err
		}

		n, err = out.Write(lb)
		total += int64(n)
		if err != nil {
			return nil, err
		}

		continuingLine = true

		return bytes.TrimLeft(f[end:], " \t"), nil
	}

	if len(f) < vf.preferredFoldLength {
		_, err := writeFold(f, len(f))
		return total, err
	}

	line := f
	for len(line) > 0 {
		var err error

		if len(line) <= vf.preferredFoldLength-2 {
			line, err = writeFold(line, len(line))
			if err != nil {
				return total, err
			}
			continue
		}

		// no fold may occur before the first char of the field body
		var firstChar int
		if continuingLine {
			firstChar = bytes.IndexFunc(line, isNonSpace)
		} else {
			colon := bytes.IndexRune(line, ':')
			firstChar = bytes.IndexFunc(line[colon+1:], isNonSpace)
			if firstChar >= 0 {
				firstChar += colon + 1
			}
		}
		if firstChar < 0 {
			firstChar = 0
		}

		// best case, there's a space in the first n-2 chars, break there
		if firstChar < vf.preferredFoldLength-2 {
			if ix := bytes.LastIndexFunc(line[firstChar:vf.preferredFoldLength-2], isSpace); ix >= 0 {
				line, err = writeFold(line, ix+firstChar)
				if err != nil {
					return total, err
				}
				continue
			}
		}

		// barring that, try to find a space after the n-2 char mark
		if ix := bytes.IndexFunc(line[firstChar:], isSpace); ix >= 0 && ix+firstChar < vf.forcedFoldLength-2 {
			line, err = writeFold(line, ix+firstChar)
			if err != nil {
				return total, err
			}
			continue
		}

		// if it's really long with no space, force a break at n-2
		if len(line) > vf.forcedFoldLength-2 {
			line, err = writeFold(line, vf.preferredFoldLength-2)
			if err != nil {
				return total, err
			}
			continue
		}

		// not forced to fold this line, allow it to run long
		line, err = writeFold(line, len(line))
		if err != nil {
			return total, err
		}
	}

	return total, nil
}
