package vector

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zostay/go-protected-headers/message"
)

// Texts carries the fixed human-readable content of one vector. Every field
// is a constant chosen when the vector is registered; the composer never
// invents content.
type Texts struct {
	// Plain is the text/plain body.
	Plain string

	// HTML is the text/html rendering of the same content, used by the
	// multipart body shape.
	HTML string

	// Revised is a second revision of the plain body. The multipart body
	// shape attaches the patch that turns Plain into Revised.
	Revised string

	// AttachmentName is the filename given to the patch attachment.
	AttachmentName string
}

// Fixed boundary labels for the body containers. These hash to the same
// boundary in every vector, which is fine: boundaries only need to be unique
// within one message.
const (
	alternativeLabel = "alternative"
	mixedLabel       = "mixed"
)

// composeBody builds the cryptographic payload body for the given shape.
// Identical inputs always yield an identical part tree: part order is fixed
// (text before HTML, alternative before attachment) and all boundaries come
// from fixed labels.
func composeBody(shape BodyShape, texts Texts) (message.Part, error) {
	text, err := message.NewPart([]byte(texts.Plain), "text/plain", "us-ascii")
	if err != nil {
		return nil, fmt.Errorf("composing text body: %w", err)
	}

	if shape == SimpleBody {
		return text, nil
	}

	html, err := message.NewPart([]byte(texts.HTML), "text/html", "us-ascii")
	if err != nil {
		return nil, fmt.Errorf("composing html body: %w", err)
	}

	alt := message.MultipartAlternative(Boundary(alternativeLabel), text, html)

	patch, err := composePatch(texts)
	if err != nil {
		return nil, err
	}

	return message.MultipartMixed(Boundary(mixedLabel), alt, patch), nil
}

// composePatch builds the patch attachment carrying the edits that turn the
// plain body into its revised form.
func composePatch(texts Texts) (message.Part, error) {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // a diff cut short by a timeout would not be stable

	patches := dmp.PatchMake(texts.Plain, texts.Revised)
	body := dmp.PatchToText(patches)

	part, err := message.NewPart([]byte(body), "text/x-diff", "us-ascii")
	if err != nil {
		return nil, fmt.Errorf("composing patch attachment: %w", err)
	}

	part.SetPresentation("inline")
	if err := part.SetFilename(texts.AttachmentName); err != nil {
		return nil, err
	}

	return part, nil
}
