package header_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-protected-headers/message/header"
	"github.com/zostay/go-protected-headers/message/header/param"
)

func TestGetSetDelete(t *testing.T) {
	t.Parallel()

	h := &header.Header{}

	_, err := h.Get(header.Subject)
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	h.Set(header.Subject, "one")
	s, err := h.Get(header.Subject)
	assert.NoError(t, err)
	assert.Equal(t, "one", s)

	// Set replaces in place, preserving position
	h.Set(header.To, "bob@protected-headers.example")
	h.Set(header.Subject, "two")
	assert.Equal(t, "Subject", h.GetField(0).Name())
	assert.Equal(t, "two", h.GetField(0).Body())

	// multiple same-named fields collapse to one on Set
	h.InsertBeforeField(2, "Subject", "three")
	_, err = h.Get(header.Subject)
	assert.ErrorIs(t, err, header.ErrManyFields)

	h.Set(header.Subject, "four")
	assert.Equal(t, []int{0}, h.GetIndexesNamed(header.Subject))

	h.Delete(header.Subject)
	_, err = h.Get(header.Subject)
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestTimeAndAddressFields(t *testing.T) {
	t.Parallel()

	h := &header.Header{}

	when := time.Unix(1571577491, 0).UTC()
	h.SetDate(when)

	b, err := h.Get(header.Date)
	assert.NoError(t, err)
	assert.Equal(t, "Sun, 20 Oct 2019 13:18:11 +0000", b)

	got, err := h.GetDate()
	assert.NoError(t, err)
	assert.True(t, when.Equal(got))

	// non-RFC5322 dates still parse
	h.Set(header.Date, "2019-10-20 13:18:11 +0000 UTC")
	got, err = h.GetDate()
	assert.NoError(t, err)
	assert.True(t, when.Equal(got))

	mb, err := addr.ParseEmailMailbox("Alice Lovelace <alice@protected-headers.example>")
	require.NoError(t, err)

	h.SetAddressList(header.From, mb)
	f, err := h.Get(header.From)
	assert.NoError(t, err)
	assert.Contains(t, f, "alice@protected-headers.example")

	al, err := h.GetAddressList(header.From)
	assert.NoError(t, err)
	require.Len(t, al, 1)
	assert.Equal(t, "alice@protected-headers.example", al[0].Address())
}

func TestContentTypeHelpers(t *testing.T) {
	t.Parallel()

	h := &header.Header{}

	_, err := h.GetContentType()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	err = h.SetCharset("us-ascii")
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	h.SetMediaType("text/plain")
	mt, err := h.GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "text/plain", mt)

	require.NoError(t, h.SetCharset("us-ascii"))
	c, err := h.GetCharset()
	assert.NoError(t, err)
	assert.Equal(t, "us-ascii", c)

	// changing the media type preserves parameters
	h.SetMediaType("text/html")
	b, err := h.Get(header.ContentType)
	assert.NoError(t, err)
	assert.Equal(t, "text/html; charset=us-ascii", b)

	require.NoError(t, h.SetBoundary("904b809781"))
	bd, err := h.GetBoundary()
	assert.NoError(t, err)
	assert.Equal(t, "904b809781", bd)

	_, err = h.GetFilename()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	h.SetPresentation("inline")
	require.NoError(t, h.SetFilename("quote-revision.diff"))

	pr, err := h.GetPresentation()
	assert.NoError(t, err)
	assert.Equal(t, "inline", pr)

	fn, err := h.GetFilename()
	assert.NoError(t, err)
	assert.Equal(t, "quote-revision.diff", fn)

	cd, err := h.GetContentDisposition()
	assert.NoError(t, err)
	assert.Equal(t, "inline", cd.Presentation())
}

func TestSetParamValue(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetContentType(param.New("multipart/signed", map[string]string{
		"protocol": "application/pgp-signature",
		"micalg":   "pgp-sha256",
		"boundary": "904b809781",
	}))

	pv, err := h.GetContentType()
	assert.NoError(t, err)
	assert.Equal(t, "multipart/signed", pv.MediaType())
	assert.Equal(t, "pgp-sha256", pv.Parameter("micalg"))
}

func TestHeaderClone(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetSubject("original")

	c := h.Clone()
	c.SetSubject("changed")
	c.SetMessageID("<clone@protected-headers.example>")

	s, err := h.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "original", s)

	_, err = h.GetMessageID()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	id, err := c.GetMessageID()
	assert.NoError(t, err)
	assert.Equal(t, "<clone@protected-headers.example>", id)
}
