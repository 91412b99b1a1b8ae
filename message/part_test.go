package message_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-protected-headers/message"
)

func TestNewPart(t *testing.T) {
	t.Parallel()

	m, err := message.NewPart([]byte("Hello Bob!\n"), "text/plain", "us-ascii")
	require.NoError(t, err)

	assert.False(t, m.IsMultipart())
	assert.Equal(t, &m.Header, m.GetHeader())
	assert.Equal(t, []byte("Hello Bob!\n"), m.GetContent())
	assert.Nil(t, m.GetParts())

	mt, err := m.GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "text/plain", mt)

	c, err := m.GetCharset()
	assert.NoError(t, err)
	assert.Equal(t, "us-ascii", c)

	// no transfer encoding is ever declared
	_, err = m.GetTransferEncoding()
	assert.Error(t, err)

	out := &bytes.Buffer{}
	n, err := m.WriteTo(out)
	assert.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)
	assert.Equal(t,
		"Content-Type: text/plain; charset=us-ascii\n\nHello Bob!\n",
		out.String())

	// serialization is repeatable
	again := &bytes.Buffer{}
	_, err = m.WriteTo(again)
	assert.NoError(t, err)
	assert.Equal(t, out.String(), again.String())
}

func TestNewPartNoCharset(t *testing.T) {
	t.Parallel()

	m, err := message.NewPart(
		[]byte("-----BEGIN PGP MESSAGE-----\n"), "application/octet-stream", "")
	require.NoError(t, err)

	_, err = m.GetCharset()
	assert.Error(t, err)
}

func TestNewPartRejectsEightBit(t *testing.T) {
	t.Parallel()

	_, err := message.NewPart([]byte("caf\xc3\xa9"), "text/plain", "utf-8")
	assert.ErrorIs(t, err, message.ErrNot7Bit)

	_, err = message.NewPart([]byte("nul\x00"), "text/plain", "us-ascii")
	assert.ErrorIs(t, err, message.ErrNot7Bit)
}

func TestMultipartWriteTo(t *testing.T) {
	t.Parallel()

	one, err := message.NewPart([]byte("first\n"), "text/plain", "us-ascii")
	require.NoError(t, err)
	two, err := message.NewPart([]byte("second\n"), "text/html", "us-ascii")
	require.NoError(t, err)

	mm := message.MultipartAlternative("abc123", one, two)

	assert.True(t, mm.IsMultipart())
	assert.Nil(t, mm.GetContent())
	assert.Len(t, mm.GetParts(), 2)

	b, err := mm.GetBoundary()
	assert.NoError(t, err)
	assert.Equal(t, "abc123", b)

	const expect = `Content-Type: multipart/alternative; boundary=abc123

--abc123
Content-Type: text/plain; charset=us-ascii

first

--abc123
Content-Type: text/html; charset=us-ascii

second

--abc123--`

	out := &bytes.Buffer{}
	n, err := mm.WriteTo(out)
	assert.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)
	assert.Equal(t, expect, out.String())
}

func TestMultipartWriteToRequiresBoundary(t *testing.T) {
	t.Parallel()

	mm := &message.Multipart{}
	_, err := mm.WriteTo(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestMultipartSigned(t *testing.T) {
	t.Parallel()

	body, err := message.NewPart([]byte("content\n"), "text/plain", "us-ascii")
	require.NoError(t, err)
	sig, err := message.NewPart(
		[]byte("-----BEGIN PGP SIGNATURE-----\n"), "application/pgp-signature", "")
	require.NoError(t, err)

	mm := message.MultipartSigned(
		"application/pgp-signature", "pgp-sha256", "904b809781", body, sig)

	ct, err := mm.GetContentType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/signed", ct.MediaType())
	assert.Equal(t, "application/pgp-signature", ct.Parameter("protocol"))
	assert.Equal(t, "pgp-sha256", ct.Parameter("micalg"))
	assert.Equal(t, "904b809781", ct.Parameter("boundary"))
}

func TestMultipartEncrypted(t *testing.T) {
	t.Parallel()

	version, err := message.NewPart(
		[]byte("Version: 1\n"), "application/pgp-encrypted", "")
	require.NoError(t, err)
	data, err := message.NewPart(
		[]byte("-----BEGIN PGP MESSAGE-----\n"), "application/octet-stream", "")
	require.NoError(t, err)

	mm := message.MultipartEncrypted("application/pgp-encrypted", "da39a3ee5e", version, data)

	ct, err := mm.GetContentType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/encrypted", ct.MediaType())
	assert.Equal(t, "application/pgp-encrypted", ct.Parameter("protocol"))
	assert.Equal(t, "da39a3ee5e", ct.Parameter("boundary"))
	ps := mm.GetParts()
	require.Len(t, ps, 2)
	assert.Same(t, message.Part(version), ps[0])
}
