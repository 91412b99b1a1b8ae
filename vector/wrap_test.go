package vector_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-protected-headers/pgp"
	"github.com/zostay/go-protected-headers/vector"
)

func testConfig(t *testing.T) vector.Config {
	t.Helper()
	cfg, err := vector.DefaultConfig()
	require.NoError(t, err)
	return cfg
}

func generate(t *testing.T, name string) string {
	t.Helper()
	bs, err := vector.Generate(testConfig(t), name)
	require.NoError(t, err)
	return string(bs)
}

// headerBlock returns the outer header of a serialized message, without the
// terminating blank line.
func headerBlock(t *testing.T, msg string) string {
	t.Helper()
	hdr, _, found := strings.Cut(msg, "\n\n")
	require.True(t, found)
	return hdr + "\n"
}

// splitParts cuts the sub-parts of a multipart body out of a serialized
// message, given its boundary.
func splitParts(t *testing.T, msg, boundary string) []string {
	t.Helper()

	open := "--" + boundary + "\n"
	start := strings.Index(msg, open)
	require.GreaterOrEqual(t, start, 0, "opening boundary delimiter not found")

	rest := msg[start+len(open):]
	end := strings.Index(rest, "\n--"+boundary+"--")
	require.GreaterOrEqual(t, end, 0, "closing boundary delimiter not found")

	return strings.Split(rest[:end], "\n--"+boundary+"\n")
}

// partBody returns the body of a leaf part, which for cryptographic parts is
// the ASCII armor.
func partBody(t *testing.T, part string) string {
	t.Helper()
	_, body, found := strings.Cut(part, "\n\n")
	require.True(t, found)
	return body
}

func countField(hdr, name string) int {
	return strings.Count("\n"+hdr, "\n"+name+": ")
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	for _, v := range vector.All() {
		v := v
		t.Run(v.Name, func(t *testing.T) {
			t.Parallel()

			// fresh configurations on both sides, so nothing carries over
			one, err := vector.Generate(testConfig(t), v.Name)
			require.NoError(t, err)
			two, err := vector.Generate(testConfig(t), v.Name)
			require.NoError(t, err)

			assert.Equal(t, one, two)

			// output has no trailing framing
			assert.True(t, strings.HasSuffix(string(one), "--"))
		})
	}
}

func TestSignedVector(t *testing.T) {
	t.Parallel()

	msg := generate(t, "signed")
	hdr := headerBlock(t, msg)

	assert.True(t, strings.HasPrefix(msg, "Received: from localhost"))
	assert.Contains(t, hdr, "Subject: The FooCorp contract\n")
	assert.Contains(t, hdr, "Message-ID: <signed-only@protected-headers.example>\n")
	assert.Contains(t, hdr, "Date: Sun, 20 Oct 2019 13:18:11 +0000\n")
	assert.Contains(t, hdr, "MIME-Version: 1.0\n")
	assert.Contains(t, hdr, "Content-Type: multipart/signed;")
	assert.Contains(t, hdr, "boundary=904b809781")
	assert.Contains(t, hdr, "micalg=pgp-sha256")

	parts := splitParts(t, msg, "904b809781")
	require.Len(t, parts, 2)

	payload, sig := parts[0], parts[1]

	// the payload leads and carries the protected headers
	assert.True(t, strings.HasPrefix(payload, "From: "))
	assert.Contains(t, payload, "alice@protected-headers.example")
	assert.Contains(t, payload, "To: ")
	assert.Contains(t, payload, "bob@protected-headers.example")
	assert.Contains(t, payload, "Subject: The FooCorp contract\n")
	assert.Contains(t, payload,
		"Content-Type: text/plain; charset=us-ascii; protected-headers=v1\n")
	assert.Contains(t, payload, "I've attached the FooCorp contract.")

	assert.Contains(t, sig, "Content-Type: application/pgp-signature\n")

	// the detached signature verifies over the exact payload bytes
	cfg := testConfig(t)
	err := pgp.VerifyDetached([]byte(payload), []byte(partBody(t, sig)), cfg.Sender)
	assert.NoError(t, err)
}

func TestHeaderMirroring(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"signed", "signed+encrypted", "multilayer"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			msg := generate(t, name)
			hdr := headerBlock(t, msg)

			// every protected header appears exactly once on the envelope
			for _, f := range []string{
				"From", "To", "Date", "Subject", "Message-ID",
			} {
				assert.Equal(t, 1, countField(hdr, f), f)
			}

			// content metadata is never mirrored: the only content header
			// on the envelope is the envelope's own multipart type
			assert.Equal(t, 1, countField(hdr, "Content-Type"))
			assert.Equal(t, 0, countField(hdr, "Content-Disposition"))
			assert.Equal(t, 0, countField(hdr, "Content-Transfer-Encoding"))

			assert.Equal(t, 1, countField(hdr, "Received"))
			assert.Equal(t, 1, countField(hdr, "MIME-Version"))
		})
	}
}

func TestEncryptedVector(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	msg := generate(t, "signed+encrypted")
	hdr := headerBlock(t, msg)

	// the true Subject is obscured on the envelope
	assert.Contains(t, hdr, "Subject: ...\n")
	assert.NotContains(t, msg, "BarCorp contract signed")

	boundary := vector.Boundary("<signed-encrypted@protected-headers.example>")
	assert.Contains(t, hdr, "Content-Type: multipart/encrypted;")
	assert.Contains(t, hdr, "boundary="+boundary)

	parts := splitParts(t, msg, boundary)
	require.Len(t, parts, 2)

	// the control part precedes the ciphertext
	assert.Equal(t,
		"Content-Type: application/pgp-encrypted\n\nVersion: 1\n", parts[0])
	assert.Contains(t, parts[1], "Content-Type: application/octet-stream\n")

	armored := partBody(t, parts[1])
	assert.Contains(t, armored, "-----BEGIN PGP MESSAGE-----")

	// the recipient can decrypt, and the embedded signature covers the
	// pre-encryption payload bytes
	body, md, err := pgp.Decrypt([]byte(armored), cfg.Recipient, cfg.Sender)
	require.NoError(t, err)
	assert.True(t, md.IsSigned)
	assert.NoError(t, md.SignatureError)

	payload := string(body)
	assert.True(t, strings.HasPrefix(payload, "From: "))
	assert.Contains(t, payload, "Subject: BarCorp contract signed, let's go!\n")
	assert.Contains(t, payload, "protected-headers=v1")

	// the sender can decrypt their own message too
	_, _, err = pgp.Decrypt([]byte(armored), cfg.Sender)
	assert.NoError(t, err)
}

func TestMultilayerVector(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	msg := generate(t, "multilayer")

	boundary := vector.Boundary("<multilayer@protected-headers.example>")
	parts := splitParts(t, msg, boundary)
	require.Len(t, parts, 2)

	body, md, err := pgp.Decrypt(
		[]byte(partBody(t, parts[1])), cfg.Recipient)
	require.NoError(t, err)

	// the signature travels as MIME structure, not inside the container
	assert.False(t, md.IsSigned)

	inner := string(body)
	assert.Contains(t, inner, "Content-Type: multipart/signed;")

	innerBoundary := vector.Boundary("<multilayer@protected-headers.example>/signed")
	assert.NotEqual(t, boundary, innerBoundary)

	signedParts := splitParts(t, inner, innerBoundary)
	require.Len(t, signedParts, 2)

	payload, sig := signedParts[0], signedParts[1]
	assert.Contains(t, payload, "Subject: BarCorp contract signed, let's go!\n")

	err = pgp.VerifyDetached([]byte(payload), []byte(partBody(t, sig)), cfg.Sender)
	assert.NoError(t, err)
}

func TestLegacyDisplayVector(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	msg := generate(t, "legacy-display")

	boundary := vector.Boundary("<legacy-display@protected-headers.example>")
	parts := splitParts(t, msg, boundary)
	require.Len(t, parts, 2)

	body, _, err := pgp.Decrypt(
		[]byte(partBody(t, parts[1])), cfg.Recipient)
	require.NoError(t, err)

	inner := string(body)

	// the decrypted payload is a two child multipart/mixed, legacy part
	// first
	assert.Contains(t, inner, "Content-Type: multipart/mixed; boundary=6ae0cc9247;")
	children := splitParts(t, inner, "6ae0cc9247")
	require.Len(t, children, 2)

	legacy, payload := children[0], children[1]
	assert.Contains(t, legacy, "Content-Type: text/rfc822-headers;")
	assert.Contains(t, legacy, "protected-headers=v1")
	assert.Contains(t, legacy, "Content-Disposition: inline\n")
	assert.Equal(t,
		"Subject: BarCorp contract signed, let's go!\n", partBody(t, legacy))

	assert.Contains(t, payload, "Content-Type: text/plain; charset=us-ascii\n")
	assert.Contains(t, payload, "Celebratory drinks are on me.")
}

func TestMultipartBodyVector(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	msg := generate(t, "multipart")
	hdr := headerBlock(t, msg)

	assert.Contains(t, hdr, "Subject: ...\n")

	boundary := vector.Boundary("<multipart-body@protected-headers.example>")
	parts := splitParts(t, msg, boundary)
	require.Len(t, parts, 2)

	body, md, err := pgp.Decrypt(
		[]byte(partBody(t, parts[1])), cfg.Recipient)
	require.NoError(t, err)
	assert.True(t, md.IsSigned)
	assert.NoError(t, md.SignatureError)

	inner := string(body)
	assert.Contains(t, inner, "Subject: Revised quote for the BazCorp build-out\n")

	// mixed container holding the alternative container and the attachment
	assert.Contains(t, inner, "Content-Type: multipart/mixed; boundary=3f8fee624f;")
	mixed := splitParts(t, inner, "3f8fee624f")
	require.Len(t, mixed, 2)

	alternative, attachment := mixed[0], mixed[1]
	assert.Contains(t, alternative,
		"Content-Type: multipart/alternative; boundary=27747689ba\n")

	renditions := splitParts(t, alternative, "27747689ba")
	require.Len(t, renditions, 2)
	assert.Contains(t, renditions[0], "Content-Type: text/plain; charset=us-ascii\n")
	assert.Contains(t, renditions[1], "Content-Type: text/html; charset=us-ascii\n")

	assert.Contains(t, attachment, "Content-Type: text/x-diff; charset=us-ascii\n")
	assert.Contains(t, attachment,
		"Content-Disposition: inline; filename=quote-revision.diff\n")
	assert.Contains(t, attachment, "@@")
}

func TestWrapRejectsBadModes(t *testing.T) {
	t.Parallel()

	w := vector.NewWrapper(testConfig(t))

	_, err := w.Wrap(&vector.Vector{
		Name:  "broken",
		Label: "broken",
		Mode:  vector.Mode{Protection: vector.SignedEncrypted},
	})
	assert.ErrorIs(t, err, vector.ErrMissingSessionKey)
}
