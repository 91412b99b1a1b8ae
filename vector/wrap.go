package vector

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/zostay/go-protected-headers/message"
	"github.com/zostay/go-protected-headers/message/header"
	"github.com/zostay/go-protected-headers/message/header/param"
	"github.com/zostay/go-protected-headers/pgp"
)

// Markers and media types of the protected-headers and PGP/MIME conventions.
const (
	protectedMarker        = "protected-headers"
	protectedMarkerVersion = "v1"

	legacyLabel     = "legacy-wrapper"
	legacyMediaType = "text/rfc822-headers"

	signatureProtocol  = "application/pgp-signature"
	encryptionProtocol = "application/pgp-encrypted"

	// subjectPlaceholder replaces the mirrored Subject on the outside of
	// encrypted messages so the real Subject travels only in the protected
	// payload.
	subjectPlaceholder = "..."

	// contentPrefix marks content-metadata headers, which describe a part
	// rather than the message and are never mirrored.
	contentPrefix = "content-"
)

// Wrapper runs the protection pipeline for one vector at a time. Each Wrap
// call builds an independent part tree; nothing is shared between calls
// except the immutable configuration.
type Wrapper struct {
	cfg Config
}

// NewWrapper creates a Wrapper over the given configuration.
func NewWrapper(cfg Config) *Wrapper {
	return &Wrapper{cfg: cfg}
}

// Wrap builds the complete transport message for one vector. The pipeline
// order is fixed: compose the body, apply the legacy display wrapper, stamp
// the protected headers, sign, encrypt, and construct the outer envelope
// with mirrored headers. Signing always happens over the fully stamped
// serialization, and nothing mutates the payload after its signature is
// taken.
//
// Any failure aborts the vector; no partial message is ever returned.
func (w *Wrapper) Wrap(v *Vector) (message.Part, error) {
	sessionKey, err := v.Mode.Validate()
	if err != nil {
		return nil, fmt.Errorf("vector %s: %w", v.Name, err)
	}

	payload, err := composeBody(v.Mode.Body, v.Texts)
	if err != nil {
		return nil, fmt.Errorf("vector %s: %w", v.Name, err)
	}

	if v.Mode.LegacyDisplay {
		payload, err = w.legacyWrap(payload, v.Subject)
		if err != nil {
			return nil, fmt.Errorf("vector %s: %w", v.Name, err)
		}
	}

	msgid := v.MessageID(w.cfg.Domain)
	if err := w.stampProtected(payload.GetHeader(), v, msgid); err != nil {
		return nil, fmt.Errorf("vector %s: %w", v.Name, err)
	}

	// the exact bytes the cryptographic operations cover
	payloadBytes, err := render(payload)
	if err != nil {
		return nil, fmt.Errorf("vector %s: %w", v.Name, err)
	}

	engine := pgp.NewEngine(msgid)

	var outer *message.Multipart
	switch v.Mode.Protection {
	case SignedOnly:
		outer, err = w.signedEnvelope(engine, payload, payloadBytes, v, msgid)
	case SignedEncrypted:
		outer, err = w.encryptedEnvelope(engine, payloadBytes, sessionKey, true, v, msgid)
	case MultilayerSignedEncrypted:
		var signed *message.Multipart
		signed, err = w.innerSigned(engine, payload, payloadBytes, v, msgid)
		if err != nil {
			break
		}

		var signedBytes []byte
		signedBytes, err = render(signed)
		if err != nil {
			break
		}

		outer, err = w.encryptedEnvelope(engine, signedBytes, sessionKey, false, v, msgid)
	default:
		err = fmt.Errorf("unknown protection %d", int(v.Mode.Protection))
	}
	if err != nil {
		return nil, fmt.Errorf("vector %s: %w", v.Name, err)
	}

	outer.Header = *w.envelopeHeader(payload.GetHeader(), &outer.Header, v.Mode.Protection.Encrypts(), v)

	return outer, nil
}

// legacyWrap prepends a text/rfc822-headers part exposing the Subject line
// to clients unaware of the protected-headers convention, wrapping it and
// the payload in a fresh multipart/mixed container.
func (w *Wrapper) legacyWrap(payload message.Part, subject string) (message.Part, error) {
	line := fmt.Sprintf("%s: %s%s", header.Subject, subject, header.LF)

	part, err := message.NewPart([]byte(line), legacyMediaType, "us-ascii")
	if err != nil {
		return nil, err
	}

	markProtected(part.GetHeader())
	part.SetPresentation("inline")

	return message.MultipartMixed(Boundary(legacyLabel), part, payload), nil
}

// stampProtected sets the protected header fields on the payload, ahead of
// any headers the payload already carries, and tags its Content-type with
// the protected-headers marker. After this step the payload serialization is
// final: every cryptographic operation covers these exact headers.
func (w *Wrapper) stampProtected(h *header.Header, v *Vector, msgid string) error {
	from, err := w.cfg.Sender.Mailbox()
	if err != nil {
		return err
	}
	to, err := w.cfg.Recipient.Mailbox()
	if err != nil {
		return err
	}

	stamped := &header.Header{}
	stamped.SetAddressList(header.From, from)
	stamped.SetAddressList(header.To, to)
	stamped.SetDate(v.Date)
	stamped.SetSubject(v.Subject)
	stamped.SetMessageID(msgid)

	fields := stamped.ListFields()
	for i, f := range fields {
		h.InsertBeforeField(i, f.Name(), f.Body())
	}

	markProtected(h)
	return nil
}

// markProtected tags a part's Content-type with the protected-headers
// marker parameter.
func markProtected(h *header.Header) {
	ct, err := h.GetContentType()
	if err != nil {
		return
	}
	h.SetContentType(param.Modify(ct, param.Set(protectedMarker, protectedMarkerVersion)))
}

// signedEnvelope builds the multipart/signed outer structure for unencrypted
// vectors: the payload first, then a detached signature part.
func (w *Wrapper) signedEnvelope(
	engine *pgp.Engine,
	payload message.Part,
	payloadBytes []byte,
	v *Vector,
	msgid string,
) (*message.Multipart, error) {
	sig, err := engine.Sign(w.cfg.Sender, payloadBytes, v.Date)
	if err != nil {
		return nil, err
	}

	sigPart, err := message.NewPart(sig.Armored, signatureProtocol, "")
	if err != nil {
		return nil, err
	}

	return message.MultipartSigned(
		signatureProtocol, sig.Micalg(), Boundary(msgid), payload, sigPart), nil
}

// innerSigned builds the multipart/signed structure that multilayer vectors
// encrypt: the stamped payload plus a detached signature over its exact
// serialization. Its boundary derives from the Message-ID with a role
// suffix so it cannot collide with the outer boundary.
func (w *Wrapper) innerSigned(
	engine *pgp.Engine,
	payload message.Part,
	payloadBytes []byte,
	v *Vector,
	msgid string,
) (*message.Multipart, error) {
	sig, err := engine.Sign(w.cfg.Sender, payloadBytes, v.Date)
	if err != nil {
		return nil, err
	}

	sigPart, err := message.NewPart(sig.Armored, signatureProtocol, "")
	if err != nil {
		return nil, err
	}

	return message.MultipartSigned(
		signatureProtocol, sig.Micalg(), Boundary(msgid+"/signed"), payload, sigPart), nil
}

// encryptedEnvelope encrypts the given serialization and builds the
// multipart/encrypted outer structure: the fixed version-marker control part
// first, then the armored ciphertext part. When sign is true the sender's
// signature is embedded inside the encrypted container (combined
// sign+encrypt); multilayer vectors pass false because their signature is
// already part of the serialized structure.
func (w *Wrapper) encryptedEnvelope(
	engine *pgp.Engine,
	plaintext []byte,
	sessionKey []byte,
	sign bool,
	v *Vector,
	msgid string,
) (*message.Multipart, error) {
	var signer *pgp.Identity
	if sign {
		signer = w.cfg.Sender
	}

	// the session key is wrapped for the sender too, so both parties can
	// later decrypt their own correspondence
	ciphertext, err := engine.Encrypt(
		plaintext, sessionKey, signer,
		[]*pgp.Identity{w.cfg.Sender, w.cfg.Recipient}, v.Date)
	if err != nil {
		return nil, err
	}

	version, err := message.NewPart([]byte("Version: 1"+header.LF), encryptionProtocol, "")
	if err != nil {
		return nil, err
	}

	data, err := message.NewPart(ciphertext, "application/octet-stream", "")
	if err != nil {
		return nil, err
	}

	return message.MultipartEncrypted(
		encryptionProtocol, Boundary(msgid), version, data), nil
}

// envelopeHeader computes the outer transport header as a pure function of
// the payload header, the envelope header built so far, and the mode. The
// inputs are not mutated; the payload stays byte-identical to what was
// signed.
//
// Every protected header on the payload is mirrored onto the envelope
// unless its name marks content metadata or the envelope already carries
// the field. On encrypted vectors the Subject is mirrored and then
// overwritten with a placeholder so the true Subject travels only inside
// the ciphertext.
func (w *Wrapper) envelopeHeader(
	payload *header.Header,
	envelope *header.Header,
	encrypted bool,
	v *Vector,
) *header.Header {
	out := &header.Header{}
	out.Set(header.Received, w.receivedTrace(v))

	for _, f := range payload.ListFields() {
		if strings.HasPrefix(strings.ToLower(f.Name()), contentPrefix) {
			continue
		}
		if len(out.GetIndexesNamed(f.Name())) > 0 {
			continue
		}
		out.Set(f.Name(), f.Body())
	}

	if encrypted {
		out.SetSubject(subjectPlaceholder)
	}

	out.Set(header.MIMEVersion, "1.0")

	// carry over what the envelope structure itself declared, i.e. the
	// outer multipart Content-type with its protocol and boundary
	for _, f := range envelope.ListFields() {
		if len(out.GetIndexesNamed(f.Name())) > 0 {
			continue
		}
		out.Set(f.Name(), f.Body())
	}

	return out
}

// receivedTrace renders the single illustrative Received trace line every
// vector carries. It is not part of the protected set; it exists so the
// outer message looks like mail that actually transited a server.
func (w *Wrapper) receivedTrace(v *Vector) string {
	return fmt.Sprintf(
		"from localhost (localhost [127.0.0.1]) by mail.%s with ESMTPSA id %s; %s",
		w.cfg.Domain, v.Label, v.Date.Add(17*time.Second).Format(time.RFC1123Z))
}

// render serializes a part tree to its exact byte form.
func render(part message.Part) ([]byte, error) {
	buf := &bytes.Buffer{}
	if _, err := part.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
