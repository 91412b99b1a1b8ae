package pgp

import (
	"bytes"
	"crypto"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
)

const (
	messageType = "PGP MESSAGE"
)

var (
	// ErrCreationTime is returned by Sign when the signature the underlying
	// library produced does not claim exactly the requested creation time.
	// The reference artifacts require the signature creation time and the
	// Date header to match bit for bit, so a divergence is fatal.
	ErrCreationTime = errors.New("signature creation time does not match requested time")

	// ErrNoSigningKey is returned when an identity has no usable signing
	// key at the requested time.
	ErrNoSigningKey = errors.New("identity has no usable signing key")

	// ErrNoEncryptionKey is returned when an identity has no usable
	// encryption key at the requested time.
	ErrNoEncryptionKey = errors.New("identity has no usable encryption key")

	// ErrBadSessionKey is returned by Encrypt when the supplied session key
	// is not a valid AES-256 key.
	ErrBadSessionKey = errors.New("session key must be 32 bytes")
)

// micalgs maps hash functions to the micalg parameter names of RFC 3156.
var micalgs = map[crypto.Hash]string{
	crypto.MD5:       "pgp-md5",
	crypto.SHA1:      "pgp-sha1",
	crypto.RIPEMD160: "pgp-ripemd160",
	crypto.SHA224:    "pgp-sha224",
	crypto.SHA256:    "pgp-sha256",
	crypto.SHA384:    "pgp-sha384",
	crypto.SHA512:    "pgp-sha512",
}

// Signature is a detached signature over an exact byte serialization.
type Signature struct {
	// Armored is the ASCII-armored detached signature.
	Armored []byte

	// Hash is the hash function the signature actually used, as read back
	// out of the produced signature packet.
	Hash crypto.Hash
}

// Micalg returns the RFC 3156 micalg parameter value for the hash the
// signature used.
func (s *Signature) Micalg() string {
	return micalgs[s.Hash]
}

// Engine performs the OpenPGP operations of the vector pipeline. An Engine is
// bound to a seed label; all nondeterministic inputs of its operations are
// derived from that seed, so the same Engine configuration always produces
// the same bytes.
type Engine struct {
	seed string
	hash crypto.Hash
}

// NewEngine creates an Engine seeded by the given label. The label should be
// unique per vector (the Message-ID serves well).
func NewEngine(seed string) *Engine {
	return &Engine{
		seed: seed,
		hash: crypto.SHA256,
	}
}

// config assembles the packet configuration for one operation. The operation
// name keeps the deterministic random streams of distinct operations within
// one vector from overlapping.
func (e *Engine) config(when time.Time, op string) *packet.Config {
	return &packet.Config{
		DefaultHash:   e.hash,
		DefaultCipher: packet.CipherAES256,
		Time:          func() time.Time { return when },
		Rand:          newStream(e.seed + "/" + op),
	}
}

// Sign computes an armored detached signature over the exact bytes of
// message, claiming the given creation time.
//
// The produced signature is parsed back and its claimed creation time is
// checked against the requested one; a mismatch fails with ErrCreationTime
// rather than emitting a non-conformant artifact.
func (e *Engine) Sign(signer *Identity, message []byte, when time.Time) (*Signature, error) {
	if _, err := signer.signingKey(); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	err := openpgp.ArmoredDetachSign(buf, signer.entity, bytes.NewReader(message), e.config(when, "sign"))
	if err != nil {
		return nil, fmt.Errorf("detached signing failed: %w", err)
	}

	hash, created, err := inspectSignature(buf.Bytes())
	if err != nil {
		return nil, err
	}
	if !created.Equal(when) {
		return nil, fmt.Errorf("%w: claimed %v, requested %v", ErrCreationTime, created, when)
	}

	return &Signature{
		Armored: buf.Bytes(),
		Hash:    hash,
	}, nil
}

// inspectSignature reads the first packet of an armored signature block and
// reports the hash function and creation time it claims.
func inspectSignature(armored []byte) (crypto.Hash, time.Time, error) {
	block, err := armor.Decode(bytes.NewReader(armored))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("reading back signature armor: %w", err)
	}

	p, err := packet.Read(block.Body)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("reading back signature packet: %w", err)
	}

	sig, ok := p.(*packet.Signature)
	if !ok {
		return 0, time.Time{}, errors.New("armored block does not hold a v4 signature packet")
	}

	return sig.Hash, sig.CreationTime, nil
}

// Encrypt encrypts payload under the supplied AES-256 session key and wraps
// the session key for every one of the given recipient identities, so any of
// them can later decrypt. The result is a single armored OpenPGP message.
//
// When signer is non-nil, a one-pass detached signature over the payload is
// embedded inside the encrypted container together with the payload itself
// (combined sign+encrypt). When signer is nil the payload is assumed to carry
// any signature it needs already (as in the multilayer structure) and only a
// literal data packet is encrypted.
func (e *Engine) Encrypt(
	payload []byte,
	sessionKey []byte,
	signer *Identity,
	recipients []*Identity,
	when time.Time,
) ([]byte, error) {
	if len(sessionKey) != 32 {
		return nil, ErrBadSessionKey
	}

	config := e.config(when, "encrypt")

	buf := &bytes.Buffer{}
	aw, err := armor.Encode(buf, messageType, nil)
	if err != nil {
		return nil, err
	}

	for _, r := range recipients {
		pub, err := r.encryptionKey()
		if err != nil {
			return nil, err
		}

		err = serializeEncryptedKey(aw, pub, packet.CipherAES256, sessionKey, config.Random())
		if err != nil {
			return nil, fmt.Errorf("wrapping session key for %s: %w", r.address, err)
		}
	}

	ew, err := packet.SerializeSymmetricallyEncrypted(aw, packet.CipherAES256, sessionKey, config)
	if err != nil {
		return nil, fmt.Errorf("starting encrypted container: %w", err)
	}

	var signKey *packet.PrivateKey
	if signer != nil {
		signKey, err = signer.signingKey()
		if err != nil {
			return nil, err
		}

		ops := &packet.OnePassSignature{
			SigType:    packet.SigTypeBinary,
			Hash:       config.Hash(),
			PubKeyAlgo: signKey.PubKeyAlgo,
			KeyId:      signKey.KeyId,
			IsLast:     true,
		}
		if err := ops.Serialize(ew); err != nil {
			return nil, fmt.Errorf("writing one-pass signature: %w", err)
		}
	}

	if err := writeLiteral(ew, payload, when); err != nil {
		return nil, err
	}

	if signer != nil {
		sig := &packet.Signature{
			SigType:      packet.SigTypeBinary,
			PubKeyAlgo:   signKey.PubKeyAlgo,
			Hash:         config.Hash(),
			CreationTime: when,
			IssuerKeyId:  &signKey.KeyId,
		}

		h := config.Hash().New()
		h.Write(payload)
		if err := sig.Sign(h, signKey, config); err != nil {
			return nil, fmt.Errorf("embedded signing failed: %w", err)
		}
		if !sig.CreationTime.Equal(when) {
			return nil, fmt.Errorf("%w: claimed %v, requested %v", ErrCreationTime, sig.CreationTime, when)
		}

		if err := sig.Serialize(ew); err != nil {
			return nil, fmt.Errorf("writing embedded signature: %w", err)
		}
	}

	if err := ew.Close(); err != nil {
		return nil, fmt.Errorf("closing encrypted container: %w", err)
	}
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("closing armor: %w", err)
	}

	return buf.Bytes(), nil
}

// nopCloser hides the Close method of the writer a literal packet is
// serialized onto. The writer SerializeLiteral returns closes its underlying
// writer on Close, which would end the encrypted container before the
// embedded signature packet is written.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// writeLiteral wraps payload in a literal data packet on w.
func writeLiteral(w io.Writer, payload []byte, when time.Time) error {
	lw, err := packet.SerializeLiteral(nopCloser{w}, true, "", uint32(when.Unix()))
	if err != nil {
		return fmt.Errorf("starting literal data packet: %w", err)
	}
	if _, err := lw.Write(payload); err != nil {
		return fmt.Errorf("writing literal data: %w", err)
	}
	if err := lw.Close(); err != nil {
		return fmt.Errorf("closing literal data packet: %w", err)
	}
	return nil
}

// Decrypt opens an armored message produced by Encrypt using the private keys
// of the given identities. It returns the decrypted literal payload along
// with the message details, which report any embedded signature and its
// verification result. Intended for verification and tests, not for mail
// handling.
func Decrypt(armored []byte, identities ...*Identity) ([]byte, *openpgp.MessageDetails, error) {
	block, err := armor.Decode(bytes.NewReader(armored))
	if err != nil {
		return nil, nil, fmt.Errorf("reading message armor: %w", err)
	}
	if block.Type != messageType {
		return nil, nil, fmt.Errorf("unexpected armor type %q", block.Type)
	}

	keyring := make(openpgp.EntityList, len(identities))
	for i, id := range identities {
		keyring[i] = id.entity
	}

	md, err := openpgp.ReadMessage(block.Body, keyring, nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("reading message: %w", err)
	}

	// signature checks on md are only valid once the body has been drained
	body, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, nil, fmt.Errorf("reading message body: %w", err)
	}

	return body, md, nil
}

// VerifyDetached checks an armored detached signature over the given signed
// bytes against the signer's key.
func VerifyDetached(signed, armoredSig []byte, signer *Identity) error {
	keyring := openpgp.EntityList{signer.entity}
	_, err := openpgp.CheckArmoredDetachedSignature(
		keyring, bytes.NewReader(signed), bytes.NewReader(armoredSig))
	return err
}
