package pgp

import (
	"bytes"
	"crypto/rsa"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/openpgp/packet"
)

// serializeEncryptedKey writes a version 3 public-key encrypted session key
// packet (RFC 4880, section 5.1) wrapping sessionKey for the given RSA
// public key.
//
// The stock packet.SerializeEncryptedKey pads through rsa.EncryptPKCS1v15,
// which consumes an unpredictable number of bytes from its random source
// (randutil.MaybeReadByte reads one byte or none per call), so its output is
// not a pure function of the supplied stream. The padding here is drawn
// directly from the stream instead, keeping the packet byte-stable run over
// run.
func serializeEncryptedKey(
	w io.Writer,
	pub *packet.PublicKey,
	cipherFunc packet.CipherFunction,
	sessionKey []byte,
	random io.Reader,
) error {
	rsaPub, ok := pub.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("cannot wrap session key: unsupported public key algorithm %d", pub.PubKeyAlgo)
	}

	// algorithm octet, session key, two octet checksum
	m := make([]byte, 0, len(sessionKey)+3)
	m = append(m, byte(cipherFunc))
	m = append(m, sessionKey...)
	var sum uint16
	for _, b := range sessionKey {
		sum += uint16(b)
	}
	m = append(m, byte(sum>>8), byte(sum))

	c, err := encryptSessionKey(random, rsaPub, m)
	if err != nil {
		return err
	}

	body := &bytes.Buffer{}
	body.WriteByte(3) // packet version
	_ = binary.Write(body, binary.BigEndian, pub.KeyId)
	body.WriteByte(byte(pub.PubKeyAlgo))
	writeMPI(body, c)

	if err := writePacketHeader(w, 1, body.Len()); err != nil {
		return err
	}

	_, err = w.Write(body.Bytes())
	return err
}

// encryptSessionKey performs EME-PKCS1-v1_5 encryption (RFC 8017, section
// 7.2.1) of m under pub, with the nonzero padding bytes taken from the given
// stream. Zero bytes in the stream are skipped, so the padding is still a
// pure function of the stream contents.
func encryptSessionKey(random io.Reader, pub *rsa.PublicKey, m []byte) (*big.Int, error) {
	k := (pub.N.BitLen() + 7) / 8
	if len(m) > k-11 {
		return nil, fmt.Errorf("session key block is too long for a %d byte modulus", k)
	}

	em := make([]byte, k)
	em[1] = 2
	ps := em[2 : k-len(m)-1]
	for i := range ps {
		var b [1]byte
		for b[0] == 0 {
			if _, err := io.ReadFull(random, b[:]); err != nil {
				return nil, fmt.Errorf("reading padding bytes: %w", err)
			}
		}
		ps[i] = b[0]
	}
	copy(em[k-len(m):], m)

	c := new(big.Int).SetBytes(em)
	return c.Exp(c, big.NewInt(int64(pub.E)), pub.N), nil
}

// writeMPI appends an OpenPGP multiprecision integer (RFC 4880, section
// 3.2): a two octet bit count followed by the big-endian value.
func writeMPI(b *bytes.Buffer, n *big.Int) {
	bitLen := n.BitLen()
	b.WriteByte(byte(bitLen >> 8))
	b.WriteByte(byte(bitLen))
	b.Write(n.Bytes())
}

// writePacketHeader writes a new format packet header (RFC 4880, section
// 4.2.2) for the given tag and body length.
func writePacketHeader(w io.Writer, tag uint8, length int) error {
	var h []byte
	switch {
	case length < 192:
		h = []byte{0xc0 | tag, byte(length)}
	case length < 8384:
		n := length - 192
		h = []byte{0xc0 | tag, byte(n>>8) + 192, byte(n)}
	default:
		h = []byte{0xc0 | tag, 0xff,
			byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length)}
	}

	_, err := w.Write(h)
	return err
}
