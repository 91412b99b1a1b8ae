package pgp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zostay/go-addr/pkg/addr"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/packet"
)

var (
	// ErrBadKeyRing is returned by NewIdentity when the armored input does
	// not contain exactly one transferable key.
	ErrBadKeyRing = errors.New("identity key material must contain exactly one key")
)

// Identity is one of the fixed personas a vector is built around: a display
// name, an email address, and the OpenPGP key that gives it signing and
// encryption capability. Identities are immutable once constructed.
type Identity struct {
	name    string
	address string
	entity  *openpgp.Entity
}

// NewIdentity parses the given armored private key and binds it to a display
// name and address.
func NewIdentity(name, address, armoredKey string) (*Identity, error) {
	el, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return nil, fmt.Errorf("reading key for %s: %w", address, err)
	}
	if len(el) != 1 {
		return nil, ErrBadKeyRing
	}

	return &Identity{
		name:    name,
		address: address,
		entity:  el[0],
	}, nil
}

// Name returns the display name of the identity.
func (id *Identity) Name() string {
	return id.name
}

// Address returns the email address of the identity.
func (id *Identity) Address() string {
	return id.address
}

// Mailbox returns the identity as an address suitable for use in a From or To
// header.
func (id *Identity) Mailbox() (addr.Address, error) {
	mb, err := addr.ParseEmailMailbox(fmt.Sprintf("%s <%s>", id.name, id.address))
	if err != nil {
		return nil, err
	}
	return mb, nil
}

// Entity returns the parsed OpenPGP key.
func (id *Identity) Entity() *openpgp.Entity {
	return id.entity
}

// signingKey returns the private key the identity signs with: a sign-capable
// subkey when one exists, otherwise the primary key.
func (id *Identity) signingKey() (*packet.PrivateKey, error) {
	for _, sk := range id.entity.Subkeys {
		if sk.PrivateKey != nil && sk.PrivateKey.PubKeyAlgo.CanSign() &&
			sk.Sig != nil && sk.Sig.FlagsValid && sk.Sig.FlagSign {
			return sk.PrivateKey, nil
		}
	}

	if pk := id.entity.PrivateKey; pk != nil && pk.PubKeyAlgo.CanSign() {
		return pk, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoSigningKey, id.address)
}

// encryptionKey returns the public key session keys are wrapped for: an
// encryption-capable subkey when one exists, otherwise the primary key.
func (id *Identity) encryptionKey() (*packet.PublicKey, error) {
	for _, sk := range id.entity.Subkeys {
		if sk.PublicKey != nil && sk.PublicKey.PubKeyAlgo.CanEncrypt() {
			return sk.PublicKey, nil
		}
	}

	if pk := id.entity.PrimaryKey; pk != nil && pk.PubKeyAlgo.CanEncrypt() {
		return pk, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoEncryptionKey, id.address)
}
