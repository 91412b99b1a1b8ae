package vector

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

// ErrUnknownVector is returned when a vector name is not in the registry.
var ErrUnknownVector = errors.New("unknown vector")

// Vector describes one named reference message: its protection mode together
// with every fixed input needed to rebuild the same bytes on every run.
type Vector struct {
	// Name is the registry key and the CLI subcommand name.
	Name string

	// Label is the local part of the Message-ID and the seed of the outer
	// boundary derivation.
	Label string

	// Summary is a one line description for the command listing.
	Summary string

	// Mode selects the protection pipeline branches.
	Mode Mode

	// Date is the fixed timestamp stamped as the Date header and claimed as
	// the signature creation time.
	Date time.Time

	// Subject is the protected Subject line.
	Subject string

	// Texts holds the fixed body content.
	Texts Texts
}

// MessageID renders the vector's Message-ID under the given domain.
func (v *Vector) MessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", v.Label, domain)
}

// baseTime is the common fixed timestamp of the reference vectors. Each
// vector offsets it by a fixed number of days so the artifacts read as
// distinct correspondence rather than a burst of simultaneous mail.
const baseTime = 1571577491

func at(days int) time.Time {
	return time.Unix(baseTime+int64(days)*86400, 0).UTC()
}

var fooCorpTexts = Texts{
	Plain: `Hi Bob!

I've attached the FooCorp contract. Please sign and return it at your
earliest convenience so we can get the ball rolling.

Thanks!

 - Alice
`,
}

var barCorpTexts = Texts{
	Plain: `Hi Bob!

Great news: BarCorp signed! The countersigned copy is on its way back to
you by courier.

Celebratory drinks are on me.

 - Alice
`,
}

var quotedTexts = Texts{
	Plain: `Hi Bob!

The updated quote is attached as a patch against the draft we reviewed on
Tuesday. The only substantive change is the delivery window in section 4.

 - Alice
`,
	HTML: `<html><body><p>Hi Bob!</p>

<p>The updated quote is attached as a patch against the draft we reviewed
on Tuesday. The only substantive change is the delivery window in
section&nbsp;4.</p>

<p> - Alice</p></body></html>
`,
	Revised: `Hi Bob!

The updated quote is attached as a patch against the draft we reviewed on
Tuesday. The only substantive change is the delivery window in section 4,
which now reads thirty days instead of sixty.

 - Alice
`,
	AttachmentName: "quote-revision.diff",
}

// vectors is the fixed registry. Session keys are arbitrary but frozen:
// changing one changes the emitted ciphertext of that vector forever.
var vectors = []*Vector{
	{
		Name:    "signed",
		Label:   "signed-only",
		Summary: "cleartext message with a detached signature",
		Mode:    Mode{Protection: SignedOnly},
		Date:    at(0),
		Subject: "The FooCorp contract",
		Texts:   fooCorpTexts,
	},
	{
		Name:    "signed+encrypted",
		Label:   "signed-encrypted",
		Summary: "combined sign+encrypt inside one OpenPGP container",
		Mode: Mode{
			Protection:    SignedEncrypted,
			SessionKeyHex: "966956a9c6c2a55a5e01eaceadc075cc6121e5377be8f48794228f67dba7d49b",
		},
		Date:    at(1),
		Subject: "BarCorp contract signed, let's go!",
		Texts:   barCorpTexts,
	},
	{
		Name:    "multilayer",
		Label:   "multilayer",
		Summary: "multipart/signed structure wrapped in encryption",
		Mode: Mode{
			Protection:    MultilayerSignedEncrypted,
			SessionKeyHex: "0638c4c7ec9960ae88c4348e1c945b45597b39d3ab9a294b57300c863b9f6602",
		},
		Date:    at(2),
		Subject: "BarCorp contract signed, let's go!",
		Texts:   barCorpTexts,
	},
	{
		Name:    "legacy-display",
		Label:   "legacy-display",
		Summary: "encrypted message with a legacy display wrapper",
		Mode: Mode{
			Protection:    SignedEncrypted,
			LegacyDisplay: true,
			SessionKeyHex: "c46420d8f0a880f25501a2d3507aa56b31319ea90f7f4619acea3beac81fcaef",
		},
		Date:    at(3),
		Subject: "BarCorp contract signed, let's go!",
		Texts:   barCorpTexts,
	},
	{
		Name:    "multipart",
		Label:   "multipart-body",
		Summary: "encrypted message with a multipart body and attachment",
		Mode: Mode{
			Protection:    SignedEncrypted,
			Body:          MultipartBody,
			SessionKeyHex: "7e9df9bb1a20cf87e36680240af1d19f172d228eeb31ff23900b56e64908e40d",
		},
		Date:    at(4),
		Subject: "Revised quote for the BazCorp build-out",
		Texts:   quotedTexts,
	},
	{
		Name:    "multilayer+legacy",
		Label:   "multilayer-legacy",
		Summary: "multilayer encryption with a legacy display wrapper",
		Mode: Mode{
			Protection:    MultilayerSignedEncrypted,
			LegacyDisplay: true,
			SessionKeyHex: "f3551970da3a1ee10170f77106997425f38e2d5911e40ad3a3506754866b7eeb",
		},
		Date:    at(5),
		Subject: "BarCorp contract signed, let's go!",
		Texts:   barCorpTexts,
	},
}

// All returns the registered vectors ordered by name.
func All() []*Vector {
	out := make([]*Vector, len(vectors))
	copy(out, vectors)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a vector by name.
func Lookup(name string) (*Vector, error) {
	for _, v := range vectors {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVector, name)
}

// Generate builds the named vector under the given configuration and
// returns its exact serialization.
func Generate(cfg Config, name string) ([]byte, error) {
	v, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	msg, err := NewWrapper(cfg).Wrap(v)
	if err != nil {
		return nil, err
	}

	return render(msg)
}

// Render generates the named vector and writes it to w with no trailing
// framing.
func Render(cfg Config, name string, w io.Writer) error {
	bs, err := Generate(cfg, name)
	if err != nil {
		return err
	}

	_, err = w.Write(bs)
	return err
}

// ensure the registry satisfies its own invariants at init time rather than
// on first use
func init() {
	seen := map[string]bool{}
	for _, v := range vectors {
		if seen[v.Name] || seen[v.Label] {
			panic(fmt.Sprintf("duplicate vector registration: %s", v.Name))
		}
		seen[v.Name] = true
		seen[v.Label] = true
		if _, err := v.Mode.Validate(); err != nil {
			panic(fmt.Sprintf("vector %s: %v", v.Name, err))
		}
	}
}
