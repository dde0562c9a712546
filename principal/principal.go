// Package principal implements the opaque caller identifiers handed out by
// identity providers, together with their textual and account forms.
package principal

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"
	"strings"

	"github.com/multiformats/go-base32"
	"golang.org/x/xerrors"
)

// MaxLength is the largest principal accepted, in bytes.
const MaxLength = 29

const (
	tagSelfAuthenticating = 0x02
	tagAnonymous          = 0x04
)

var (
	ErrTooLong       = xerrors.New("principal too long")
	ErrBadChecksum   = xerrors.New("principal checksum mismatch")
	ErrMalformed     = xerrors.New("malformed principal text")
	ErrBadSubaccount = xerrors.New("subaccount must be 32 bytes")
)

// Principal is an opaque identifier. The zero value is the management
// principal (empty byte string).
type Principal struct {
	raw string
}

// Anonymous is the principal used by unauthenticated callers.
var Anonymous = Principal{raw: string([]byte{tagAnonymous})}

func FromBytes(b []byte) (Principal, error) {
	if len(b) > MaxLength {
		return Principal{}, xerrors.Errorf("%d bytes: %w", len(b), ErrTooLong)
	}
	return Principal{raw: string(b)}, nil
}

// SelfAuthenticating derives the principal for a DER-encoded public key.
func SelfAuthenticating(derPubKey []byte) Principal {
	h := sha256.Sum224(derPubKey)
	return Principal{raw: string(append(h[:], tagSelfAuthenticating))}
}

func (p Principal) Bytes() []byte {
	return []byte(p.raw)
}

func (p Principal) IsAnonymous() bool {
	return p.raw == Anonymous.raw
}

func (p Principal) Equals(o Principal) bool {
	return p.raw == o.raw
}

// String renders the dashed, lower-case base32 form with a crc32 prefix.
func (p Principal) String() string {
	buf := make([]byte, 4, 4+len(p.raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE([]byte(p.raw)))
	buf = append(buf, p.raw...)

	enc := strings.ToLower(base32.RawStdEncoding.EncodeToString(buf))

	var sb strings.Builder
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := i + 5
		if end > len(enc) {
			end = len(enc)
		}
		sb.WriteString(enc[i:end])
	}
	return sb.String()
}

// Decode parses the textual form produced by String.
func Decode(s string) (Principal, error) {
	clean := strings.ToUpper(strings.ReplaceAll(s, "-", ""))
	b, err := base32.RawStdEncoding.DecodeString(clean)
	if err != nil {
		return Principal{}, xerrors.Errorf("%q: %w", s, ErrMalformed)
	}
	if len(b) < 4 {
		return Principal{}, xerrors.Errorf("%q: %w", s, ErrMalformed)
	}

	p, err := FromBytes(b[4:])
	if err != nil {
		return Principal{}, err
	}
	if binary.BigEndian.Uint32(b[:4]) != crc32.ChecksumIEEE(b[4:]) {
		return Principal{}, xerrors.Errorf("%q: %w", s, ErrBadChecksum)
	}
	if p.String() != strings.ToLower(s) {
		return Principal{}, xerrors.Errorf("%q is not in canonical form: %w", s, ErrMalformed)
	}
	return p, nil
}

func MustDecode(s string) Principal {
	p, err := Decode(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Principal) UnmarshalText(b []byte) error {
	d, err := Decode(string(b))
	if err != nil {
		return err
	}
	*p = d
	return nil
}

var accountDomainSeparator = []byte("\x0Aaccount-id")

// AccountIdentifier returns the hex account identifier of p for the given
// subaccount. A nil subaccount selects the default (all zero) subaccount.
func AccountIdentifier(p Principal, subaccount []byte) (string, error) {
	if subaccount == nil {
		subaccount = make([]byte, 32)
	}
	if len(subaccount) != 32 {
		return "", ErrBadSubaccount
	}

	h := sha256.New224()
	h.Write(accountDomainSeparator) //nolint:errcheck
	h.Write([]byte(p.raw))          //nolint:errcheck
	h.Write(subaccount)             //nolint:errcheck
	sum := h.Sum(nil)

	var out bytes.Buffer
	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(sum))
	out.Write(crc[:])
	out.Write(sum)
	return hex.EncodeToString(out.Bytes()), nil
}
