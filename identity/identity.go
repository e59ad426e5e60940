// Package identity implements the 64-bit content-addressed identifiers that
// every substrate, relationship, and SRL in the dimensional computation core
// is keyed by.
package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"strconv"
	"strings"

	"github.com/r3e-network/substrate-core/kernelerr"
)

// Mask is applied after every arithmetic combination so results never carry
// bits above bit 63, per spec §4.1 ("every arithmetic result is masked with
// 0xFFFFFFFFFFFFFFFF"). On a native uint64 this is a no-op; it is kept
// explicit because it documents exactly where promotion/overflow boundaries
// live, and because big.Int-sourced values (FromBigInt) do need the mask.
const Mask = ^uint64(0)

// Identity is an immutable, unsigned 64-bit content-addressed value.
type Identity struct {
	v uint64
}

// Zero is the identity with value 0. It is a valid identity, not a sentinel
// for "absent" — callers that need "no identity" should use a pointer or a
// separate bool.
var Zero = Identity{}

// FromUint64 always succeeds: every uint64 is in range.
func FromUint64(v uint64) Identity {
	return Identity{v: v & Mask}
}

// FromInt rejects negative values, since a source type that can go negative
// is "wider" than Identity's domain per spec §4.1.
func FromInt(v int64) (Identity, error) {
	if v < 0 {
		return Identity{}, kernelerr.IdentityOutOfRange(strconv.FormatInt(v, 10))
	}
	return Identity{v: uint64(v)}, nil
}

// FromBigInt rejects values outside [0, 2^64).
func FromBigInt(v *big.Int) (Identity, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > 64 {
		s := "<nil>"
		if v != nil {
			s = v.String()
		}
		return Identity{}, kernelerr.IdentityOutOfRange(s)
	}
	return Identity{v: v.Uint64()}, nil
}

// Value returns the underlying uint64.
func (id Identity) Value() uint64 { return id.v }

// Equal reports bitwise equality.
func (id Identity) Equal(other Identity) bool { return id.v == other.v }

// String renders the identity as "0x"-prefixed lower-case hex without
// leading-zero padding, for logging and diagnostics. The package has no
// parsing counterpart; the form exists for human/log consumption.
func (id Identity) String() string {
	return "0x" + strconv.FormatUint(id.v, 16)
}

// Less gives a stable (not semantically meaningful) ordering, used only to
// make indexed structures deterministic to iterate for tests and diagnostics.
func (id Identity) Less(other Identity) bool { return id.v < other.v }

// Canonicalize normalizes expression source text so that textually distinct
// but semantically identical sources hash to the same identity, satisfying
// the non-duplication property (spec §8 property 1): trims surrounding
// whitespace, collapses internal whitespace runs to a single space, and
// lower-cases ASCII letters (the expression mini-language's keywords are
// case-insensitive by construction; string literals inside the source are
// therefore expected to avoid relying on case).
func Canonicalize(source string) string {
	fields := strings.Fields(source)
	return strings.ToLower(strings.Join(fields, " "))
}

// DeriveFromSource produces the content-addressed identity for an
// expression's canonical source text. SHA-256 is stdlib rather than a
// third-party hash because no library in the example corpus offers a
// "stable content hash" primitive that stdlib doesn't already provide more
// directly (see DESIGN.md).
func DeriveFromSource(source string) Identity {
	sum := sha256.Sum256([]byte(Canonicalize(source)))
	return FromUint64(binary.BigEndian.Uint64(sum[len(sum)-8:]))
}

// FromBytes derives an identity directly from raw bytes via SHA-256,
// without the text canonicalization DeriveFromSource applies — used where
// the input is not source text, e.g. spec §4.6's SRL spawn rule
// ("typically hash(bytes) & 0xFFFF...FFFF").
func FromBytes(data []byte) Identity {
	sum := sha256.Sum256(data)
	return FromUint64(binary.BigEndian.Uint64(sum[len(sum)-8:]))
}

// Combine packs a 16-bit kind tag, a 24-bit namespace hash, and a 24-bit
// path hash into one Identity, per the SRL identity encoding in spec §6.
func Combine(kind uint16, namespace uint32, path uint32) Identity {
	v := uint64(kind)<<48 | uint64(namespace&0xFFFFFF)<<24 | uint64(path&0xFFFFFF)
	return FromUint64(v)
}
