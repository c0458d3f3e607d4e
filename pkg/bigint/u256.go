package bigint

import "math/big"

// U256Bits is the bit width of U256.
const U256Bits = 256

// U256 is an unsigned integer in [0, 2^256). Elsewhere in this module it
// gives secret scalars and SEC coordinates their fixed 32-byte encoding.
type U256 struct {
	v big.Int
}

// Zero256 is the additive identity.
var Zero256 = U256{}

// NewU256FromBigInt normalizes an arbitrary big.Int into U256 range,
// wrapping modulo 2^256 (never erroring) per the "all arithmetic wraps"
// invariant.
func NewU256FromBigInt(v *big.Int) U256 {
	out := new(big.Int).Set(v)
	mod2n(out, U256Bits)
	return U256{v: *out}
}

// NewU256FromUint64 builds a U256 from a machine word.
func NewU256FromUint64(v uint64) U256 {
	return NewU256FromBigInt(new(big.Int).SetUint64(v))
}

// NewU256FromBytesBE parses a big-endian byte string (at most 32 bytes).
func NewU256FromBytesBE(b []byte) (U256, error) {
	v, err := bytesToBigBE(U256Bits, b)
	if err != nil {
		return U256{}, err
	}
	return U256{v: *v}, nil
}

// NewU256FromBytesLE parses a little-endian byte string (at most 32 bytes).
func NewU256FromBytesLE(b []byte) (U256, error) {
	v, err := bytesToBigLE(U256Bits, b)
	if err != nil {
		return U256{}, err
	}
	return U256{v: *v}, nil
}

// BytesBE returns the canonical 32-byte big-endian encoding.
func (u U256) BytesBE() []byte { return bigToBytesBE(&u.v, U256Bits) }

// BigInt returns a copy of the underlying value as a *big.Int.
func (u U256) BigInt() *big.Int { return new(big.Int).Set(&u.v) }

// Bit returns bit i (0 = least significant).
func (u U256) Bit(i int) uint { return bitAt(&u.v, i) }

// IsZero reports whether the value is zero.
func (u U256) IsZero() bool { return u.v.Sign() == 0 }

// Cmp compares two U256 values the way big.Int.Cmp does.
func (u U256) Cmp(o U256) int { return u.v.Cmp(&o.v) }

// Add returns (u+o) mod 2^256.
func (u U256) Add(o U256) U256 {
	r := new(big.Int).Add(&u.v, &o.v)
	mod2n(r, U256Bits)
	return U256{v: *r}
}

// Sub returns (u-o) mod 2^256.
func (u U256) Sub(o U256) U256 {
	r := new(big.Int).Sub(&u.v, &o.v)
	mod2n(r, U256Bits)
	return U256{v: *r}
}

// AddMod returns (u+o) mod m.
func (u U256) AddMod(o, m U256) U256 { return U256{v: *addMod(&u.v, &o.v, &m.v)} }

// MulMod returns (u*o) mod m, computed via a widened big.Int product so the
// 256x256-bit multiply never truncates.
func (u U256) MulMod(o, m U256) U256 { return U256{v: *mulMod(&u.v, &o.v, &m.v)} }

// PowMod returns u^e mod m.
func (u U256) PowMod(e, m U256) U256 { return U256{v: *powMod(&u.v, &e.v, &m.v)} }

// InvMod returns the modular inverse of u mod m, or ok=false if u and m are
// not coprime (in particular, inv of zero never succeeds).
func (u U256) InvMod(m U256) (U256, bool) {
	inv, ok := invMod(&u.v, &m.v)
	if !ok {
		return U256{}, false
	}
	return U256{v: *inv}, true
}

// ToBaseBE returns the most-significant-digit-first expansion of u in the
// given radix.
func (u U256) ToBaseBE(radix int) []byte { return toBaseBE(&u.v, radix) }

// Mod reduces u modulo m (m need not be 2^256; e.g. folding a hash digest
// into a scalar's range).
func (u U256) Mod(m U256) U256 {
	r := new(big.Int).Mod(&u.v, &m.v)
	return U256{v: *r}
}
