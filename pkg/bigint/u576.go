package bigint

import "math/big"

// U576Bits is the bit width of U576, providing headroom beyond a 512-bit
// product for the rare intermediate computation that needs a few extra
// bits of slack (e.g. accumulating a compact-target mantissa shift, or
// chained modular reductions during RFC 6979 bookkeeping).
const U576Bits = 576

// U576 is an unsigned integer in [0, 2^576).
type U576 struct {
	v big.Int
}

// NewU576FromBigInt normalizes an arbitrary big.Int into U576 range.
func NewU576FromBigInt(v *big.Int) U576 {
	out := new(big.Int).Set(v)
	mod2n(out, U576Bits)
	return U576{v: *out}
}

// BigInt returns a copy of the underlying value.
func (u U576) BigInt() *big.Int { return new(big.Int).Set(&u.v) }

// Mod reduces u modulo m, returning the result as a U256.
func (u U576) Mod(m U256) U256 {
	r := new(big.Int).Mod(&u.v, &m.v)
	return U256{v: *r}
}
