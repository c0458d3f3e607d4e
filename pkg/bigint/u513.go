package bigint

import "math/big"

// U513Bits is the bit width of U513: wide enough to hold the product of two
// 256-bit numbers plus a 256-bit addend without truncation (r*e + z, in
// ECDSA signing, before reduction modulo the group order n).
const U513Bits = 513

// U513 is an unsigned integer in [0, 2^513).
type U513 struct {
	v big.Int
}

// NewU513FromBigInt normalizes an arbitrary big.Int into U513 range.
func NewU513FromBigInt(v *big.Int) U513 {
	out := new(big.Int).Set(v)
	mod2n(out, U513Bits)
	return U513{v: *out}
}

// MulU256 computes a*b where a and b are U256 values, returning a U513 wide
// enough to hold the full 512-bit product.
func MulU256(a, b U256) U513 {
	r := new(big.Int).Mul(&a.v, &b.v)
	return U513{v: *r}
}

// AddU256 widens o into U513 range and adds it to u.
func (u U513) AddU256(o U256) U513 {
	r := new(big.Int).Add(&u.v, &o.v)
	mod2n(r, U513Bits)
	return U513{v: *r}
}

// Mod reduces u modulo m, returning the result as a U256 (the typical use:
// folding r*e+z down to a scalar mod n).
func (u U513) Mod(m U256) U256 {
	r := new(big.Int).Mod(&u.v, &m.v)
	return U256{v: *r}
}

// BigInt returns a copy of the underlying value.
func (u U513) BigInt() *big.Int { return new(big.Int).Set(&u.v) }
