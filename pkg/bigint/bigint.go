// Package bigint implements fixed-width unsigned integers: U256 (256-bit
// scalars and digests), U513 (wide enough for a product like r*e+z before
// reduction modulo the secp256k1 group order), and U576 (headroom beyond a
// 512-bit product). Outside this package only U256 is used, by pkg/bitcoin
// for fixed 32-byte SEC and WIF encodings; pkg/ecc does its arithmetic,
// including signing, on *big.Int directly.
//
// Every type here wraps math/big.Int rather than hand-rolled limb
// arithmetic: math/big is the arbitrary-precision integer library the rest
// of the Go ecosystem already reaches for, and a bespoke limb
// representation would just reimplement it worse. What this package adds
// on top is the fixed-width contract: every value is kept normalized to
// [0, 2^bits), plain arithmetic wraps modulo 2^N, and modular operations
// take their modulus explicitly.
package bigint

import (
	"fmt"
	"math/big"
)

// mod2n reduces v modulo 2^bits in place.
func mod2n(v *big.Int, bits uint) {
	if v.Sign() < 0 {
		// Wrap negative values into the unsigned range, matching the
		// "all arithmetic wraps modulo 2^N" invariant.
		mod := new(big.Int).Lsh(big.NewInt(1), bits)
		v.Mod(v, mod)
		return
	}
	v.And(v, mask(bits))
}

func mask(bits uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), bits)
	m.Sub(m, big.NewInt(1))
	return m
}

func bytesToBigBE(bits uint, b []byte) (*big.Int, error) {
	if len(b)*8 > int(bits) {
		// Allow shorter byte strings (left-padded with zeros implicitly);
		// reject anything that could not possibly fit even unpadded.
		v := new(big.Int).SetBytes(b)
		if v.BitLen() > int(bits) {
			return nil, fmt.Errorf("bigint: value does not fit in %d bits", bits)
		}
		return v, nil
	}
	return new(big.Int).SetBytes(b), nil
}

func bytesToBigLE(bits uint, b []byte) (*big.Int, error) {
	rev := make([]byte, len(b))
	for i, c := range b {
		rev[len(b)-1-i] = c
	}
	return bytesToBigBE(bits, rev)
}

func bigToBytesBE(v *big.Int, bits uint) []byte {
	out := make([]byte, bits/8)
	b := v.Bytes()
	if len(b) > len(out) {
		b = b[len(b)-len(out):]
	}
	copy(out[len(out)-len(b):], b)
	return out
}

func bitAt(v *big.Int, i int) uint {
	return v.Bit(i)
}

// addMod computes (a+b) mod m.
func addMod(a, b, m *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	r.Mod(r, m)
	return r
}

// mulMod computes (a*b) mod m. big.Int has no fixed width, so the full
// product is formed before reduction and never truncates.
func mulMod(a, b, m *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	r.Mod(r, m)
	return r
}

// powMod computes b^e mod m. pow_mod(_, 0, m) = 1 mod m, matching math/big's
// own convention for a zero exponent.
func powMod(b, e, m *big.Int) *big.Int {
	if e.Sign() == 0 {
		return new(big.Int).Mod(big.NewInt(1), m)
	}
	return new(big.Int).Exp(b, e, m)
}

// invMod computes the modular inverse of a mod m via the extended
// Euclidean algorithm (math/big.Int.ModInverse). Returns ok=false if a and
// m are not coprime — in particular inv_mod(0, m) is always "not found".
func invMod(a, m *big.Int) (*big.Int, bool) {
	if a.Sign() == 0 {
		return nil, false
	}
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, false
	}
	return inv, true
}

// toBaseBE returns the most-significant-digit-first expansion of v in the
// given radix. Digits are plain byte values in [0, radix), not yet mapped
// through an alphabet.
func toBaseBE(v *big.Int, radix int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	n := new(big.Int).Set(v)
	r := big.NewInt(int64(radix))
	var digitsLE []byte
	zero := big.NewInt(0)
	mod := new(big.Int)
	for n.Cmp(zero) > 0 {
		n.DivMod(n, r, mod)
		digitsLE = append(digitsLE, byte(mod.Int64()))
	}
	out := make([]byte, len(digitsLE))
	for i, d := range digitsLE {
		out[len(digitsLE)-1-i] = d
	}
	return out
}
