// Package ecc implements finite-field and elliptic-curve arithmetic,
// ECDSA over secp256k1 (sign, verify, recover), RFC 6979 deterministic
// nonces, and Tonelli–Shanks modular square roots.
//
// The field and point types wrap *big.Int directly. bigint.U256 is used at
// the Bitcoin-wire boundary (pkg/bitcoin) where a fixed-width contract
// matters, but the arithmetic core here stays on *big.Int so intermediate
// products never need manual widening.
package ecc

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNonInvertible is returned when dividing by, or inverting, a field
// element that shares a nontrivial factor with the modulus (zero, for a
// prime modulus).
var ErrNonInvertible = errors.New("ecc: element has no multiplicative inverse")

// ErrModulusMismatch is returned when an operation combines two field
// elements (or curve points) defined over different moduli.
var ErrModulusMismatch = errors.New("ecc: operands belong to different fields")

// ErrUnsupportedModulus is returned by Sqrt/IsQuadraticResidue when the
// field's prime does not satisfy p ≡ 3 (mod 4), the only case this module
// implements (it is the case secp256k1 falls into).
var ErrUnsupportedModulus = errors.New("ecc: modulus does not satisfy p = 3 mod 4")

// FieldElement is a value in Z/pZ: 0 <= Value < P.
type FieldElement struct {
	Value *big.Int
	P     *big.Int
}

// NewFieldElement builds a field element, reducing value into [0, p).
// Panics if p is not positive — a programmer error, never a runtime input.
func NewFieldElement(value, p *big.Int) FieldElement {
	if p.Sign() <= 0 {
		panic("ecc: field modulus must be positive")
	}
	v := new(big.Int).Mod(value, p)
	return FieldElement{Value: v, P: p}
}

// NewFieldElementInt64 is a convenience constructor for small literals,
// used heavily by tests exercising small fields like F_31 and F_223.
func NewFieldElementInt64(value, p int64) FieldElement {
	return NewFieldElement(big.NewInt(value), big.NewInt(p))
}

func (e FieldElement) String() string {
	return fmt.Sprintf("FieldElement_%s(%s)", e.P.String(), e.Value.String())
}

// Equal reports whether two elements have the same value and modulus.
func (e FieldElement) Equal(o FieldElement) bool {
	return e.P.Cmp(o.P) == 0 && e.Value.Cmp(o.Value) == 0
}

func (e FieldElement) sameField(o FieldElement) error {
	if e.P.Cmp(o.P) != 0 {
		return ErrModulusMismatch
	}
	return nil
}

// Add returns e+o mod p.
func (e FieldElement) Add(o FieldElement) (FieldElement, error) {
	if err := e.sameField(o); err != nil {
		return FieldElement{}, err
	}
	return NewFieldElement(new(big.Int).Add(e.Value, o.Value), e.P), nil
}

// Neg returns the additive inverse p - value (0 when value is 0).
func (e FieldElement) Neg() FieldElement {
	if e.Value.Sign() == 0 {
		return e
	}
	return NewFieldElement(new(big.Int).Sub(e.P, e.Value), e.P)
}

// Sub returns e-o mod p, implemented as e + (-o).
func (e FieldElement) Sub(o FieldElement) (FieldElement, error) {
	if err := e.sameField(o); err != nil {
		return FieldElement{}, err
	}
	return e.Add(o.Neg())
}

// Mul returns e*o mod p.
func (e FieldElement) Mul(o FieldElement) (FieldElement, error) {
	if err := e.sameField(o); err != nil {
		return FieldElement{}, err
	}
	return NewFieldElement(new(big.Int).Mul(e.Value, o.Value), e.P), nil
}

// Inv returns the multiplicative inverse of e, computed with the extended
// Euclidean algorithm via big.Int.ModInverse (so composite moduli work too,
// for elements coprime to them).
func (e FieldElement) Inv() (FieldElement, error) {
	if e.Value.Sign() == 0 {
		return FieldElement{}, ErrNonInvertible
	}
	inv := new(big.Int).ModInverse(e.Value, e.P)
	if inv == nil {
		return FieldElement{}, ErrNonInvertible
	}
	return FieldElement{Value: inv, P: e.P}, nil
}

// Div returns e/o, i.e. e * o^-1.
func (e FieldElement) Div(o FieldElement) (FieldElement, error) {
	if err := e.sameField(o); err != nil {
		return FieldElement{}, err
	}
	inv, err := o.Inv()
	if err != nil {
		return FieldElement{}, err
	}
	return e.Mul(inv)
}

// Pow raises e to a signed exponent. A negative exponent inverts e first,
// then raises the inverse to the absolute value of the exponent, which
// also sidesteps big.Int.Exp's refusal to accept a negative exponent
// directly.
func (e FieldElement) Pow(exp *big.Int) (FieldElement, error) {
	base := e
	n := exp
	if exp.Sign() < 0 {
		inv, err := e.Inv()
		if err != nil {
			return FieldElement{}, err
		}
		base = inv
		n = new(big.Int).Neg(exp)
	}
	// Exponents are reduced mod (p-1) via Fermat's little theorem only when
	// e is nonzero and p is prime; for the zero element any positive power
	// is zero, which big.Int.Exp already returns correctly without
	// reduction.
	reduced := n
	if base.Value.Sign() != 0 {
		pMinus1 := new(big.Int).Sub(base.P, big.NewInt(1))
		reduced = new(big.Int).Mod(n, pMinus1)
	}
	result := new(big.Int).Exp(base.Value, reduced, base.P)
	return FieldElement{Value: result, P: base.P}, nil
}

// PowInt64 is a convenience wrapper over Pow for literal exponents.
func (e FieldElement) PowInt64(exp int64) (FieldElement, error) {
	return e.Pow(big.NewInt(exp))
}

// ScalarMul returns k*e for an integer scalar k (repeated addition,
// expressed via modular multiplication since the field is commutative).
// A negative k negates the result.
func (e FieldElement) ScalarMul(k *big.Int) FieldElement {
	product := new(big.Int).Mul(e.Value, k)
	return NewFieldElement(product, e.P)
}

// Cmp orders two elements lexicographically on Value; only meaningful
// within a single modulus (callers must ensure e.P == o.P).
func (e FieldElement) Cmp(o FieldElement) int {
	return e.Value.Cmp(o.Value)
}
