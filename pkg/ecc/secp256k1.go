package ecc

import (
	"fmt"
	"math/big"
)

// secp256k1 domain parameters.
var (
	// P is the field prime.
	P, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F", 16)
	// N is the order of the base point G (the size of the scalar field).
	N, _  = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	gx, _ = new(big.Int).SetString("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798", 16)
	gy, _ = new(big.Int).SetString("483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8", 16)

	curveA = NewFieldElement(big.NewInt(0), P)
	curveB = NewFieldElement(big.NewInt(7), P)
)

// S256Point wraps a generic Point known to lie on secp256k1 (a=0, b=7 over
// F_P). Scalar multiplication on an S256Point reduces the scalar modulo N
// (the group order), since every multiple of G cycles with period N.
type S256Point struct {
	Point
}

// G is the secp256k1 base point.
var G = S256Point{Point: mustPoint(NewPoint(NewS256FieldElement(gx), NewS256FieldElement(gy), curveA, curveB))}

func mustPoint(p Point, err error) Point {
	if err != nil {
		panic(fmt.Sprintf("ecc: invalid secp256k1 constant: %v", err))
	}
	return p
}

// InfinityS256 is the secp256k1 group identity.
var InfinityS256 = S256Point{Point: InfinityPoint(curveA, curveB)}

// NewS256FieldElement builds a field element over the secp256k1 prime.
func NewS256FieldElement(value *big.Int) FieldElement {
	return NewFieldElement(value, P)
}

// NewS256Point validates (x,y) against y^2 = x^3 + 7 over F_P.
func NewS256Point(x, y *big.Int) (S256Point, error) {
	p, err := NewPoint(NewS256FieldElement(x), NewS256FieldElement(y), curveA, curveB)
	if err != nil {
		return S256Point{}, err
	}
	return S256Point{Point: p}, nil
}

// FromPoint wraps a generic Point already known to be on the secp256k1
// curve (skipping re-validation); used when converting a point produced by
// generic Point arithmetic back into the specialized type.
func FromPoint(p Point) S256Point { return S256Point{Point: p} }

// Add adds two secp256k1 points.
func (p S256Point) Add(o S256Point) (S256Point, error) {
	r, err := p.Point.Add(o.Point)
	if err != nil {
		return S256Point{}, err
	}
	return S256Point{Point: r}, nil
}

// ScalarMul computes (k mod N)*P, the secp256k1 specialization of the
// generic double-and-add scalar multiplication.
func (p S256Point) ScalarMul(k *big.Int) (S256Point, error) {
	kModN := new(big.Int).Mod(k, N)
	r, err := p.Point.ScalarMul(kModN)
	if err != nil {
		return S256Point{}, err
	}
	return S256Point{Point: r}, nil
}

// ScalarBaseMul computes (k mod N)*G.
func ScalarBaseMul(k *big.Int) (S256Point, error) {
	return G.ScalarMul(k)
}

// X returns the affine x-coordinate; errors if called on the identity.
func (p S256Point) X() (*big.Int, error) {
	if p.Infinity {
		return nil, ErrPointAtInfinity
	}
	return new(big.Int).Set(p.Point.X.Value), nil
}

// Y returns the affine y-coordinate; errors if called on the identity.
func (p S256Point) Y() (*big.Int, error) {
	if p.Infinity {
		return nil, ErrPointAtInfinity
	}
	return new(big.Int).Set(p.Point.Y.Value), nil
}
