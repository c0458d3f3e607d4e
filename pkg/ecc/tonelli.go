package ecc

import "math/big"

// Sqrt computes a square root of e modulo its prime p, using the
// Tonelli–Shanks reduction that applies whenever p ≡ 3 (mod 4): in that
// case y = (y^2)^((p+1)/4) mod p directly, without the general
// Tonelli–Shanks loop (secp256k1's prime satisfies this).
// The caller is responsible for checking whether y^2 == e (the returned
// root is only a genuine square root if e is in fact a quadratic residue);
// callers that need both candidates should also try p - root.
func (e FieldElement) Sqrt() (FieldElement, error) {
	mod4 := new(big.Int).Mod(e.P, big.NewInt(4))
	if mod4.Int64() != 3 {
		return FieldElement{}, ErrUnsupportedModulus
	}
	exp := new(big.Int).Add(e.P, big.NewInt(1))
	exp.Rsh(exp, 2) // (p+1)/4
	root := new(big.Int).Exp(e.Value, exp, e.P)
	return FieldElement{Value: root, P: e.P}, nil
}

// IsQuadraticResidue reports whether e is a square in F_p via Euler's
// criterion: e^((p-1)/2) == 1. Only meaningful for prime p; like Sqrt it is
// restricted to p ≡ 3 (mod 4) fields, the only case this module needs.
func (e FieldElement) IsQuadraticResidue() (bool, error) {
	mod4 := new(big.Int).Mod(e.P, big.NewInt(4))
	if mod4.Int64() != 3 {
		return false, ErrUnsupportedModulus
	}
	if e.Value.Sign() == 0 {
		return true, nil
	}
	exp := new(big.Int).Sub(e.P, big.NewInt(1))
	exp.Rsh(exp, 1) // (p-1)/2
	result := new(big.Int).Exp(e.Value, exp, e.P)
	return result.Cmp(big.NewInt(1)) == 0, nil
}
