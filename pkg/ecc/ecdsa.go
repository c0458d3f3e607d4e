package ecc

import (
	"errors"
	"math/big"
)

// ErrInvalidSignature is returned when r or s fall outside [1, n-1].
var ErrInvalidSignature = errors.New("ecc: signature r or s out of range")

// ErrZeroR is returned by Sign in the vanishingly unlikely event that the
// deterministic nonce produces r=0. ECDSA requires retrying with a
// different nonce, which RFC 6979 never yields for the same (z,e), so in
// practice this indicates a caller bug (e.g. n not being prime) rather
// than a retryable condition.
var ErrZeroR = errors.New("ecc: signature r is zero")

// Signature is an ECDSA signature (r,s) with r,s in [1, n-1].
type Signature struct {
	R, S *big.Int
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over digest z
// with private scalar e. The resulting s is canonicalized to the low-S
// form (s <= n/2).
func Sign(z, e *big.Int) (Signature, error) {
	k := DeterministicK(z, e, N)
	R, err := ScalarBaseMul(k)
	if err != nil {
		return Signature{}, err
	}
	rx, err := R.X()
	if err != nil {
		return Signature{}, err
	}
	r := new(big.Int).Mod(rx, N)
	if r.Sign() == 0 {
		return Signature{}, ErrZeroR
	}

	kInv := new(big.Int).ModInverse(k, N)
	// s = (z + r*e) * k^-1 mod n, computed in a widened big.Int so the
	// r*e product (up to ~512 bits) never truncates before reduction.
	rTimesE := new(big.Int).Mul(r, e)
	zPlusRE := new(big.Int).Add(z, rTimesE)
	s := new(big.Int).Mul(zPlusRE, kInv)
	s.Mod(s, N)

	s = canonicalizeLowS(s)

	return Signature{R: r, S: s}, nil
}

func canonicalizeLowS(s *big.Int) *big.Int {
	halfN := new(big.Int).Rsh(N, 1)
	if s.Cmp(halfN) > 0 {
		return new(big.Int).Sub(N, s)
	}
	return s
}

// Verify checks an ECDSA signature (r,s) over digest z against public
// point P.
func Verify(z *big.Int, sig Signature, pub S256Point) bool {
	if sig.R.Sign() <= 0 || sig.R.Cmp(N) >= 0 {
		return false
	}
	if sig.S.Sign() <= 0 || sig.S.Cmp(N) >= 0 {
		return false
	}

	sInv := new(big.Int).ModInverse(sig.S, N)
	if sInv == nil {
		return false
	}

	u := new(big.Int).Mod(new(big.Int).Mul(z, sInv), N)
	v := new(big.Int).Mod(new(big.Int).Mul(sig.R, sInv), N)

	uG, err := ScalarBaseMul(u)
	if err != nil {
		return false
	}
	vP, err := pub.ScalarMul(v)
	if err != nil {
		return false
	}
	total, err := uG.Add(vP)
	if err != nil {
		return false
	}
	if total.Infinity {
		return false
	}
	x, err := total.X()
	if err != nil {
		return false
	}
	return new(big.Int).Mod(x, N).Cmp(sig.R) == 0
}

// Recover returns the (up to four) candidate public keys consistent with
// signature (r,s) over digest z: r is treated as an x-coordinate and the
// two corresponding y values are found via Tonelli–Shanks. When r < p-n
// (rare, but possible because the field is slightly larger than the group
// order) r+n is also tried as an x-coordinate, for up to four total
// candidates.
func Recover(z *big.Int, sig Signature) ([]S256Point, error) {
	var candidates []S256Point

	xs := []*big.Int{sig.R}
	if sig.R.Cmp(new(big.Int).Sub(P, N)) < 0 {
		xs = append(xs, new(big.Int).Add(sig.R, N))
	}

	for _, x := range xs {
		if x.Cmp(P) >= 0 {
			continue
		}
		xFe := NewS256FieldElement(x)
		x2, err := xFe.Mul(xFe)
		if err != nil {
			return nil, err
		}
		x3, err := x2.Mul(xFe)
		if err != nil {
			return nil, err
		}
		ySquared, err := x3.Add(NewS256FieldElement(big.NewInt(7)))
		if err != nil {
			return nil, err
		}
		isQR, err := ySquared.IsQuadraticResidue()
		if err != nil {
			return nil, err
		}
		if !isQR {
			continue
		}
		yRoot, err := ySquared.Sqrt()
		if err != nil {
			return nil, err
		}

		for _, y := range []*big.Int{yRoot.Value, new(big.Int).Sub(P, yRoot.Value)} {
			R, err := NewS256Point(x, y)
			if err != nil {
				continue
			}
			pub, err := recoverFromR(z, sig, R)
			if err != nil {
				continue
			}
			candidates = append(candidates, pub)
		}
	}

	return candidates, nil
}

// recoverFromR computes the public key candidate r^-1 * (s*R - z*G) for a
// fixed R candidate.
func recoverFromR(z *big.Int, sig Signature, R S256Point) (S256Point, error) {
	rInv := new(big.Int).ModInverse(sig.R, N)
	if rInv == nil {
		return S256Point{}, ErrInvalidSignature
	}

	sR, err := R.ScalarMul(sig.S)
	if err != nil {
		return S256Point{}, err
	}
	zG, err := ScalarBaseMul(z)
	if err != nil {
		return S256Point{}, err
	}
	negZG, err := zG.ScalarMul(new(big.Int).Sub(N, big.NewInt(1)))
	if err != nil {
		return S256Point{}, err
	}
	sRMinusZG, err := sR.Add(negZG)
	if err != nil {
		return S256Point{}, err
	}
	return sRMinusZG.ScalarMul(rInv)
}

// RecoverPrivateKeyFromNonceReuse demonstrates the classic ECDSA
// nonce-reuse attack: given two signatures (r,s1) and (r,s2) over distinct
// digests z1, z2 that were produced with the same nonce k (recognizable
// because they share r), the private key e can be recovered directly. This
// is a demonstration/test utility, not part of the signing or verification
// path.
func RecoverPrivateKeyFromNonceReuse(z1, s1, z2, s2, r *big.Int) (*big.Int, error) {
	sDiff := new(big.Int).Sub(s1, s2)
	sDiff.Mod(sDiff, N)
	sDiffInv := new(big.Int).ModInverse(sDiff, N)
	if sDiffInv == nil {
		return nil, ErrInvalidSignature
	}

	zDiff := new(big.Int).Sub(z1, z2)
	zDiff.Mod(zDiff, N)

	k := new(big.Int).Mul(zDiff, sDiffInv)
	k.Mod(k, N)

	kInv := new(big.Int).ModInverse(k, N)
	if kInv == nil {
		return nil, ErrInvalidSignature
	}

	sK := new(big.Int).Mul(s1, k)
	sKMinusZ := new(big.Int).Sub(sK, z1)
	rInv := new(big.Int).ModInverse(r, N)
	if rInv == nil {
		return nil, ErrInvalidSignature
	}
	e := new(big.Int).Mul(sKMinusZ, rInv)
	e.Mod(e, N)
	return e, nil
}
