package ecc

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFieldElement_F31Division checks division and negative-exponent
// identities in F_31: 3/24 = 4; 17^-3 = 29; (4^-4)*11 = 13.
func TestFieldElement_F31Division(t *testing.T) {
	three := NewFieldElementInt64(3, 31)
	twentyFour := NewFieldElementInt64(24, 31)

	quotient, err := three.Div(twentyFour)
	require.NoError(t, err)
	require.Equal(t, int64(4), quotient.Value.Int64())

	seventeen := NewFieldElementInt64(17, 31)
	powResult, err := seventeen.Pow(big.NewInt(-3))
	require.NoError(t, err)
	require.Equal(t, int64(29), powResult.Value.Int64())

	four := NewFieldElementInt64(4, 31)
	fourInvFour, err := four.Pow(big.NewInt(-4))
	require.NoError(t, err)
	eleven := NewFieldElementInt64(11, 31)
	product, err := fourInvFour.Mul(eleven)
	require.NoError(t, err)
	require.Equal(t, int64(13), product.Value.Int64())
}

func TestFieldElement_AdditiveAndMultiplicativeIdentities(t *testing.T) {
	for _, v := range []int64{0, 1, 5, 17, 30} {
		a := NewFieldElementInt64(v, 31)

		negA := a.Neg()
		sum, err := a.Add(negA)
		require.NoError(t, err)
		require.Equal(t, int64(0), sum.Value.Int64())

		if v == 0 {
			_, err := a.Inv()
			require.ErrorIs(t, err, ErrNonInvertible)
			continue
		}
		inv, err := a.Inv()
		require.NoError(t, err)
		product, err := a.Mul(inv)
		require.NoError(t, err)
		require.Equal(t, int64(1), product.Value.Int64())
	}
}

// TestFieldElement_FermatsLittleTheorem checks a^(p-1) == 1 for a prime p
// and a in [1, p-1].
func TestFieldElement_FermatsLittleTheorem(t *testing.T) {
	p := int64(223)
	for a := int64(1); a < p; a += 17 {
		elem := NewFieldElementInt64(a, p)
		result, err := elem.Pow(big.NewInt(p - 1))
		require.NoError(t, err)
		require.Equal(t, int64(1), result.Value.Int64())
	}
}

func TestFieldElement_DivByZeroFails(t *testing.T) {
	a := NewFieldElementInt64(5, 31)
	zero := NewFieldElementInt64(0, 31)
	_, err := a.Div(zero)
	require.ErrorIs(t, err, ErrNonInvertible)
}

func TestFieldElement_ModulusMismatchFailsFast(t *testing.T) {
	a := NewFieldElementInt64(5, 31)
	b := NewFieldElementInt64(5, 37)
	_, err := a.Add(b)
	require.ErrorIs(t, err, ErrModulusMismatch)
}

func TestFieldElement_ScalarMulNegatesOnNegativeK(t *testing.T) {
	a := NewFieldElementInt64(10, 31)
	neg := a.ScalarMul(big.NewInt(-1))
	require.Equal(t, a.Neg().Value.Int64(), neg.Value.Int64())
}
