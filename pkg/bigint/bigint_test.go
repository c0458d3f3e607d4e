package bigint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU256_BytesRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"zero", "00"},
		{"one", "01"},
		{"max", "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := new(big.Int).SetString(tt.hex, 16)
			require.True(t, ok)

			u := NewU256FromBigInt(b)
			require.Equal(t, 0, u.BigInt().Cmp(b))

			roundTrip, err := NewU256FromBytesBE(u.BytesBE())
			require.NoError(t, err)
			require.Equal(t, 0, u.Cmp(roundTrip))
		})
	}
}

func TestU256_AddWrapsModulo2to256(t *testing.T) {
	max := NewU256FromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	one := NewU256FromUint64(1)

	sum := max.Add(one)
	require.True(t, sum.IsZero(), "2^256-1 + 1 should wrap to zero")
}

func TestU256_InvModRejectsZero(t *testing.T) {
	p := NewU256FromUint64(31)
	_, ok := Zero256.InvMod(p)
	require.False(t, ok)
}

func TestU256_InvModAndMulModAreInverse(t *testing.T) {
	p := NewU256FromUint64(31)
	a := NewU256FromUint64(17)

	inv, ok := a.InvMod(p)
	require.True(t, ok)

	product := a.MulMod(inv, p)
	require.Equal(t, uint64(1), product.BigInt().Uint64())
}

func TestU256_PowModZeroExponentIsOne(t *testing.T) {
	p := NewU256FromUint64(31)
	a := NewU256FromUint64(17)

	result := a.PowMod(Zero256, p)
	require.Equal(t, uint64(1), result.BigInt().Uint64())
}

func TestU256_ToBaseBEMatchesManualDivision(t *testing.T) {
	v := NewU256FromUint64(58*58 + 3*58 + 41) // digits [1, 3, 41] in base 58
	digits := v.ToBaseBE(58)
	require.Equal(t, []byte{1, 3, 41}, digits)
}

func TestU513_MulU256WidensWithoutTruncation(t *testing.T) {
	maxU256 := NewU256FromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	product := MulU256(maxU256, maxU256)

	expected := new(big.Int).Mul(maxU256.BigInt(), maxU256.BigInt())
	require.Equal(t, 0, product.BigInt().Cmp(expected))
}

func TestU576_WrapsAndReduces(t *testing.T) {
	overWide := new(big.Int).Lsh(big.NewInt(1), 600)
	u := NewU576FromBigInt(overWide)
	require.Equal(t, 0, u.BigInt().Sign(), "2^600 should wrap to zero in 576 bits")

	v := NewU576FromBigInt(big.NewInt(1_000_003))
	m := NewU256FromUint64(997)
	expected := new(big.Int).Mod(big.NewInt(1_000_003), big.NewInt(997))
	require.Equal(t, 0, v.Mod(m).BigInt().Cmp(expected))
}

func TestU513_ModReducesToU256(t *testing.T) {
	a := NewU256FromUint64(1_000_000)
	b := NewU256FromUint64(1_000_000)
	m := NewU256FromUint64(997)

	wide := MulU256(a, b)
	reduced := wide.Mod(m)

	expected := new(big.Int).Mod(new(big.Int).Mul(a.BigInt(), b.BigInt()), m.BigInt())
	require.Equal(t, 0, reduced.BigInt().Cmp(expected))
}
