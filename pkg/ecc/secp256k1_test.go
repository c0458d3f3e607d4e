package ecc

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecp256k1_GeneratorOrderIsIdentity(t *testing.T) {
	result, err := G.ScalarMul(N)
	require.NoError(t, err)
	require.True(t, result.Infinity, "n*G should be the identity")
}

func TestSecp256k1_ConsecutiveMultiplesDifferByG(t *testing.T) {
	k := big.NewInt(12345)
	kG, err := G.ScalarMul(k)
	require.NoError(t, err)
	k1G, err := G.ScalarMul(new(big.Int).Add(k, big.NewInt(1)))
	require.NoError(t, err)

	negKG, err := kG.ScalarMul(big.NewInt(-1))
	require.NoError(t, err)
	diff, err := k1G.Add(negKG)
	require.NoError(t, err)

	require.True(t, diff.Equal(G.Point))
}

func hexToBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 16)
	require.True(t, ok, "invalid hex literal: %s", s)
	return v
}

// TestECDSA_VerifyReferenceVector checks Verify against a known-good
// (pubkey, digest, signature) triple.
func TestECDSA_VerifyReferenceVector(t *testing.T) {
	px := hexToBig(t, "887387e452b8eacc4acfde10d9aaf7f6d9a0f975aabb10d006e4da568744d06c")
	py := hexToBig(t, "61de6d95231cd89026e286df3b6ae4a894a3378e393e93a0f45b666329a0ae34")
	z := hexToBig(t, "ec208baa0fc1c19f708a9ca96fdeff3ac3f230bb4a7ba4aede4942ad003c0f60")
	r := hexToBig(t, "ac8d1c87e51d0d441be8b3dd5b05c8795b48875dffe00b7ffcfac23010d3a395")
	s := hexToBig(t, "068342ceff8935ededd102dd876ffd6ba72d6a427a3edb13d26eb0781cb423c4")

	pub, err := NewS256Point(px, py)
	require.NoError(t, err)

	ok := Verify(z, Signature{R: r, S: s}, pub)
	require.True(t, ok)
}

// TestECDSA_DeterministicSignReferenceVector checks that RFC 6979 signing
// of a fixed message with a fixed key reproduces the expected (r,s).
func TestECDSA_DeterministicSignReferenceVector(t *testing.T) {
	e := big.NewInt(12345)

	first := sha256Sum([]byte("Programming Bitcoin!"))
	second := sha256Sum(first[:])
	z := new(big.Int).SetBytes(second[:])

	sig, err := Sign(z, e)
	require.NoError(t, err)

	wantR := hexToBig(t, "2b698a0f0a4041b77e63488ad48c23e8e8838dd1fb7520408b121697b782ef22")
	wantS := hexToBig(t, "1dbc63bfef4416705e602a7b564161167076d8b20990a0f26f316cff2cb0bc1a")

	require.Equal(t, 0, sig.R.Cmp(wantR))
	require.Equal(t, 0, sig.S.Cmp(wantS))
}

func sha256Sum(b []byte) [32]byte {
	return sha256.Sum256(b)
}
