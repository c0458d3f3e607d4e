package ecc

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"math/big"
)

// DeterministicK implements RFC 6979's deterministic nonce generation,
// specialized to HMAC-SHA-256: given a digest z, a
// private scalar e, and the group order n, it produces k in [1, n-1]
// without consuming any randomness, so the same (z, e) always signs with
// the same k.
func DeterministicK(z, e, n *big.Int) *big.Int {
	zModN := new(big.Int).Mod(z, n)
	zBytes := leftPad32(zModN.Bytes())
	eBytes := leftPad32(e.Bytes())

	v := bytes.Repeat([]byte{0x01}, 32)
	k := bytes.Repeat([]byte{0x00}, 32)

	k = hmacSHA256(k, v, []byte{0x00}, eBytes, zBytes)
	v = hmacSHA256(k, v)
	k = hmacSHA256(k, v, []byte{0x01}, eBytes, zBytes)
	v = hmacSHA256(k, v)

	for {
		v = hmacSHA256(k, v)
		candidate := new(big.Int).SetBytes(v)
		if candidate.Sign() > 0 && candidate.Cmp(n) < 0 {
			return candidate
		}
		k = hmacSHA256(k, v, []byte{0x00})
		v = hmacSHA256(k, v)
	}
}

func hmacSHA256(key []byte, parts ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil)
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
