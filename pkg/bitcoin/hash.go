package bitcoin

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/ripemd160"
)

// Hash256 represents a 256-bit hash (32 bytes)
type Hash256 [32]byte

// ZeroHash represents an all-zero hash
var ZeroHash = Hash256{}

// NewHash256FromBytes creates a Hash256 from a byte slice
func NewHash256FromBytes(b []byte) (Hash256, error) {
	if len(b) != 32 {
		return ZeroHash, fmt.Errorf("invalid hash length: expected 32 bytes, got %d", len(b))
	}
	var hash Hash256
	copy(hash[:], b)
	return hash, nil
}

// NewHash256FromString creates a Hash256 from a hex string
func NewHash256FromString(s string) (Hash256, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroHash, fmt.Errorf("invalid hex string: %v", err)
	}
	return NewHash256FromBytes(b)
}

// String returns the hash as a hex string
func (h Hash256) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash as a byte slice
func (h Hash256) Bytes() []byte {
	return h[:]
}

// IsZero returns true if the hash is all zeros
func (h Hash256) IsZero() bool {
	return h == ZeroHash
}

// DoubleHashSHA256 performs double SHA256 hashing (SHA256(SHA256(data)))
func DoubleHashSHA256(data []byte) Hash256 {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return Hash256(second)
}

// Hash160 represents a 160-bit hash (20 bytes) used for addresses
type Hash160 [20]byte

// ZeroHash160 represents an all-zero hash160
var ZeroHash160 = Hash160{}

// NewHash160FromBytes creates a Hash160 from a byte slice
func NewHash160FromBytes(b []byte) (Hash160, error) {
	if len(b) != 20 {
		return ZeroHash160, fmt.Errorf("invalid hash160 length: expected 20 bytes, got %d", len(b))
	}
	var hash Hash160
	copy(hash[:], b)
	return hash, nil
}

// String returns the hash160 as a hex string
func (h Hash160) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash160 as a byte slice
func (h Hash160) Bytes() []byte {
	return h[:]
}

// IsZero returns true if the hash160 is all zeros.
func (h Hash160) IsZero() bool {
	return h == ZeroHash160
}

// Hash160Sum computes RIPEMD160(SHA256(data)), the digest Bitcoin uses for
// P2PKH/P2SH commitments. The standard library has no RIPEMD160
// implementation, so this reaches for golang.org/x/crypto/ripemd160 rather
// than hand-rolling the compression function.
func Hash160Sum(data []byte) Hash160 {
	sha := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sha[:])
	var out Hash160
	copy(out[:], r.Sum(nil))
	return out
}

// Sha256Sum is single SHA-256, exposed for OP_SHA256.
func Sha256Sum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Sha1Sum is SHA-1, exposed for OP_SHA1 (used by the legacy SHA-1-collision
// script puzzle scenario; SHA-1 is cryptographically broken but remains part
// of the script opcode set this interpreter must support).
func Sha1Sum(data []byte) [20]byte {
	return sha1.Sum(data)
}

// Ripemd160Sum is single RIPEMD160, exposed for OP_RIPEMD160.
func Ripemd160Sum(data []byte) [20]byte {
	r := ripemd160.New()
	r.Write(data)
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}
