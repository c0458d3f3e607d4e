package bitcoin

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bitcoinecho/btcprim/pkg/bigint"
	"github.com/bitcoinecho/btcprim/pkg/ecc"
)

// Network selects the version bytes used by address and WIF encoding.
type Network int

const (
	Mainnet Network = iota
	Testnet
)

const (
	mainnetP2PKHVersion = 0x00
	mainnetP2SHVersion  = 0x05
	mainnetWIFVersion   = 0x80
	testnetP2PKHVersion = 0x6f
	testnetP2SHVersion  = 0xc4
	testnetWIFVersion   = 0xef
)

func (n Network) p2pkhVersion() byte {
	if n == Testnet {
		return testnetP2PKHVersion
	}
	return mainnetP2PKHVersion
}

func (n Network) p2shVersion() byte {
	if n == Testnet {
		return testnetP2SHVersion
	}
	return mainnetP2SHVersion
}

func (n Network) wifVersion() byte {
	if n == Testnet {
		return testnetWIFVersion
	}
	return mainnetWIFVersion
}

// Errors for the codecs in this file.
var (
	ErrSECMalformed      = errors.New("bitcoin: malformed SEC public key")
	ErrDERMalformed      = errors.New("bitcoin: malformed DER signature")
	ErrBase58Malformed   = errors.New("bitcoin: invalid base58 character")
	ErrBase58ChecksumBad = errors.New("bitcoin: base58check checksum mismatch")
	ErrWIFMalformed      = errors.New("bitcoin: malformed WIF payload")
	ErrAddressMalformed  = errors.New("bitcoin: malformed address payload")
)

// EncodeSEC serializes a public key: compressed ((0x02|0x03) || x) when
// compressed is true, else uncompressed (0x04 || x || y).
func EncodeSEC(pub ecc.S256Point, compressed bool) ([]byte, error) {
	x, err := pub.X()
	if err != nil {
		return nil, err
	}
	y, err := pub.Y()
	if err != nil {
		return nil, err
	}
	xBytes := bigint.NewU256FromBigInt(x).BytesBE()
	if !compressed {
		yBytes := bigint.NewU256FromBigInt(y).BytesBE()
		out := make([]byte, 0, 65)
		out = append(out, 0x04)
		out = append(out, xBytes...)
		out = append(out, yBytes...)
		return out, nil
	}
	prefix := byte(0x02)
	if y.Bit(0) == 1 {
		prefix = 0x03
	}
	out := make([]byte, 0, 33)
	out = append(out, prefix)
	out = append(out, xBytes...)
	return out, nil
}

// DecodeSEC parses a compressed or uncompressed SEC-encoded public key,
// recovering y from x via the Tonelli–Shanks square root for the
// compressed form.
func DecodeSEC(data []byte) (ecc.S256Point, error) {
	if len(data) == 0 {
		return ecc.S256Point{}, ErrSECMalformed
	}
	switch data[0] {
	case 0x04:
		if len(data) != 65 {
			return ecc.S256Point{}, ErrSECMalformed
		}
		x := new(big.Int).SetBytes(data[1:33])
		y := new(big.Int).SetBytes(data[33:65])
		return ecc.NewS256Point(x, y)
	case 0x02, 0x03:
		if len(data) != 33 {
			return ecc.S256Point{}, ErrSECMalformed
		}
		x := new(big.Int).SetBytes(data[1:33])
		xFe := ecc.NewS256FieldElement(x)
		x2, err := xFe.Mul(xFe)
		if err != nil {
			return ecc.S256Point{}, err
		}
		x3, err := x2.Mul(xFe)
		if err != nil {
			return ecc.S256Point{}, err
		}
		ySquared, err := x3.Add(ecc.NewS256FieldElement(big.NewInt(7)))
		if err != nil {
			return ecc.S256Point{}, err
		}
		root, err := ySquared.Sqrt()
		if err != nil {
			return ecc.S256Point{}, fmt.Errorf("%w: %v", ErrSECMalformed, err)
		}
		y := root.Value
		isEven := y.Bit(0) == 0
		wantEven := data[0] == 0x02
		if isEven != wantEven {
			y = new(big.Int).Sub(ecc.P, y)
		}
		return ecc.NewS256Point(x, y)
	default:
		return ecc.S256Point{}, ErrSECMalformed
	}
}

// DERSignature is an ECDSA signature in its DER-encoded wire form.
type DERSignature struct {
	R, S *big.Int
}

// EncodeDERSignature serializes (r,s): each of r,s is big-endian with
// leading zero bytes stripped, but a 0x00 is prefixed if the first
// remaining byte would be >= 0x80 (so the value is never misread as
// negative).
func EncodeDERSignature(r, s *big.Int) []byte {
	rBytes := derEncodeInt(r)
	sBytes := derEncodeInt(s)

	body := make([]byte, 0, 4+len(rBytes)+len(sBytes))
	body = append(body, 0x02, byte(len(rBytes)))
	body = append(body, rBytes...)
	body = append(body, 0x02, byte(len(sBytes)))
	body = append(body, sBytes...)

	out := make([]byte, 0, 2+len(body))
	out = append(out, 0x30, byte(len(body)))
	out = append(out, body...)
	return out
}

func derEncodeInt(v *big.Int) []byte {
	b := v.Bytes()
	for len(b) > 1 && b[0] == 0x00 {
		b = b[1:]
	}
	if len(b) == 0 {
		b = []byte{0x00}
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0x00}, b...)
	}
	return b
}

// DecodeDERSignature parses a DER-encoded ECDSA signature.
func DecodeDERSignature(data []byte) (DERSignature, error) {
	if len(data) < 8 || data[0] != 0x30 {
		return DERSignature{}, ErrDERMalformed
	}
	totalLen := int(data[1])
	if totalLen+2 > len(data) {
		return DERSignature{}, ErrDERMalformed
	}
	body := data[2 : 2+totalLen]

	if len(body) < 2 || body[0] != 0x02 {
		return DERSignature{}, ErrDERMalformed
	}
	rLen := int(body[1])
	if 2+rLen > len(body) {
		return DERSignature{}, ErrDERMalformed
	}
	r := new(big.Int).SetBytes(body[2 : 2+rLen])
	rest := body[2+rLen:]

	if len(rest) < 2 || rest[0] != 0x02 {
		return DERSignature{}, ErrDERMalformed
	}
	sLen := int(rest[1])
	if 2+sLen > len(rest) {
		return DERSignature{}, ErrDERMalformed
	}
	s := new(big.Int).SetBytes(rest[2 : 2+sLen])

	return DERSignature{R: r, S: s}, nil
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// EncodeBase58 encodes data using Bitcoin's base58 alphabet: a radix-58
// big-endian digit expansion with each leading zero byte mapped to one
// leading '1'.
func EncodeBase58(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	num := new(big.Int).SetBytes(data)
	base := big.NewInt(58)
	mod := new(big.Int)

	var digits []byte
	for num.Sign() > 0 {
		num.DivMod(num, base, mod)
		digits = append(digits, base58Alphabet[mod.Int64()])
	}

	out := make([]byte, 0, zeros+len(digits))
	for i := 0; i < zeros; i++ {
		out = append(out, base58Alphabet[0])
	}
	for i := len(digits) - 1; i >= 0; i-- {
		out = append(out, digits[i])
	}
	return string(out)
}

// DecodeBase58 reverses EncodeBase58.
func DecodeBase58(s string) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && s[zeros] == base58Alphabet[0] {
		zeros++
	}

	num := new(big.Int)
	base := big.NewInt(58)
	for i := 0; i < len(s); i++ {
		idx := indexByte(base58Alphabet, s[i])
		if idx < 0 {
			return nil, ErrBase58Malformed
		}
		num.Mul(num, base)
		num.Add(num, big.NewInt(int64(idx)))
	}

	body := num.Bytes()
	out := make([]byte, 0, zeros+len(body))
	for i := 0; i < zeros; i++ {
		out = append(out, 0x00)
	}
	out = append(out, body...)
	return out, nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// EncodeBase58Check appends a 4-byte double-SHA256 checksum to payload and
// base58-encodes the result.
func EncodeBase58Check(payload []byte) string {
	checksum := DoubleHashSHA256(payload)
	full := append(append([]byte{}, payload...), checksum[:4]...)
	return EncodeBase58(full)
}

// DecodeBase58Check decodes a base58check string and validates its
// checksum, returning the payload (without the checksum).
func DecodeBase58Check(s string) ([]byte, error) {
	full, err := DecodeBase58(s)
	if err != nil {
		return nil, err
	}
	if len(full) < 4 {
		return nil, ErrBase58ChecksumBad
	}
	payload := full[:len(full)-4]
	checksum := full[len(full)-4:]
	want := DoubleHashSHA256(payload)
	for i := 0; i < 4; i++ {
		if checksum[i] != want[i] {
			return nil, ErrBase58ChecksumBad
		}
	}
	return payload, nil
}

// EncodeP2PKHAddress builds a Base58Check P2PKH address from a public key
// hash.
func EncodeP2PKHAddress(pkHash Hash160, net Network) string {
	payload := append([]byte{net.p2pkhVersion()}, pkHash[:]...)
	return EncodeBase58Check(payload)
}

// EncodeP2SHAddress builds a Base58Check P2SH address from a redeem
// script's hash.
func EncodeP2SHAddress(scriptHash Hash160, net Network) string {
	payload := append([]byte{net.p2shVersion()}, scriptHash[:]...)
	return EncodeBase58Check(payload)
}

// DecodeAddress parses a Base58Check P2PKH or P2SH address, returning the
// 20-byte hash, its network, and whether it's a script-hash address.
func DecodeAddress(addr string) (hash Hash160, net Network, isScriptHash bool, err error) {
	payload, err := DecodeBase58Check(addr)
	if err != nil {
		return Hash160{}, 0, false, err
	}
	if len(payload) != 21 {
		return Hash160{}, 0, false, ErrAddressMalformed
	}
	version := payload[0]
	h, err := NewHash160FromBytes(payload[1:])
	if err != nil {
		return Hash160{}, 0, false, err
	}
	switch version {
	case mainnetP2PKHVersion:
		return h, Mainnet, false, nil
	case mainnetP2SHVersion:
		return h, Mainnet, true, nil
	case testnetP2PKHVersion:
		return h, Testnet, false, nil
	case testnetP2SHVersion:
		return h, Testnet, true, nil
	default:
		return Hash160{}, 0, false, fmt.Errorf("%w: unknown version byte %#02x", ErrAddressMalformed, version)
	}
}

// EncodeWIF encodes a private scalar in Wallet Import Format:
// version || secret(32 BE) [|| 0x01 if compressed].
func EncodeWIF(secret *big.Int, net Network, compressed bool) string {
	payload := make([]byte, 0, 34)
	payload = append(payload, net.wifVersion())
	payload = append(payload, bigint.NewU256FromBigInt(secret).BytesBE()...)
	if compressed {
		payload = append(payload, 0x01)
	}
	return EncodeBase58Check(payload)
}

// DecodeWIF reverses EncodeWIF.
func DecodeWIF(wif string) (secret *big.Int, net Network, compressed bool, err error) {
	payload, err := DecodeBase58Check(wif)
	if err != nil {
		return nil, 0, false, err
	}
	if len(payload) != 33 && len(payload) != 34 {
		return nil, 0, false, ErrWIFMalformed
	}
	switch payload[0] {
	case mainnetWIFVersion:
		net = Mainnet
	case testnetWIFVersion:
		net = Testnet
	default:
		return nil, 0, false, fmt.Errorf("%w: unknown version byte %#02x", ErrWIFMalformed, payload[0])
	}
	secret = new(big.Int).SetBytes(payload[1:33])
	if len(payload) == 34 {
		if payload[33] != 0x01 {
			return nil, 0, false, ErrWIFMalformed
		}
		compressed = true
	}
	return secret, net, compressed, nil
}
