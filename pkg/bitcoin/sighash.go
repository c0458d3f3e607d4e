package bitcoin

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// SigHashType is the one-byte flag appended to a DER signature that selects
// which parts of the transaction a signature commits to.
type SigHashType byte

const (
	SigHashAll          SigHashType = 0x01
	SigHashNone         SigHashType = 0x02
	SigHashSingle       SigHashType = 0x03
	SigHashAnyoneCanPay SigHashType = 0x80
)

// ErrInvalidSigHashType is returned when a sighash byte's lower two bits do
// not select ALL, NONE, or SINGLE, or when any of the reserved bits 0x7C
// are set.
var ErrInvalidSigHashType = errors.New("bitcoin: invalid sighash type")

// baseType returns the ALL/NONE/SINGLE component, ignoring ANYONECANPAY.
func (t SigHashType) baseType() SigHashType {
	return t &^ SigHashAnyoneCanPay
}

func (t SigHashType) anyoneCanPay() bool {
	return t&SigHashAnyoneCanPay != 0
}

// Validate checks the sighash byte: the lower two bits must denote
// ALL/NONE/SINGLE, and bits 0x7C must be zero.
func (t SigHashType) Validate() error {
	if byte(t)&0x7C != 0 {
		return ErrInvalidSigHashType
	}
	switch t.baseType() {
	case SigHashAll, SigHashNone, SigHashSingle:
		return nil
	default:
		return ErrInvalidSigHashType
	}
}

// legacySingleBugDigest is the fixed 32-byte digest returned for
// SIGHASH_SINGLE when the signing input has no corresponding output.
// Historical behavior, not an error: the legacy signer hashed the integer
// 1 instead, so verifiers must commit to double-SHA256 of the
// little-endian encoding of the 256-bit value 1.
func legacySingleBugDigest() Hash256 {
	var le [32]byte
	le[0] = 0x01
	return DoubleHashSHA256(le[:])
}

// CommitmentSource supplies the bytes that replace the signing input's
// script during sighash computation.
type CommitmentSource interface {
	commitmentBytes() []byte
}

// ScriptCode is the portion of the currently executing script after the
// last OP_CODESEPARATOR at or before the instruction pointer, with all
// OP_CODESEPARATOR opcodes stripped. Used by OP_CHECKSIG evaluated inside a
// script.
type ScriptCode []byte

func (s ScriptCode) commitmentBytes() []byte { return []byte(s) }

// NewScriptCode builds a ScriptCode by truncating script at the last
// OP_CODESEPARATOR at or before ip and removing every OP_CODESEPARATOR from
// what remains.
func NewScriptCode(script Script, ip int) ScriptCode {
	start := 0
	for i := 0; i < ip && i < len(script); {
		op := script[i]
		if op == byte(OP_CODESEPARATOR) {
			start = i + 1
			i++
			continue
		}
		i += opcodeWidth(script, i)
	}
	rest := script[start:]
	out := make([]byte, 0, len(rest))
	for i := 0; i < len(rest); {
		op := rest[i]
		if op == byte(OP_CODESEPARATOR) {
			i++
			continue
		}
		w := opcodeWidth(rest, i)
		out = append(out, rest[i:i+w]...)
		i += w
	}
	return ScriptCode(out)
}

// P2pkhLockingScript is the previous output's full locking script, used by
// the signer for a P2PKH input.
type P2pkhLockingScript []byte

func (s P2pkhLockingScript) commitmentBytes() []byte { return []byte(s) }

// RedeemScript is the P2SH redeem script, used by the signer for a P2SH
// input.
type RedeemScript []byte

func (s RedeemScript) commitmentBytes() []byte { return []byte(s) }

// SigHash computes the 32-byte digest that a signature over input inputIdx
// commits to: the transaction is rewritten according to the sighash type,
// the commitment bytes replace the signing input's script, and the 4-byte
// little-endian flag is appended before double-SHA256.
func SigHash(tx *Transaction, inputIdx int, source CommitmentSource, sigType SigHashType) (Hash256, error) {
	if inputIdx < 0 || inputIdx >= len(tx.Inputs) {
		return ZeroHash, fmt.Errorf("bitcoin: sighash input index %d out of range", inputIdx)
	}
	if err := sigType.Validate(); err != nil {
		return ZeroHash, err
	}

	rewritten := &Transaction{
		Version:  tx.Version,
		LockTime: tx.LockTime,
	}

	base := sigType.baseType()
	anyoneCanPay := sigType.anyoneCanPay()

	if anyoneCanPay {
		in := tx.Inputs[inputIdx]
		in.ScriptSig = append([]byte{}, source.commitmentBytes()...)
		rewritten.Inputs = []TxInput{in}
	} else {
		rewritten.Inputs = make([]TxInput, len(tx.Inputs))
		for i, in := range tx.Inputs {
			cp := TxInput{
				PreviousOutput: in.PreviousOutput,
				Sequence:       in.Sequence,
			}
			if i == inputIdx {
				cp.ScriptSig = append([]byte{}, source.commitmentBytes()...)
			} else {
				cp.ScriptSig = nil
				if base == SigHashNone || base == SigHashSingle {
					cp.Sequence = 0
				}
			}
			rewritten.Inputs[i] = cp
		}
	}

	switch base {
	case SigHashAll:
		rewritten.Outputs = append([]TxOutput{}, tx.Outputs...)
	case SigHashNone:
		rewritten.Outputs = nil
	case SigHashSingle:
		if inputIdx >= len(tx.Outputs) {
			return legacySingleBugDigest(), nil
		}
		rewritten.Outputs = make([]TxOutput, inputIdx+1)
		for i := 0; i < inputIdx; i++ {
			rewritten.Outputs[i] = TxOutput{Value: maxUint64AsSignedNegativeOne, ScriptPubKey: nil}
		}
		rewritten.Outputs[inputIdx] = tx.Outputs[inputIdx]
	}

	raw, err := rewritten.serializeLegacy()
	if err != nil {
		return ZeroHash, fmt.Errorf("bitcoin: sighash serialization: %w", err)
	}

	var flagBytes [4]byte
	binary.LittleEndian.PutUint32(flagBytes[:], uint32(sigType))
	raw = append(raw, flagBytes[:]...)

	return DoubleHashSHA256(raw), nil
}

// maxUint64AsSignedNegativeOne is the wire representation of "amount -1"
// required for skipped outputs under SIGHASH_SINGLE: the output amount
// field is an 8-byte little-endian signed integer, and all bits set is -1
// in two's complement.
const maxUint64AsSignedNegativeOne = ^uint64(0)
