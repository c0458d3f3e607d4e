package bitcoin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/bitcoinecho/btcprim/pkg/ecc"
)

// Script represents a Bitcoin script
type Script []byte

// ScriptOpcode represents a script operation code
type ScriptOpcode byte

// Script operation codes
const (
	// Constants
	OP_0         ScriptOpcode = 0x00
	OP_FALSE     ScriptOpcode = OP_0
	OP_PUSHDATA1 ScriptOpcode = 0x4c
	OP_PUSHDATA2 ScriptOpcode = 0x4d
	OP_PUSHDATA4 ScriptOpcode = 0x4e
	OP_1NEGATE   ScriptOpcode = 0x4f
	OP_RESERVED  ScriptOpcode = 0x50
	OP_1         ScriptOpcode = 0x51
	OP_TRUE      ScriptOpcode = OP_1
	OP_2         ScriptOpcode = 0x52
	OP_3         ScriptOpcode = 0x53
	OP_4         ScriptOpcode = 0x54
	OP_5         ScriptOpcode = 0x55
	OP_6         ScriptOpcode = 0x56
	OP_7         ScriptOpcode = 0x57
	OP_8         ScriptOpcode = 0x58
	OP_9         ScriptOpcode = 0x59
	OP_10        ScriptOpcode = 0x5a
	OP_11        ScriptOpcode = 0x5b
	OP_12        ScriptOpcode = 0x5c
	OP_13        ScriptOpcode = 0x5d
	OP_14        ScriptOpcode = 0x5e
	OP_15        ScriptOpcode = 0x5f
	OP_16        ScriptOpcode = 0x60

	// Flow control
	OP_NOP      ScriptOpcode = 0x61
	OP_VER      ScriptOpcode = 0x62
	OP_IF       ScriptOpcode = 0x63
	OP_NOTIF    ScriptOpcode = 0x64
	OP_VERIF    ScriptOpcode = 0x65
	OP_VERNOTIF ScriptOpcode = 0x66
	OP_ELSE     ScriptOpcode = 0x67
	OP_ENDIF    ScriptOpcode = 0x68
	OP_VERIFY   ScriptOpcode = 0x69
	OP_RETURN   ScriptOpcode = 0x6a

	// Stack ops
	OP_TOALTSTACK   ScriptOpcode = 0x6b
	OP_FROMALTSTACK ScriptOpcode = 0x6c
	OP_2DROP        ScriptOpcode = 0x6d
	OP_2DUP         ScriptOpcode = 0x6e
	OP_3DUP         ScriptOpcode = 0x6f
	OP_2OVER        ScriptOpcode = 0x70
	OP_2ROT         ScriptOpcode = 0x71
	OP_2SWAP        ScriptOpcode = 0x72
	OP_IFDUP        ScriptOpcode = 0x73
	OP_DEPTH        ScriptOpcode = 0x74
	OP_DROP         ScriptOpcode = 0x75
	OP_DUP          ScriptOpcode = 0x76
	OP_NIP          ScriptOpcode = 0x77
	OP_OVER         ScriptOpcode = 0x78
	OP_PICK         ScriptOpcode = 0x79
	OP_ROLL         ScriptOpcode = 0x7a
	OP_ROT          ScriptOpcode = 0x7b
	OP_SWAP         ScriptOpcode = 0x7c
	OP_TUCK         ScriptOpcode = 0x7d

	// String ops
	OP_SIZE ScriptOpcode = 0x82

	// Bitwise logic
	OP_EQUAL       ScriptOpcode = 0x87
	OP_EQUALVERIFY ScriptOpcode = 0x88

	// Arithmetic
	OP_1ADD               ScriptOpcode = 0x8b
	OP_1SUB               ScriptOpcode = 0x8c
	OP_NEGATE             ScriptOpcode = 0x8f
	OP_ABS                ScriptOpcode = 0x90
	OP_NOT                ScriptOpcode = 0x91
	OP_0NOTEQUAL          ScriptOpcode = 0x92
	OP_ADD                ScriptOpcode = 0x93
	OP_SUB                ScriptOpcode = 0x94
	OP_BOOLAND            ScriptOpcode = 0x9a
	OP_BOOLOR             ScriptOpcode = 0x9b
	OP_NUMEQUAL           ScriptOpcode = 0x9c
	OP_NUMEQUALVERIFY     ScriptOpcode = 0x9d
	OP_NUMNOTEQUAL        ScriptOpcode = 0x9e
	OP_LESSTHAN           ScriptOpcode = 0x9f
	OP_GREATERTHAN        ScriptOpcode = 0xa0
	OP_LESSTHANOREQUAL    ScriptOpcode = 0xa1
	OP_GREATERTHANOREQUAL ScriptOpcode = 0xa2
	OP_MIN                ScriptOpcode = 0xa3
	OP_MAX                ScriptOpcode = 0xa4
	OP_WITHIN             ScriptOpcode = 0xa5

	// Crypto
	OP_RIPEMD160           ScriptOpcode = 0xa6
	OP_SHA1                ScriptOpcode = 0xa7
	OP_SHA256              ScriptOpcode = 0xa8
	OP_HASH160             ScriptOpcode = 0xa9
	OP_HASH256             ScriptOpcode = 0xaa
	OP_CODESEPARATOR       ScriptOpcode = 0xab
	OP_CHECKSIG            ScriptOpcode = 0xac
	OP_CHECKSIGVERIFY      ScriptOpcode = 0xad
	OP_CHECKMULTISIG       ScriptOpcode = 0xae
	OP_CHECKMULTISIGVERIFY ScriptOpcode = 0xaf

	// Expansion
	OP_NOP1                ScriptOpcode = 0xb0
	OP_CHECKLOCKTIMEVERIFY ScriptOpcode = 0xb1 // BIP65
	OP_CHECKSEQUENCEVERIFY ScriptOpcode = 0xb2 // BIP112
	OP_NOP4                ScriptOpcode = 0xb3
	OP_NOP5                ScriptOpcode = 0xb4
	OP_NOP6                ScriptOpcode = 0xb5
	OP_NOP7                ScriptOpcode = 0xb6
	OP_NOP8                ScriptOpcode = 0xb7
	OP_NOP9                ScriptOpcode = 0xb8
	OP_NOP10               ScriptOpcode = 0xb9

	// Invalid opcodes
	OP_INVALIDOPCODE ScriptOpcode = 0xff
)

// ScriptType represents the type of a script
type ScriptType int

const (
	ScriptTypeUnknown ScriptType = iota
	ScriptTypeP2PK               // Pay-to-Public-Key
	ScriptTypeP2PKH              // Pay-to-Public-Key-Hash
	ScriptTypeP2SH                // Pay-to-Script-Hash
	ScriptTypeP2WPKH             // Pay-to-Witness-Public-Key-Hash
	ScriptTypeP2WSH              // Pay-to-Witness-Script-Hash
	ScriptTypeP2TR               // Pay-to-Taproot
	ScriptTypeMultisig
	ScriptTypeNullData // OP_RETURN
)

// Script execution errors.
var (
	ErrScriptStackUnderflow  = errors.New("bitcoin: script stack underflow")
	ErrScriptOpReturn        = errors.New("bitcoin: OP_RETURN")
	ErrScriptUnbalancedIf    = errors.New("bitcoin: mismatched OP_IF/OP_ENDIF")
	ErrScriptNumberTooWide   = errors.New("bitcoin: script number exceeds 4 input bytes")
	ErrScriptVerifyFailed    = errors.New("bitcoin: OP_VERIFY failed")
	ErrScriptUnimplementedOp = errors.New("bitcoin: unimplemented opcode")
)

// scriptOpError wraps a failing opcode so callers can identify which
// instruction faulted.
type scriptOpError struct {
	op  ScriptOpcode
	err error
}

func (e *scriptOpError) Error() string {
	return fmt.Sprintf("bitcoin: opcode %#02x: %v", byte(e.op), e.err)
}

func (e *scriptOpError) Unwrap() error { return e.err }

// ScriptEngine executes Bitcoin scripts
type ScriptEngine struct {
	stack    [][]byte
	altStack [][]byte
	script   Script
	pc       int

	lastCodeSeparator int

	// Execution flags
	flags ScriptFlags

	// Transaction context for signature verification
	tx       *Transaction
	txIdx    int
	prevOuts []TxOutput
}

// ScriptFlags control script execution behavior
type ScriptFlags uint32

const (
	ScriptFlagsNone                                ScriptFlags = 0
	ScriptVerifyP2SH                               ScriptFlags = 1 << 0 // BIP16
	ScriptVerifyStrictEnc                          ScriptFlags = 1 << 1 // Strict DER encoding
	ScriptVerifyDERSig                             ScriptFlags = 1 << 2 // Strict DER signatures
	ScriptVerifyLowS                               ScriptFlags = 1 << 3 // Low S values
	ScriptVerifyNullDummy                          ScriptFlags = 1 << 4 // Null dummy for multisig
	ScriptVerifySigPushOnly                        ScriptFlags = 1 << 5 // Only push operations in scriptSig
	ScriptVerifyMinimalData                        ScriptFlags = 1 << 6 // Minimal pushdata operations
	ScriptVerifyDiscourageUpgradableNops           ScriptFlags = 1 << 7
	ScriptVerifyCleanStack                         ScriptFlags = 1 << 8  // Clean stack after execution
	ScriptVerifyCheckLockTimeVerify                ScriptFlags = 1 << 9  // BIP65
	ScriptVerifyCheckSequenceVerify                ScriptFlags = 1 << 10 // BIP112
	ScriptVerifyWitness                            ScriptFlags = 1 << 11 // BIP141
	ScriptVerifyDiscourageUpgradableWitnessProgram ScriptFlags = 1 << 12
	ScriptVerifyMinimalIf                          ScriptFlags = 1 << 13
	ScriptVerifyNullFail                           ScriptFlags = 1 << 14
	ScriptVerifyWitnessPubkeyType                  ScriptFlags = 1 << 15
	ScriptVerifyConstScriptCode                    ScriptFlags = 1 << 16 // BIP342
	ScriptVerifyTaproot                            ScriptFlags = 1 << 17 // BIP340/341/342
)

// NewScriptEngine creates a new script execution engine
func NewScriptEngine(script Script, tx *Transaction, txIdx int, prevOuts []TxOutput, flags ScriptFlags) *ScriptEngine {
	return &ScriptEngine{
		stack:    make([][]byte, 0, 16),
		altStack: make([][]byte, 0, 16),
		script:   script,
		pc:       0,
		flags:    flags,
		tx:       tx,
		txIdx:    txIdx,
		prevOuts: prevOuts,
	}
}

// condFrame tracks one nested OP_IF/OP_NOTIF block: executing reflects
// whether the currently active branch runs (taking into account all
// enclosing frames); taken records whether some branch in this frame has
// already executed, so OP_ELSE knows to skip rather than flip on.
type condFrame struct {
	executing bool
	taken     bool
}

// Execute runs the script and returns true iff the top stack element is
// truthy after execution and no error occurred. The first error is sticky:
// it aborts the run and fails the script.
func (se *ScriptEngine) Execute() (bool, error) {
	var conds []condFrame

	for se.pc < len(se.script) {
		opcode := ScriptOpcode(se.script[se.pc])
		se.pc++

		skip := false
		for _, f := range conds {
			if !f.executing {
				skip = true
				break
			}
		}

		switch opcode {
		case OP_IF, OP_NOTIF:
			var branchTrue bool
			if !skip {
				top, err := se.pop()
				if err != nil {
					return false, &scriptOpError{opcode, err}
				}
				branchTrue = isTrue(top)
				if opcode == OP_NOTIF {
					branchTrue = !branchTrue
				}
			}
			conds = append(conds, condFrame{executing: !skip && branchTrue, taken: !skip && branchTrue})
			continue
		case OP_ELSE:
			if len(conds) == 0 {
				return false, &scriptOpError{opcode, ErrScriptUnbalancedIf}
			}
			top := &conds[len(conds)-1]
			parentOK := true
			for _, f := range conds[:len(conds)-1] {
				if !f.executing {
					parentOK = false
				}
			}
			top.executing = parentOK && !top.taken
			if parentOK {
				top.taken = true
			}
			continue
		case OP_ENDIF:
			if len(conds) == 0 {
				return false, &scriptOpError{opcode, ErrScriptUnbalancedIf}
			}
			conds = conds[:len(conds)-1]
			continue
		}

		if skip {
			if opcode >= 1 && opcode <= 75 {
				n := int(opcode)
				if se.pc+n > len(se.script) {
					return false, &scriptOpError{opcode, fmt.Errorf("push exceeds script bounds")}
				}
				se.pc += n
			} else if w := pushdataOperandWidth(se.script, se.pc-1); w > 0 {
				se.pc += w - 1
			}
			continue
		}

		if err := se.executeOpcode(opcode); err != nil {
			return false, err
		}
	}

	if len(conds) != 0 {
		return false, ErrScriptUnbalancedIf
	}

	if len(se.stack) == 0 {
		return false, nil
	}
	return isTrue(se.stack[len(se.stack)-1]), nil
}

func (se *ScriptEngine) pop() ([]byte, error) {
	if len(se.stack) < 1 {
		return nil, ErrScriptStackUnderflow
	}
	top := se.stack[len(se.stack)-1]
	se.stack = se.stack[:len(se.stack)-1]
	return top, nil
}

func (se *ScriptEngine) push(v []byte) { se.stack = append(se.stack, v) }

func (se *ScriptEngine) requireDepth(n int) error {
	if len(se.stack) < n {
		return ErrScriptStackUnderflow
	}
	return nil
}

// executeOpcode executes a single opcode
func (se *ScriptEngine) executeOpcode(opcode ScriptOpcode) error {
	switch opcode {
	case OP_0:
		se.push([]byte{})
	case OP_1NEGATE:
		se.push(numToBytes(-1))
	case OP_1, OP_2, OP_3, OP_4, OP_5, OP_6, OP_7, OP_8, OP_9, OP_10,
		OP_11, OP_12, OP_13, OP_14, OP_15, OP_16:
		se.push([]byte{byte(opcode) - byte(OP_1) + 1})

	case OP_NOP, OP_NOP1, OP_NOP4, OP_NOP5, OP_NOP6, OP_NOP7, OP_NOP8, OP_NOP9, OP_NOP10:
		// no-op

	case OP_RETURN:
		return &scriptOpError{opcode, ErrScriptOpReturn}

	case OP_VERIFY:
		top, err := se.pop()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		if !isTrue(top) {
			return &scriptOpError{opcode, ErrScriptVerifyFailed}
		}

	case OP_TOALTSTACK:
		v, err := se.pop()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		se.altStack = append(se.altStack, v)

	case OP_FROMALTSTACK:
		if len(se.altStack) < 1 {
			return &scriptOpError{opcode, ErrScriptStackUnderflow}
		}
		v := se.altStack[len(se.altStack)-1]
		se.altStack = se.altStack[:len(se.altStack)-1]
		se.push(v)

	case OP_DUP:
		if err := se.requireDepth(1); err != nil {
			return &scriptOpError{opcode, err}
		}
		top := se.stack[len(se.stack)-1]
		se.push(append([]byte{}, top...))

	case OP_2DUP:
		if err := se.requireDepth(2); err != nil {
			return &scriptOpError{opcode, err}
		}
		n := len(se.stack)
		se.push(append([]byte{}, se.stack[n-2]...))
		se.push(append([]byte{}, se.stack[n-1]...))

	case OP_3DUP:
		if err := se.requireDepth(3); err != nil {
			return &scriptOpError{opcode, err}
		}
		n := len(se.stack)
		se.push(append([]byte{}, se.stack[n-3]...))
		se.push(append([]byte{}, se.stack[n-2]...))
		se.push(append([]byte{}, se.stack[n-1]...))

	case OP_DROP:
		if _, err := se.pop(); err != nil {
			return &scriptOpError{opcode, err}
		}

	case OP_2DROP:
		if err := se.requireDepth(2); err != nil {
			return &scriptOpError{opcode, err}
		}
		se.stack = se.stack[:len(se.stack)-2]

	case OP_NIP:
		if err := se.requireDepth(2); err != nil {
			return &scriptOpError{opcode, err}
		}
		n := len(se.stack)
		se.stack = append(se.stack[:n-2], se.stack[n-1])

	case OP_OVER:
		if err := se.requireDepth(2); err != nil {
			return &scriptOpError{opcode, err}
		}
		n := len(se.stack)
		se.push(append([]byte{}, se.stack[n-2]...))

	case OP_SWAP:
		if err := se.requireDepth(2); err != nil {
			return &scriptOpError{opcode, err}
		}
		n := len(se.stack)
		se.stack[n-1], se.stack[n-2] = se.stack[n-2], se.stack[n-1]

	case OP_2SWAP:
		if err := se.requireDepth(4); err != nil {
			return &scriptOpError{opcode, err}
		}
		n := len(se.stack)
		se.stack[n-4], se.stack[n-2] = se.stack[n-2], se.stack[n-4]
		se.stack[n-3], se.stack[n-1] = se.stack[n-1], se.stack[n-3]

	case OP_TUCK:
		if err := se.requireDepth(2); err != nil {
			return &scriptOpError{opcode, err}
		}
		n := len(se.stack)
		top := append([]byte{}, se.stack[n-1]...)
		se.stack = append(se.stack[:n-2], top, se.stack[n-2], se.stack[n-1])

	case OP_ROT:
		if err := se.requireDepth(3); err != nil {
			return &scriptOpError{opcode, err}
		}
		n := len(se.stack)
		se.stack[n-3], se.stack[n-2], se.stack[n-1] = se.stack[n-2], se.stack[n-1], se.stack[n-3]

	case OP_IFDUP:
		if err := se.requireDepth(1); err != nil {
			return &scriptOpError{opcode, err}
		}
		top := se.stack[len(se.stack)-1]
		if isTrue(top) {
			se.push(append([]byte{}, top...))
		}

	case OP_DEPTH:
		se.push(numToBytes(int64(len(se.stack))))

	case OP_SIZE:
		if err := se.requireDepth(1); err != nil {
			return &scriptOpError{opcode, err}
		}
		top := se.stack[len(se.stack)-1]
		se.push(numToBytes(int64(len(top))))

	case OP_EQUAL:
		if err := se.requireDepth(2); err != nil {
			return &scriptOpError{opcode, err}
		}
		b, _ := se.pop()
		a, _ := se.pop()
		se.push(boolBytes(bytes.Equal(a, b)))

	case OP_EQUALVERIFY:
		if err := se.executeOpcode(OP_EQUAL); err != nil {
			return err
		}
		return se.executeOpcode(OP_VERIFY)

	case OP_1ADD, OP_1SUB, OP_NEGATE, OP_ABS, OP_NOT, OP_0NOTEQUAL:
		top, err := se.popNum(opcode)
		if err != nil {
			return err
		}
		var result int64
		switch opcode {
		case OP_1ADD:
			result = top + 1
		case OP_1SUB:
			result = top - 1
		case OP_NEGATE:
			result = -top
		case OP_ABS:
			if top < 0 {
				result = -top
			} else {
				result = top
			}
		case OP_NOT:
			if top == 0 {
				result = 1
			}
		case OP_0NOTEQUAL:
			if top != 0 {
				result = 1
			}
		}
		se.push(numToBytes(result))

	case OP_ADD, OP_SUB, OP_BOOLAND, OP_BOOLOR, OP_NUMEQUAL, OP_NUMNOTEQUAL,
		OP_LESSTHAN, OP_GREATERTHAN, OP_LESSTHANOREQUAL, OP_GREATERTHANOREQUAL,
		OP_MIN, OP_MAX:
		b, err := se.popNum(opcode)
		if err != nil {
			return err
		}
		a, err := se.popNum(opcode)
		if err != nil {
			return err
		}
		switch opcode {
		case OP_ADD:
			se.push(numToBytes(a + b))
		case OP_SUB:
			se.push(numToBytes(a - b))
		case OP_BOOLAND:
			se.push(boolBytes(a != 0 && b != 0))
		case OP_BOOLOR:
			se.push(boolBytes(a != 0 || b != 0))
		case OP_NUMEQUAL:
			se.push(boolBytes(a == b))
		case OP_NUMNOTEQUAL:
			se.push(boolBytes(a != b))
		case OP_LESSTHAN:
			se.push(boolBytes(a < b))
		case OP_GREATERTHAN:
			se.push(boolBytes(a > b))
		case OP_LESSTHANOREQUAL:
			se.push(boolBytes(a <= b))
		case OP_GREATERTHANOREQUAL:
			se.push(boolBytes(a >= b))
		case OP_MIN:
			if a < b {
				se.push(numToBytes(a))
			} else {
				se.push(numToBytes(b))
			}
		case OP_MAX:
			if a > b {
				se.push(numToBytes(a))
			} else {
				se.push(numToBytes(b))
			}
		}

	case OP_NUMEQUALVERIFY:
		if err := se.executeOpcode(OP_NUMEQUAL); err != nil {
			return err
		}
		return se.executeOpcode(OP_VERIFY)

	case OP_WITHIN:
		max, err := se.popNum(opcode)
		if err != nil {
			return err
		}
		min, err := se.popNum(opcode)
		if err != nil {
			return err
		}
		x, err := se.popNum(opcode)
		if err != nil {
			return err
		}
		se.push(boolBytes(x >= min && x < max))

	case OP_RIPEMD160:
		data, err := se.pop()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		h := Ripemd160Sum(data)
		se.push(h[:])

	case OP_SHA1:
		data, err := se.pop()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		h := Sha1Sum(data)
		se.push(h[:])

	case OP_SHA256:
		data, err := se.pop()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		h := Sha256Sum(data)
		se.push(h[:])

	case OP_HASH160:
		data, err := se.pop()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		h := Hash160Sum(data)
		se.push(h[:])

	case OP_HASH256:
		data, err := se.pop()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		h := DoubleHashSHA256(data)
		se.push(h[:])

	case OP_CODESEPARATOR:
		se.lastCodeSeparator = se.pc

	case OP_CHECKSIG:
		ok, err := se.checkSig()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		se.push(boolBytes(ok))

	case OP_CHECKSIGVERIFY:
		if err := se.executeOpcode(OP_CHECKSIG); err != nil {
			return err
		}
		return se.executeOpcode(OP_VERIFY)

	case OP_CHECKMULTISIG:
		ok, err := se.checkMultisig()
		if err != nil {
			return &scriptOpError{opcode, err}
		}
		se.push(boolBytes(ok))

	case OP_CHECKMULTISIGVERIFY:
		if err := se.executeOpcode(OP_CHECKMULTISIG); err != nil {
			return err
		}
		return se.executeOpcode(OP_VERIFY)

	default:
		if opcode >= 1 && opcode <= 75 {
			n := int(opcode)
			if se.pc+n > len(se.script) {
				return &scriptOpError{opcode, fmt.Errorf("push operation exceeds script bounds")}
			}
			data := se.script[se.pc : se.pc+n]
			se.pc += n
			se.push(append([]byte{}, data...))
		} else if opcode == OP_PUSHDATA1 || opcode == OP_PUSHDATA2 || opcode == OP_PUSHDATA4 {
			data, err := se.readPushdata(opcode)
			if err != nil {
				return &scriptOpError{opcode, err}
			}
			se.push(data)
		} else {
			return &scriptOpError{opcode, ErrScriptUnimplementedOp}
		}
	}

	return nil
}

func (se *ScriptEngine) readPushdata(opcode ScriptOpcode) ([]byte, error) {
	var lenBytes int
	switch opcode {
	case OP_PUSHDATA1:
		lenBytes = 1
	case OP_PUSHDATA2:
		lenBytes = 2
	case OP_PUSHDATA4:
		lenBytes = 4
	}
	if se.pc+lenBytes > len(se.script) {
		return nil, fmt.Errorf("pushdata length exceeds script bounds")
	}
	var n int
	switch lenBytes {
	case 1:
		n = int(se.script[se.pc])
	case 2:
		n = int(binary.LittleEndian.Uint16(se.script[se.pc : se.pc+2]))
	case 4:
		n = int(binary.LittleEndian.Uint32(se.script[se.pc : se.pc+4]))
	}
	se.pc += lenBytes
	if se.pc+n > len(se.script) {
		return nil, fmt.Errorf("pushdata payload exceeds script bounds")
	}
	data := se.script[se.pc : se.pc+n]
	se.pc += n
	return append([]byte{}, data...), nil
}

// popNum pops and decodes a script number (little-endian magnitude, sign
// in the high bit of the last byte, input limited to 4 bytes).
func (se *ScriptEngine) popNum(opcode ScriptOpcode) (int64, error) {
	v, err := se.pop()
	if err != nil {
		return 0, &scriptOpError{opcode, err}
	}
	if len(v) > 4 {
		return 0, &scriptOpError{opcode, ErrScriptNumberTooWide}
	}
	return bytesToNum(v), nil
}

// checkSig implements OP_CHECKSIG: pop pubkey then signature; the
// signature's last byte is the sighash type; the remainder is DER.
func (se *ScriptEngine) checkSig() (bool, error) {
	if err := se.requireDepth(2); err != nil {
		return false, err
	}
	pubKeyBytes, _ := se.pop()
	sigBytes, _ := se.pop()
	if len(sigBytes) == 0 || len(pubKeyBytes) == 0 {
		return false, nil
	}

	sigType := SigHashType(sigBytes[len(sigBytes)-1])
	derBytes := sigBytes[:len(sigBytes)-1]

	sig, err := DecodeDERSignature(derBytes)
	if err != nil {
		return false, nil
	}
	pub, err := DecodeSEC(pubKeyBytes)
	if err != nil {
		return false, nil
	}

	if se.tx == nil {
		return false, fmt.Errorf("bitcoin: OP_CHECKSIG requires a transaction context")
	}

	code := NewScriptCode(se.script, se.lastCodeSeparator)
	digest, err := SigHash(se.tx, se.txIdx, code, sigType)
	if err != nil {
		return false, err
	}
	z := new(big.Int).SetBytes(digest[:])
	return ecc.Verify(z, ecc.Signature{R: sig.R, S: sig.S}, pub), nil
}

// checkMultisig implements OP_CHECKMULTISIG: pop n, pop n pubkeys
// (reverse order), pop m, pop m signatures, pop one extra dummy
// element. Signatures must match pubkeys in order, advancing through the
// pubkey list as each signature is matched; the pubkey list may contain
// unused keys but every signature must find a match without the list being
// exhausted.
func (se *ScriptEngine) checkMultisig() (bool, error) {
	nBytes, err := se.popNum(OP_CHECKMULTISIG)
	if err != nil {
		return false, err
	}
	n := int(nBytes)
	if n < 0 || n > 20 {
		return false, fmt.Errorf("bitcoin: OP_CHECKMULTISIG n out of range: %d", n)
	}
	if err := se.requireDepth(n); err != nil {
		return false, err
	}
	pubKeys := make([][]byte, n)
	for i := n - 1; i >= 0; i-- {
		pubKeys[i], _ = se.pop()
	}

	mBytes, err := se.popNum(OP_CHECKMULTISIG)
	if err != nil {
		return false, err
	}
	m := int(mBytes)
	if m < 1 || m > n {
		return false, fmt.Errorf("bitcoin: OP_CHECKMULTISIG m out of range: %d (n=%d)", m, n)
	}
	if err := se.requireDepth(m); err != nil {
		return false, err
	}
	sigs := make([][]byte, m)
	for i := m - 1; i >= 0; i-- {
		sigs[i], _ = se.pop()
	}

	// Historical off-by-one: one extra stack element must be popped and is
	// discarded.
	if _, err := se.pop(); err != nil {
		return false, err
	}

	if se.tx == nil {
		return false, fmt.Errorf("bitcoin: OP_CHECKMULTISIG requires a transaction context")
	}
	code := NewScriptCode(se.script, se.lastCodeSeparator)

	keyIdx := 0
	for _, sigBytes := range sigs {
		if len(sigBytes) == 0 {
			return false, nil
		}
		sigType := SigHashType(sigBytes[len(sigBytes)-1])
		der := sigBytes[:len(sigBytes)-1]
		sig, err := DecodeDERSignature(der)
		if err != nil {
			return false, nil
		}
		digest, err := SigHash(se.tx, se.txIdx, code, sigType)
		if err != nil {
			return false, err
		}
		z := new(big.Int).SetBytes(digest[:])

		matched := false
		for keyIdx < len(pubKeys) {
			pub, err := DecodeSEC(pubKeys[keyIdx])
			keyIdx++
			if err != nil {
				continue
			}
			if ecc.Verify(z, ecc.Signature{R: sig.R, S: sig.S}, pub) {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}

	return true, nil
}

// isTrue returns true if the byte slice represents a true value
func isTrue(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0 {
			return true
		}
	}
	last := data[len(data)-1]
	return last != 0 && last != 0x80
}

func boolBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{}
}

// Script size constants
const (
	P2PKHScriptSize        = 25 // OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
	P2SHScriptSize         = 23 // OP_HASH160 <20-byte hash> OP_EQUAL
	P2WPKHScriptSize       = 22 // OP_0 <20-byte hash>
	P2WSHScriptSize        = 34 // OP_0 <32-byte hash>
	P2TRScriptSize         = 34 // OP_1 <32-byte key>
	CompressedPubKeySize   = 33 // 0x02/0x03 + 32 bytes
	UncompressedPubKeySize = 65 // 0x04 + 64 bytes
	Hash160Size            = 20 // RIPEMD160 output
	Hash256Size            = 32 // SHA256 output
)

// AnalyzeScript determines the type of a script
func (s Script) AnalyzeScript() ScriptType {
	if len(s) == 0 {
		return ScriptTypeUnknown
	}

	if len(s) == P2PKHScriptSize &&
		s[0] == byte(OP_DUP) &&
		s[1] == byte(OP_HASH160) &&
		s[2] == Hash160Size &&
		s[23] == byte(OP_EQUALVERIFY) &&
		s[24] == byte(OP_CHECKSIG) {
		return ScriptTypeP2PKH
	}

	if len(s) == P2SHScriptSize &&
		s[0] == byte(OP_HASH160) &&
		s[1] == Hash160Size &&
		s[22] == byte(OP_EQUAL) {
		return ScriptTypeP2SH
	}

	if len(s) >= 35 && s[len(s)-1] == byte(OP_CHECKSIG) {
		if s[0] == CompressedPubKeySize && (s[1] == 0x02 || s[1] == 0x03) {
			return ScriptTypeP2PK
		}
		if len(s) >= 67 && s[0] == UncompressedPubKeySize && s[1] == 0x04 {
			return ScriptTypeP2PK
		}
	}

	if len(s) == P2WPKHScriptSize && s[0] == byte(OP_0) && s[1] == Hash160Size {
		return ScriptTypeP2WPKH
	}

	if len(s) == P2WSHScriptSize && s[0] == byte(OP_0) && s[1] == Hash256Size {
		return ScriptTypeP2WSH
	}

	if len(s) == P2TRScriptSize && s[0] == byte(OP_1) && s[1] == Hash256Size {
		return ScriptTypeP2TR
	}

	if len(s) >= 4 && s[len(s)-1] == byte(OP_CHECKMULTISIG) {
		if s[0] >= 0x51 && s[0] <= 0x60 {
			if s[len(s)-2] >= 0x51 && s[len(s)-2] <= 0x60 {
				return ScriptTypeMultisig
			}
		}
	}

	if len(s) > 0 && s[0] == byte(OP_RETURN) {
		return ScriptTypeNullData
	}

	return ScriptTypeUnknown
}

// IsStandard returns true if the script is considered standard
func (s Script) IsStandard() bool {
	scriptType := s.AnalyzeScript()
	switch scriptType {
	case ScriptTypeP2PKH, ScriptTypeP2SH, ScriptTypeP2WPKH, ScriptTypeP2WSH, ScriptTypeP2TR, ScriptTypeP2PK:
		return true
	case ScriptTypeNullData:
		return len(s) <= 80
	case ScriptTypeMultisig:
		return s.isStandardMultisig()
	default:
		return false
	}
}

// isStandardMultisig checks if a multisig script meets standardness rules
func (s Script) isStandardMultisig() bool {
	if len(s) < 4 || s[len(s)-1] != byte(OP_CHECKMULTISIG) {
		return false
	}
	if s[0] < 0x51 || s[0] > 0x53 {
		return false
	}
	if s[len(s)-2] < 0x51 || s[len(s)-2] > 0x53 {
		return false
	}
	m := s[0] - 0x50
	n := s[len(s)-2] - 0x50
	return m <= n && n <= 3
}

// GetStack returns a copy of the current execution stack
func (se *ScriptEngine) GetStack() [][]byte {
	stack := make([][]byte, len(se.stack))
	for i, item := range se.stack {
		stack[i] = append([]byte{}, item...)
	}
	return stack
}

// SetScript updates the script being executed and resets the program
// counter and OP_CODESEPARATOR position, but preserves the data stack, so
// an unlock script's pushes remain available to the lock script that runs
// next.
func (se *ScriptEngine) SetScript(script Script) {
	se.script = script
	se.pc = 0
	se.lastCodeSeparator = 0
}

// bytesToNum converts Bitcoin script number format (little-endian
// magnitude, sign bit in the high bit of the last byte) to int64.
func bytesToNum(data []byte) int64 {
	if len(data) == 0 {
		return 0
	}
	var result int64
	negative := data[len(data)-1]&0x80 != 0
	for i := len(data) - 1; i >= 0; i-- {
		b := data[i]
		if i == len(data)-1 {
			b &^= 0x80
		}
		result = result<<8 | int64(b)
	}
	if negative {
		result = -result
	}
	return result
}

// numToBytes converts int64 to Bitcoin script number format.
func numToBytes(num int64) []byte {
	if num == 0 {
		return []byte{}
	}

	negative := num < 0
	abs := num
	if negative {
		abs = -abs
	}

	var result []byte
	for abs > 0 {
		result = append(result, byte(abs&0xff))
		abs >>= 8
	}

	if result[len(result)-1]&0x80 != 0 {
		if negative {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if negative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// opcodeWidth returns how many bytes, starting at i, the opcode (plus any
// push operand) at script[i] occupies. Used by NewScriptCode to walk a
// script without executing it.
func opcodeWidth(script []byte, i int) int {
	op := script[i]
	switch {
	case op >= 1 && op <= 75:
		return 1 + int(op)
	case op == byte(OP_PUSHDATA1):
		if i+2 > len(script) {
			return 1
		}
		return 2 + int(script[i+1])
	case op == byte(OP_PUSHDATA2):
		if i+3 > len(script) {
			return 1
		}
		return 3 + int(binary.LittleEndian.Uint16(script[i+1:i+3]))
	case op == byte(OP_PUSHDATA4):
		if i+5 > len(script) {
			return 1
		}
		return 5 + int(binary.LittleEndian.Uint32(script[i+1:i+5]))
	default:
		return 1
	}
}

// pushdataOperandWidth mirrors opcodeWidth but only for the PUSHDATA family,
// used by Execute's skip-branch to advance the program counter correctly
// inside a non-taken OP_IF branch without re-pushing data.
func pushdataOperandWidth(script []byte, i int) int {
	op := script[i]
	if op == byte(OP_PUSHDATA1) || op == byte(OP_PUSHDATA2) || op == byte(OP_PUSHDATA4) {
		return opcodeWidth(script, i)
	}
	return 0
}
