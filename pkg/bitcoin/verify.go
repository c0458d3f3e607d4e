package bitcoin

import (
	"errors"
	"fmt"
)

// PreviousOutputLookup resolves a previous output referenced by an input.
// UTXOSet.Lookup is the natural implementation, but this is a plain
// function type so callers can back it with anything (a full node's
// chainstate, a test fixture map, ...).
type PreviousOutputLookup func(outpoint OutPoint) (TxOutput, bool)

// ErrPreviousOutputNotFound is returned when the lookup callback cannot
// resolve an input's previous output.
var ErrPreviousOutputNotFound = errors.New("bitcoin: previous output not found")

// ErrNegativeFee is returned when a transaction's outputs exceed its
// inputs.
var ErrNegativeFee = errors.New("bitcoin: transaction fee is negative")

// Fee computes a transaction's fee: the sum of input amounts minus the sum
// of output amounts.
func Fee(tx *Transaction, lookup PreviousOutputLookup) (int64, error) {
	var inTotal, outTotal int64
	for _, in := range tx.Inputs {
		prevOut, ok := lookup(in.PreviousOutput)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrPreviousOutputNotFound, in.PreviousOutput)
		}
		inTotal += int64(prevOut.Value)
	}
	for _, out := range tx.Outputs {
		outTotal += int64(out.Value)
	}
	fee := inTotal - outTotal
	if fee < 0 {
		return fee, ErrNegativeFee
	}
	return fee, nil
}

// FeeRate returns satoshis-per-byte for a transaction given its fee and
// serialized size.
func FeeRate(fee int64, vsize int) float64 {
	if vsize <= 0 {
		return 0
	}
	return float64(fee) / float64(vsize)
}

// VerifyInput evaluates one input's unlock script concatenated with its
// previous output's lock script, including the BIP16 P2SH re-execution.
func VerifyInput(tx *Transaction, inputIdx int, prevOut TxOutput, flags ScriptFlags) (bool, error) {
	if inputIdx < 0 || inputIdx >= len(tx.Inputs) {
		return false, fmt.Errorf("bitcoin: input index %d out of range", inputIdx)
	}
	in := tx.Inputs[inputIdx]

	engine := NewScriptEngine(Script(in.ScriptSig), tx, inputIdx, nil, flags)
	if _, err := engine.Execute(); err != nil {
		return false, err
	}
	// Snapshot the stack the scriptSig produced: BIP16 re-executes the
	// redeem script against this stack, not against whatever the lock
	// script leaves behind.
	sigStack := engine.GetStack()

	engine.SetScript(Script(prevOut.ScriptPubKey))
	ok, err := engine.Execute()
	if err != nil || !ok {
		return false, err
	}

	if flags&ScriptVerifyP2SH != 0 && Script(prevOut.ScriptPubKey).AnalyzeScript() == ScriptTypeP2SH {
		if len(sigStack) == 0 {
			return false, nil
		}
		// The top of the scriptSig's stack is the serialized redeem
		// script; the elements below it are the redeem script's inputs.
		redeemScript := sigStack[len(sigStack)-1]
		redeem := NewScriptEngine(Script(redeemScript), tx, inputIdx, nil, flags)
		redeem.stack = sigStack[:len(sigStack)-1]
		return redeem.Execute()
	}

	return true, nil
}

// VerifyTransaction checks that tx pays a non-negative fee and that every
// input's scripts evaluate successfully against its previous output.
func VerifyTransaction(tx *Transaction, lookup PreviousOutputLookup, flags ScriptFlags) error {
	if _, err := Fee(tx, lookup); err != nil {
		return err
	}
	for i, in := range tx.Inputs {
		prevOut, ok := lookup(in.PreviousOutput)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPreviousOutputNotFound, in.PreviousOutput)
		}
		ok2, err := VerifyInput(tx, i, prevOut, flags)
		if err != nil {
			return fmt.Errorf("bitcoin: input %d: %w", i, err)
		}
		if !ok2 {
			return fmt.Errorf("bitcoin: input %d: script evaluation failed", i)
		}
	}
	return nil
}
