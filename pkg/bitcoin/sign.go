package bitcoin

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/bitcoinecho/btcprim/pkg/ecc"
)

// ErrUnsupportedLockingScript is returned by the input signers when the
// previous output's locking script does not match the template the signer
// handles.
var ErrUnsupportedLockingScript = errors.New("bitcoin: locking script does not match the expected template")

// ErrKeyMismatch is returned when the supplied secret does not control the
// previous output being signed.
var ErrKeyMismatch = errors.New("bitcoin: secret does not control the previous output")

// SignP2PKHInput signs input inputIdx of tx, which must spend a P2PKH
// output resolved through lookup, and installs the final unlock script on
// the input. The public key is serialized compressed or uncompressed,
// whichever hashes to the key hash the locking script commits to.
func SignP2PKHInput(tx *Transaction, inputIdx int, secret *big.Int, lookup PreviousOutputLookup, sigType SigHashType) error {
	if inputIdx < 0 || inputIdx >= len(tx.Inputs) {
		return fmt.Errorf("bitcoin: input index %d out of range", inputIdx)
	}
	prevOut, ok := lookup(tx.Inputs[inputIdx].PreviousOutput)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPreviousOutputNotFound, tx.Inputs[inputIdx].PreviousOutput)
	}
	lock := Script(prevOut.ScriptPubKey)
	if lock.AnalyzeScript() != ScriptTypeP2PKH {
		return ErrUnsupportedLockingScript
	}

	pub, err := ecc.ScalarBaseMul(secret)
	if err != nil {
		return fmt.Errorf("bitcoin: derive public key: %w", err)
	}
	wantHash := lock[3:23]
	var secBytes []byte
	for _, compressed := range []bool{true, false} {
		sec, err := EncodeSEC(pub, compressed)
		if err != nil {
			return fmt.Errorf("bitcoin: encode public key: %w", err)
		}
		h := Hash160Sum(sec)
		if bytes.Equal(h[:], wantHash) {
			secBytes = sec
			break
		}
	}
	if secBytes == nil {
		return ErrKeyMismatch
	}

	digest, err := SigHash(tx, inputIdx, P2pkhLockingScript(prevOut.ScriptPubKey), sigType)
	if err != nil {
		return err
	}
	z := new(big.Int).SetBytes(digest[:])
	sig, err := ecc.Sign(z, secret)
	if err != nil {
		return err
	}
	der := append(EncodeDERSignature(sig.R, sig.S), byte(sigType))

	tx.Inputs[inputIdx].ScriptSig = P2PKHUnlockingScript(der, secBytes)
	tx.InvalidateCache()
	return nil
}

// SignP2SHMultisigInput signs input inputIdx of tx, which must spend a
// P2SH output whose redeem script is an OP_CHECKMULTISIG script, with each
// of the supplied secrets in order, and installs the final unlock script
// (dummy element, signatures, serialized redeem script) on the input.
func SignP2SHMultisigInput(tx *Transaction, inputIdx int, redeemScript Script, secrets []*big.Int, lookup PreviousOutputLookup, sigType SigHashType) error {
	if inputIdx < 0 || inputIdx >= len(tx.Inputs) {
		return fmt.Errorf("bitcoin: input index %d out of range", inputIdx)
	}
	prevOut, ok := lookup(tx.Inputs[inputIdx].PreviousOutput)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPreviousOutputNotFound, tx.Inputs[inputIdx].PreviousOutput)
	}
	lock := Script(prevOut.ScriptPubKey)
	if lock.AnalyzeScript() != ScriptTypeP2SH {
		return ErrUnsupportedLockingScript
	}
	scriptHash := Hash160Sum(redeemScript)
	if !bytes.Equal(scriptHash[:], lock[2:22]) {
		return fmt.Errorf("%w: redeem script hash does not match the locking script", ErrUnsupportedLockingScript)
	}

	digest, err := SigHash(tx, inputIdx, RedeemScript(redeemScript), sigType)
	if err != nil {
		return err
	}
	z := new(big.Int).SetBytes(digest[:])

	// OP_CHECKMULTISIG pops one element below the signatures; OP_0 supplies
	// it.
	unlock := []byte{byte(OP_0)}
	for i, secret := range secrets {
		sig, err := ecc.Sign(z, secret)
		if err != nil {
			return fmt.Errorf("bitcoin: sign with secret %d: %w", i, err)
		}
		unlock = pushBytes(unlock, append(EncodeDERSignature(sig.R, sig.S), byte(sigType)))
	}

	tx.Inputs[inputIdx].ScriptSig = P2SHUnlockingScript(unlock, redeemScript)
	tx.InvalidateCache()
	return nil
}
