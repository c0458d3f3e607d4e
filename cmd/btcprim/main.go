// Command btcprim is a thin driver over the btcprim library: it signs a
// P2PKH input, serializes the resulting transaction, verifies it against a
// supplied previous output, and prints the signer's address. It exists to
// exercise the library end to end, not as a wallet.
package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bitcoinecho/btcprim/pkg/bitcoin"
	"github.com/bitcoinecho/btcprim/pkg/ecc"
)

const (
	Name    = "btcprim"
	Version = "0.1.0"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("%s %s\n", Name, Version)
			return
		case "help":
			printHelp()
			return
		}
	}

	if err := run(); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Printf("Usage: %s [version|help]\n", Name)
	fmt.Println("With no arguments, signs and verifies a demonstration P2PKH spend.")
}

func run() error {
	secret := new(big.Int).SetBytes(mustHex("f00dbabe00000000000000000000000000000000000000000000000000cafe01"))

	pub, err := ecc.ScalarBaseMul(secret)
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	secBytes, err := bitcoin.EncodeSEC(pub, true)
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}
	pkHash := bitcoin.Hash160Sum(secBytes)
	address := bitcoin.EncodeP2PKHAddress(pkHash, bitcoin.Mainnet)
	wif := bitcoin.EncodeWIF(secret, bitcoin.Mainnet, true)

	log.Info().Str("address", address).Str("wif", wif).Msg("derived signer identity")

	prevOut := bitcoin.TxOutput{
		Value:        100_000,
		ScriptPubKey: bitcoin.P2PKHLockingScript(pkHash),
	}
	prevTxid := bitcoin.DoubleHashSHA256([]byte("btcprim demonstration previous tx"))

	tx := &bitcoin.Transaction{
		Version: 1,
		Inputs: []bitcoin.TxInput{{
			PreviousOutput: bitcoin.OutPoint{Hash: prevTxid, Index: 0},
			Sequence:       0xffffffff,
		}},
		Outputs: []bitcoin.TxOutput{{
			Value:        95_000,
			ScriptPubKey: bitcoin.P2PKHLockingScript(pkHash),
		}},
		LockTime: 0,
	}

	lookup := func(op bitcoin.OutPoint) (bitcoin.TxOutput, bool) {
		if op == tx.Inputs[0].PreviousOutput {
			return prevOut, true
		}
		return bitcoin.TxOutput{}, false
	}

	if err := bitcoin.SignP2PKHInput(tx, 0, secret, lookup, bitcoin.SigHashAll); err != nil {
		return fmt.Errorf("sign input: %w", err)
	}

	raw, err := tx.Serialize()
	if err != nil {
		return fmt.Errorf("serialize transaction: %w", err)
	}
	log.Info().
		Hex("txid", reverseBytes(tx.Hash().Bytes())).
		Int("size_bytes", len(raw)).
		Msg("signed transaction")

	if err := bitcoin.VerifyTransaction(tx, lookup, bitcoin.ScriptVerifyP2SH); err != nil {
		return fmt.Errorf("verify transaction: %w", err)
	}

	fee, err := bitcoin.Fee(tx, lookup)
	if err != nil {
		return fmt.Errorf("compute fee: %w", err)
	}

	log.Info().
		Int64("fee_satoshis", fee).
		Float64("fee_rate_sat_per_byte", bitcoin.FeeRate(fee, len(raw))).
		Msg("transaction verified")

	return nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
