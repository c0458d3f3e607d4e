package bitcoin

import "testing"

func TestUTXOSet_AddFindRemove(t *testing.T) {
	set := NewUTXOSet()
	txHash := DoubleHashSHA256([]byte("funding"))

	set.Add(NewUTXO(txHash, 0, 1000, []byte{0x76, 0xa9}))
	set.Add(NewUTXO(txHash, 1, 2500, []byte{0xa9, 0x14}))

	if set.Size() != 2 {
		t.Fatalf("Size = %d, want 2", set.Size())
	}

	utxo, ok := set.Find(txHash, 1)
	if !ok {
		t.Fatal("expected to find output 1")
	}
	if utxo.Amount() != 2500 {
		t.Errorf("Amount = %d, want 2500", utxo.Amount())
	}
	if utxo.OutputIndex() != 1 {
		t.Errorf("OutputIndex = %d, want 1", utxo.OutputIndex())
	}
	if utxo.TxHash() != txHash {
		t.Errorf("TxHash = %s, want %s", utxo.TxHash(), txHash)
	}

	if !set.Remove(txHash, 0) {
		t.Error("expected Remove of a present outpoint to succeed")
	}
	if set.Remove(txHash, 0) {
		t.Error("expected second Remove of the same outpoint to fail")
	}
	if set.Size() != 1 {
		t.Errorf("Size after remove = %d, want 1", set.Size())
	}
}

func TestUTXOSet_TotalValueAndValidateSpend(t *testing.T) {
	set := NewUTXOSet()
	txHash := DoubleHashSHA256([]byte("funding 2"))
	set.Add(NewUTXO(txHash, 0, 1000, nil))
	set.Add(NewUTXO(txHash, 1, 500, nil))

	if total := set.TotalValue(); total != 1500 {
		t.Errorf("TotalValue = %d, want 1500", total)
	}

	if !set.ValidateSpend(txHash, 0, 1000) {
		t.Error("spend of the exact amount should validate")
	}
	if set.ValidateSpend(txHash, 1, 501) {
		t.Error("spend exceeding the output amount should not validate")
	}
	if set.ValidateSpend(txHash, 9, 1) {
		t.Error("spend of a missing output should not validate")
	}
}

func TestUTXO_ScriptPubKeyIsCopied(t *testing.T) {
	script := []byte{0x76, 0xa9}
	utxo := NewUTXO(DoubleHashSHA256([]byte("x")), 0, 1, script)

	script[0] = 0x00
	if utxo.ScriptPubKey()[0] != 0x76 {
		t.Error("NewUTXO should copy the script, not alias the caller's slice")
	}
}

func TestUTXOSet_Clear(t *testing.T) {
	set := NewUTXOSet()
	set.Add(NewUTXO(DoubleHashSHA256([]byte("y")), 0, 1, nil))
	set.Clear()
	if set.Size() != 0 {
		t.Errorf("Size after Clear = %d, want 0", set.Size())
	}
	if got := len(set.GetAllUTXOs()); got != 0 {
		t.Errorf("GetAllUTXOs after Clear returned %d entries", got)
	}
}
