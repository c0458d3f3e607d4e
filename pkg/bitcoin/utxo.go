package bitcoin

// UTXO represents an Unspent Transaction Output
type UTXO struct {
	txHash       Hash256
	outputIndex  uint32
	amount       uint64
	scriptPubKey []byte
}

// NewUTXO creates a new UTXO
func NewUTXO(txHash Hash256, outputIndex uint32, amount uint64, scriptPubKey []byte) *UTXO {
	script := make([]byte, len(scriptPubKey))
	copy(script, scriptPubKey)
	return &UTXO{
		txHash:       txHash,
		outputIndex:  outputIndex,
		amount:       amount,
		scriptPubKey: script,
	}
}

// TxHash returns the transaction hash
func (u *UTXO) TxHash() Hash256 {
	return u.txHash
}

// OutputIndex returns the output index
func (u *UTXO) OutputIndex() uint32 {
	return u.outputIndex
}

// Amount returns the amount in satoshis
func (u *UTXO) Amount() uint64 {
	return u.amount
}

// ScriptPubKey returns the script public key
func (u *UTXO) ScriptPubKey() []byte {
	return u.scriptPubKey
}

// UTXOSet holds unspent transaction outputs keyed by outpoint.
type UTXOSet struct {
	utxos map[OutPoint]*UTXO
}

// NewUTXOSet creates a new UTXO set
func NewUTXOSet() *UTXOSet {
	return &UTXOSet{
		utxos: make(map[OutPoint]*UTXO),
	}
}

// Add adds a UTXO to the set
func (s *UTXOSet) Add(utxo *UTXO) {
	s.utxos[OutPoint{Hash: utxo.txHash, Index: utxo.outputIndex}] = utxo
}

// Remove removes a UTXO from the set
func (s *UTXOSet) Remove(txHash Hash256, outputIndex uint32) bool {
	key := OutPoint{Hash: txHash, Index: outputIndex}
	if _, exists := s.utxos[key]; exists {
		delete(s.utxos, key)
		return true
	}
	return false
}

// Find finds a UTXO in the set
func (s *UTXOSet) Find(txHash Hash256, outputIndex uint32) (*UTXO, bool) {
	utxo, exists := s.utxos[OutPoint{Hash: txHash, Index: outputIndex}]
	return utxo, exists
}

// Size returns the number of UTXOs in the set
func (s *UTXOSet) Size() int {
	return len(s.utxos)
}

// ValidateSpend reports whether the referenced output exists and carries at
// least the requested amount. Script validation is VerifyInput's job.
func (s *UTXOSet) ValidateSpend(txHash Hash256, outputIndex uint32, amount uint64) bool {
	utxo, exists := s.Find(txHash, outputIndex)
	if !exists {
		return false
	}
	return utxo.amount >= amount
}

// TotalValue calculates the total value of all UTXOs in the set
func (s *UTXOSet) TotalValue() uint64 {
	total := uint64(0)
	for _, utxo := range s.utxos {
		total += utxo.amount
	}
	return total
}

// GetAllUTXOs returns all UTXOs in the set
func (s *UTXOSet) GetAllUTXOs() []*UTXO {
	utxos := make([]*UTXO, 0, len(s.utxos))
	for _, utxo := range s.utxos {
		utxos = append(utxos, utxo)
	}
	return utxos
}

// Clear removes all UTXOs from the set
func (s *UTXOSet) Clear() {
	s.utxos = make(map[OutPoint]*UTXO)
}

// Lookup adapts the set into a PreviousOutputLookup, so it can back
// VerifyTransaction / Fee directly.
func (s *UTXOSet) Lookup(outpoint OutPoint) (TxOutput, bool) {
	utxo, ok := s.utxos[outpoint]
	if !ok {
		return TxOutput{}, false
	}
	return TxOutput{Value: utxo.amount, ScriptPubKey: utxo.scriptPubKey}, true
}
