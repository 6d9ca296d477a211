// Package ledger defines the transaction and block data model for the
// blockchain. Values of these types are immutable once constructed, with
// the one exception of a candidate block whose nonce is mutated by the
// proof of work search.
package ledger

import (
	"fmt"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/signature"
)

// Tx is an atomic value transfer between two accounts. Accounts are free
// form strings, there is no signing or ownership check at this layer.
type Tx struct {
	FromID string  `json:"from"`
	ToID   string  `json:"to"`
	Value  float64 `json:"value"`
}

// NewTx constructs a new transaction and checks the amount is not
// negative. Spend validity is not checked here, balances are allowed to
// go negative by policy.
func NewTx(from string, to string, value float64) (Tx, error) {
	if value < 0 {
		return Tx{}, fmt.Errorf("transaction value can't be negative, got %v", value)
	}

	tx := Tx{
		FromID: from,
		ToID:   to,
		Value:  value,
	}

	return tx, nil
}

// UniqueKey returns a digest of the transaction fields. Transactions have
// structural identity, two transactions with the same fields are the same
// transaction as far as the pending pool is concerned.
func (tx Tx) UniqueKey() string {
	return signature.Hash(tx)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s -> %s (%v)", tx.FromID, tx.ToID, tx.Value)
}
