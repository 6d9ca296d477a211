// Package accounts derives account balances from the chain. Balances are
// never stored, they are a view computed by replaying every transaction
// in block order and then transaction order within each block. Replays
// are cheap at this scale, so no cache invalidation problem exists.
package accounts

import (
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// Balances replays every transaction across the specified blocks and
// returns the resulting balance for each account seen. Accounts never
// seen have an implicit balance of zero. Balances may go negative, spend
// validity is not enforced at this layer.
func Balances(blocks []ledger.Block) map[string]float64 {
	balances := make(map[string]float64)

	for _, block := range blocks {
		for _, tx := range block.Trans {
			balances[tx.FromID] -= tx.Value
			balances[tx.ToID] += tx.Value
		}
	}

	return balances
}

// BalanceOf replays the chain and returns the balance for the one
// specified account.
func BalanceOf(blocks []ledger.Block, account string) float64 {
	var balance float64

	for _, block := range blocks {
		for _, tx := range block.Trans {
			if tx.FromID == account {
				balance -= tx.Value
			}
			if tx.ToID == account {
				balance += tx.Value
			}
		}
	}

	return balance
}
