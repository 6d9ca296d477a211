// Package mempool maintains the pool of transactions waiting to be mined
// into a block. Insertion order is preserved because transaction order
// inside a block affects the balance replay.
package mempool

import (
	"sync"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// Mempool represents a pool of pending transactions keyed by their
// structural digest so resubmitting the same transaction is a no-op.
type Mempool struct {
	mu    sync.RWMutex
	index map[string]int
	txs   []ledger.Tx
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		index: make(map[string]int),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.txs)
}

// Upsert adds the transaction to the pool unless an identical one is
// already pending. It returns the new pool size.
func (mp *Mempool) Upsert(tx ledger.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := tx.UniqueKey()
	if i, exists := mp.index[key]; exists {
		mp.txs[i] = tx
		return len(mp.txs)
	}

	mp.index[key] = len(mp.txs)
	mp.txs = append(mp.txs, tx)

	return len(mp.txs)
}

// Delete removes the transaction from the pool if it is present. This is
// called when a block carrying the transaction is integrated.
func (mp *Mempool) Delete(tx ledger.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := tx.UniqueKey()
	i, exists := mp.index[key]
	if !exists {
		return
	}

	mp.txs = append(mp.txs[:i], mp.txs[i+1:]...)
	delete(mp.index, key)

	// Reindex the transactions that shifted down.
	for j := i; j < len(mp.txs); j++ {
		mp.index[mp.txs[j].UniqueKey()] = j
	}
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.index = make(map[string]int)
	mp.txs = nil
}

// Copy returns the pending transactions in insertion order.
func (mp *Mempool) Copy() []ledger.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return append([]ledger.Tx(nil), mp.txs...)
}
