// Package memory implements the block archive in memory. It is the
// default for a node run without an archive path and the implementation
// tests use.
package memory

import (
	"sync"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// Memory keeps the archived blocks in a slice.
type Memory struct {
	mu     sync.RWMutex
	blocks []ledger.Block
}

// New constructs an in-memory block archive.
func New() *Memory {
	return &Memory{}
}

// Write appends the block to the archive.
func (m *Memory) Write(block ledger.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = append(m.blocks, block)
	return nil
}

// ReadAll returns a copy of every archived block in block number order.
func (m *Memory) ReadAll() ([]ledger.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]ledger.Block(nil), m.blocks...), nil
}

// Reset drops every archived block.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// Close implements the Archive interface. There is nothing to release.
func (m *Memory) Close() error {
	return nil
}
