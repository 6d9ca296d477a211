// Package storage defines the block archive used to carry the chain
// across runs. The chain itself is memory resident, the archive is a
// write-behind copy the node reloads and re-validates at startup.
package storage

import (
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// Archive is the behavior required for persisting blocks. Implementations
// must return blocks from ReadAll in block number order.
type Archive interface {
	Write(block ledger.Block) error
	ReadAll() ([]ledger.Block, error)
	Reset() error
	Close() error
}
