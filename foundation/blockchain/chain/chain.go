// Package chain implements the validated block sequence and the fork
// resolution rules. A Chain value is not safe for concurrent use, the
// state package serializes every mutation behind its own mutex.
package chain

import (
	"errors"
	"fmt"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/genesis"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/signature"
)

// ErrInvalidBlock is returned from Append when a block can't extend the
// chain. The caller discards the block, the chain is left unchanged.
var ErrInvalidBlock = errors.New("invalid block")

// ErrRejectedChain is returned from Replace when a candidate chain is
// not valid or not strictly longer than the current chain.
var ErrRejectedChain = errors.New("rejected chain")

// =============================================================================

// GenesisBlock derives the well-known genesis block from the genesis
// configuration. Every node with the same configuration produces the
// exact same block, which is what lets chains from different nodes be
// compared at all.
func GenesisBlock(gen genesis.Genesis) ledger.Block {
	b := ledger.Block{
		Number:        0,
		TimeStamp:     uint64(gen.Date.UTC().Unix()),
		Trans:         nil,
		PrevBlockHash: signature.ZeroHash,
		Nonce:         0,
	}
	b.Hash = b.CalculateHash()

	return b
}

// Validate checks an entire sequence of blocks forms a valid chain: the
// genesis block matches the well-known genesis exactly, block numbers
// are contiguous from zero, every block links to its predecessor's hash,
// every hash recomputes from the block's own fields, and every block
// after genesis solves the proof of work. Validate is pure, it rejects
// malformed input without panicking and mutates nothing.
func Validate(gen genesis.Genesis, blocks []ledger.Block) error {
	if len(blocks) == 0 {
		return fmt.Errorf("chain has no blocks: %w", ErrInvalidBlock)
	}

	// The hash covers every other field, so a matching hash that also
	// recomputes correctly means the block is field for field the
	// genesis block this node knows.
	genBlock := GenesisBlock(gen)
	if blocks[0].Hash != genBlock.Hash || blocks[0].CalculateHash() != blocks[0].Hash {
		return fmt.Errorf("genesis block does not match: %w", ErrInvalidBlock)
	}

	for i := 1; i < len(blocks); i++ {
		b := blocks[i]

		if b.Number != uint64(i) {
			return fmt.Errorf("block number out of sequence, got %d, exp %d: %w", b.Number, i, ErrInvalidBlock)
		}

		if b.PrevBlockHash != blocks[i-1].Hash {
			return fmt.Errorf("block %d does not link to its parent: %w", b.Number, ErrInvalidBlock)
		}

		if b.CalculateHash() != b.Hash {
			return fmt.Errorf("block %d hash does not recompute: %w", b.Number, ErrInvalidBlock)
		}

		if !ledger.IsHashSolved(gen.Difficulty, b.Hash) {
			return fmt.Errorf("block %d hash does not solve the work problem: %w", b.Number, ErrInvalidBlock)
		}
	}

	return nil
}

// =============================================================================

// Chain maintains the ordered sequence of validated blocks. The node
// process owns its chain exclusively, peers only ever cause it to be
// extended by one block or replaced wholesale.
type Chain struct {
	genesis genesis.Genesis
	blocks  []ledger.Block
}

// New constructs a chain containing only the genesis block.
func New(gen genesis.Genesis) *Chain {
	return &Chain{
		genesis: gen,
		blocks:  []ledger.Block{GenesisBlock(gen)},
	}
}

// NewFromBlocks constructs a chain from an existing sequence of blocks,
// validating the whole sequence first. This is the archive load path.
func NewFromBlocks(gen genesis.Genesis, blocks []ledger.Block) (*Chain, error) {
	if err := Validate(gen, blocks); err != nil {
		return nil, err
	}

	c := Chain{
		genesis: gen,
		blocks:  append([]ledger.Block(nil), blocks...),
	}

	return &c, nil
}

// Height returns the number of blocks in the chain, which is also the
// number the next block must carry.
func (c *Chain) Height() uint64 {
	return uint64(len(c.blocks))
}

// Latest returns the block at the tip of the chain.
func (c *Chain) Latest() ledger.Block {
	return c.blocks[len(c.blocks)-1]
}

// Blocks returns a copy of the block sequence.
func (c *Chain) Blocks() []ledger.Block {
	return append([]ledger.Block(nil), c.blocks...)
}

// Append extends the chain by one block. The block must carry the next
// number, link to the current tip, recompute to its own hash and solve
// the proof of work. On any failure the chain is left untouched and
// ErrInvalidBlock is returned. A failure here is routine under
// concurrent mining, not a fault.
func (c *Chain) Append(block ledger.Block) error {
	if block.Number != c.Height() {
		return fmt.Errorf("block number is not the next number, got %d, exp %d: %w", block.Number, c.Height(), ErrInvalidBlock)
	}

	if block.PrevBlockHash != c.Latest().Hash {
		return fmt.Errorf("block %d does not link to the current tip: %w", block.Number, ErrInvalidBlock)
	}

	if block.CalculateHash() != block.Hash {
		return fmt.Errorf("block %d hash does not recompute: %w", block.Number, ErrInvalidBlock)
	}

	if !ledger.IsHashSolved(c.genesis.Difficulty, block.Hash) {
		return fmt.Errorf("block %d hash does not solve the work problem: %w", block.Number, ErrInvalidBlock)
	}

	c.blocks = append(c.blocks, block)

	return nil
}

// Replace swaps the entire block sequence for the candidate when the
// candidate validates and is strictly longer. This is the longest valid
// chain rule: equal length candidates are never adopted, keeping the
// current chain avoids nodes oscillating between equal forks. The swap
// is all or nothing, a candidate with any broken block is rejected
// whole, there is no partial adoption of a valid prefix.
func (c *Chain) Replace(candidate []ledger.Block) error {
	if err := Validate(c.genesis, candidate); err != nil {
		return fmt.Errorf("candidate did not validate: %v: %w", err, ErrRejectedChain)
	}

	if uint64(len(candidate)) <= c.Height() {
		return fmt.Errorf("candidate length %d is not longer than %d: %w", len(candidate), c.Height(), ErrRejectedChain)
	}

	c.blocks = append([]ledger.Block(nil), candidate...)

	return nil
}
