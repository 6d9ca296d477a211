package state

import (
	"errors"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// ErrKnownBlock is returned from ProcessPeerBlock when the block is
// already part of the chain. Duplicate delivery is normal on a gossip
// network and must not trigger another re-broadcast.
var ErrKnownBlock = errors.New("block already integrated")

// ProcessPeerBlock takes a block received from a peer and attempts to
// extend the chain with it. Any in-progress local mining for this slot
// is cancelled first: even if the peer block turns out to be invalid,
// the chain tip may be contested and the miner rebuilds its candidate.
// On success the caller re-broadcasts the block exactly once. An append
// failure means the peer is on a different or longer chain, the caller
// follows up by requesting that peer's full chain.
func (s *State) ProcessPeerBlock(block ledger.Block) error {
	s.evHandler("state: ProcessPeerBlock: started: block[%d] %s", block.Number, block.Hash)
	defer s.evHandler("state: ProcessPeerBlock: completed")

	if s.integrated.Contains(block.Hash) {
		return ErrKnownBlock
	}

	// The mining goroutine can't start another attempt until done is
	// called, which lets this state change finish first.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	return s.acceptBlock(block)
}

// ProcessPeerChain takes a full chain received from a peer and attempts
// to adopt it wholesale under the longest valid chain rule. There is no
// partial adoption: a candidate with one broken link is rejected whole.
// On success the mempool is pruned of transactions the new chain
// already carries and the archive is rewritten.
func (s *State) ProcessPeerChain(blocks []ledger.Block) error {
	s.evHandler("state: ProcessPeerChain: started: %d blocks", len(blocks))
	defer s.evHandler("state: ProcessPeerChain: completed")

	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.chain.Replace(blocks); err != nil {
		return err
	}

	s.integrated.Clear()
	for _, block := range s.chain.Blocks() {
		s.integrated.Add(block.Hash)
		for _, tx := range block.Trans {
			s.mempool.Delete(tx)
		}
	}

	if err := s.archive.Reset(); err != nil {
		s.evHandler("state: ProcessPeerChain: WARNING: archive reset: %s", err)
		return nil
	}
	for _, block := range s.chain.Blocks() {
		if err := s.archive.Write(block); err != nil {
			s.evHandler("state: ProcessPeerChain: WARNING: archive write: %s", err)
			break
		}
	}

	return nil
}
