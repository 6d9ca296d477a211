package state

import (
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/gossip"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
)

// SendBlockToPeers announces a freshly mined block to every connected
// peer.
func (s *State) SendBlockToPeers(block ledger.Block) {
	s.evHandler("state: SendBlockToPeers: block[%d] %s", block.Number, block.Hash)
	s.channel.Broadcast(gossip.NewBlockMsg(block))
}

// SendTxToPeers shares a pending transaction with every connected peer.
func (s *State) SendTxToPeers(tx ledger.Tx) {
	s.evHandler("state: SendTxToPeers: tx[%s]", tx)
	s.channel.Broadcast(gossip.NewTranMsg(tx))
}

// Rebroadcast floods a message received from one peer out to the rest.
// The original message ID rides along so every node forwards a given
// message at most once.
func (s *State) Rebroadcast(msg gossip.Message) {
	s.channel.Broadcast(msg)
}

// RequestPeerChain asks one specific peer for its full chain. The reply
// arrives later as a ChainResponse message, or not at all, in which case
// no reconciliation happens this round.
func (s *State) RequestPeerChain(pr peer.Peer) {
	s.evHandler("state: RequestPeerChain: asking %s for its chain", pr)

	if err := s.channel.Send(pr, gossip.ChainRequestMsg()); err != nil {
		s.evHandler("state: RequestPeerChain: WARNING: %s", err)
	}
}

// SendChainTo answers a peer's chain request with this node's full
// chain.
func (s *State) SendChainTo(pr peer.Peer) {
	s.evHandler("state: SendChainTo: sending chain to %s", pr)

	if err := s.channel.Send(pr, gossip.ChainResponseMsg(s.QueryBlocks())); err != nil {
		s.evHandler("state: SendChainTo: WARNING: %s", err)
	}
}

// AnnounceChainRequest broadcasts a chain request to every connected
// peer. The periodic reconciliation round uses this to converge nodes
// that missed block announcements.
func (s *State) AnnounceChainRequest() {
	s.channel.Broadcast(gossip.ChainRequestMsg())
}
