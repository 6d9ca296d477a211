package state

import (
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
)

// SubmitTransaction accepts a locally submitted transaction into the
// pending pool and signals the worker to share it with peers.
func (s *State) SubmitTransaction(tx ledger.Tx) error {
	tx, err := ledger.NewTx(tx.FromID, tx.ToID, tx.Value)
	if err != nil {
		return err
	}

	n := s.mempool.Upsert(tx)
	s.evHandler("state: SubmitTransaction: added tx[%s]: pool size %d", tx, n)

	if s.Worker != nil {
		s.Worker.SignalShareTx(tx)
	}

	return nil
}

// UpsertPeerTransaction accepts a transaction shared by a peer into the
// pending pool. It reports whether the transaction was new to this node,
// which decides whether it gets forwarded along.
func (s *State) UpsertPeerTransaction(tx ledger.Tx) (bool, error) {
	if _, err := ledger.NewTx(tx.FromID, tx.ToID, tx.Value); err != nil {
		return false, err
	}

	before := s.mempool.Count()
	after := s.mempool.Upsert(tx)

	return after > before, nil
}

// =============================================================================

// AddKnownPeer records a peer in the known peer set. It reports whether
// the peer was new.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.RetrieveHost()) {
		return false
	}

	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer drops a peer from the known peer set.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}

// RetrieveKnownPeers returns the set of peers this node knows about,
// excluding itself.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.RetrieveHost())
}

// ConnectPeer dials a new peer and records it in the known peer set.
func (s *State) ConnectPeer(host string) error {
	if err := s.channel.Dial(host); err != nil {
		return err
	}

	s.AddKnownPeer(peer.New(host))

	return nil
}

// RetrieveConnectedPeers returns the peers with a live connection.
func (s *State) RetrieveConnectedPeers() []peer.Peer {
	return s.channel.Peers()
}
