// Package peer maintains the peer related information such as the set of
// known peers a node gossips with.
package peer

import (
	"sync"
)

// Peer represents information about a node in the network. The host is
// the advertised gossip address of the peer.
type Peer struct {
	Host string `json:"host"`
}

// New constructs a new peer value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match validates if the specified host matches this peer.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// Status represents information about the state of a node, returned from
// the status endpoint and used by peers to decide whether to reconcile.
type Status struct {
	LatestBlockHash string `json:"latest_block_hash"`
	Height          uint64 `json:"height"`
	KnownPeers      []Peer `json:"known_peers"`
}

// =============================================================================

// Set maintains the collection of peers known to a node.
type Set struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewSet constructs a new set to manage peer information.
func NewSet() *Set {
	return &Set{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new peer to the set. It reports whether the peer was not
// already present.
func (ps *Set) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}
	return true
}

// Remove removes a peer from the set.
func (ps *Set) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns the known peers, excluding the specified host so a node
// never gossips with itself.
func (ps *Set) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	return peers
}
