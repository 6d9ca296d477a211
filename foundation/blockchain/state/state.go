// Package state is the core API for the node and implements the
// consensus and synchronization rules. All chain mutation funnels
// through this package under a single mutex, mining and the network
// only ever hand results into that serialized path.
package state

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/chain"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/genesis"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/gossip"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/mempool"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/storage"
)

// EventHandler defines a function that is called when events occur in
// the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for mining and transaction sharing.
type Worker interface {
	Shutdown()
	SignalStartMining(beneficiary string)
	SignalCancelMining() (done func())
	SignalShareTx(tx ledger.Tx)
}

// PeerChannel represents the behavior required of the transport that
// carries gossip between peers.
type PeerChannel interface {
	Send(pr peer.Peer, msg gossip.Message) error
	Broadcast(msg gossip.Message)
	Dial(host string) error
	Peers() []peer.Peer
	Host() string
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Beneficiary string
	Genesis     genesis.Genesis
	Archive     storage.Archive
	Channel     PeerChannel
	KnownPeers  *peer.Set
	EvHandler   EventHandler
}

// State manages the blockchain node.
type State struct {
	mu sync.Mutex

	beneficiary string
	evHandler   EventHandler

	genesis    genesis.Genesis
	chain      *chain.Chain
	mempool    *mempool.Mempool
	archive    storage.Archive
	channel    PeerChannel
	knownPeers *peer.Set

	// integrated tracks the hashes of every block in the current chain
	// so duplicate deliveries are recognized without a chain scan.
	integrated mapset.Set

	Worker Worker
}

// New constructs the state for the node, reloading and validating any
// archived chain from a previous run.
func New(cfg Config) (*State, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	blocks, err := cfg.Archive.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	var bc *chain.Chain
	switch {
	case len(blocks) > 0:
		bc, err = chain.NewFromBlocks(cfg.Genesis, blocks)
		if err != nil {
			return nil, fmt.Errorf("archived chain is corrupt: %w", err)
		}
		ev("state: New: loaded %d blocks from the archive", len(blocks))

	default:
		bc = chain.New(cfg.Genesis)
		if err := cfg.Archive.Write(bc.Latest()); err != nil {
			return nil, fmt.Errorf("archiving genesis block: %w", err)
		}
	}

	integrated := mapset.NewSet()
	for _, block := range bc.Blocks() {
		integrated.Add(block.Hash)
	}

	state := State{
		beneficiary: cfg.Beneficiary,
		evHandler:   ev,
		genesis:     cfg.Genesis,
		chain:       bc,
		mempool:     mempool.New(),
		archive:     cfg.Archive,
		channel:     cfg.Channel,
		knownPeers:  cfg.KnownPeers,
		integrated:  integrated,
	}

	// The Worker is not set here. The call to worker.Run will assign
	// itself and start all the background processing.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	defer func() {
		s.archive.Close()
	}()

	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// acceptBlock runs a block through the serialized mutation path: append
// to the chain, drop its transactions from the mempool and archive it.
// Failures leave every piece of state untouched.
func (s *State) acceptBlock(block ledger.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.chain.Append(block); err != nil {
		return err
	}

	s.integrated.Add(block.Hash)

	for _, tx := range block.Trans {
		s.mempool.Delete(tx)
	}

	if err := s.archive.Write(block); err != nil {
		s.evHandler("state: acceptBlock: WARNING: archive write: %s", err)
	}

	return nil
}
