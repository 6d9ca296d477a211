package state

import (
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/accounts"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/chain"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/genesis"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
)

// RetrieveGenesis returns the genesis configuration.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveBeneficiary returns the account configured to receive this
// node's mining rewards.
func (s *State) RetrieveBeneficiary() string {
	return s.beneficiary
}

// RetrieveHost returns the gossip address of this node.
func (s *State) RetrieveHost() string {
	return s.channel.Host()
}

// RetrieveLatestBlock returns the block at the tip of the chain.
func (s *State) RetrieveLatestBlock() ledger.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Latest()
}

// QueryHeight returns the number of blocks in the chain.
func (s *State) QueryHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Height()
}

// QueryBlocks returns a copy of the full chain.
func (s *State) QueryBlocks() []ledger.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Blocks()
}

// QueryBalances returns the balances for every account seen on the
// chain, derived fresh from a replay of the current chain.
func (s *State) QueryBalances() map[string]float64 {
	return accounts.Balances(s.QueryBlocks())
}

// QueryBalanceOf returns the balance for one account.
func (s *State) QueryBalanceOf(account string) float64 {
	return accounts.BalanceOf(s.QueryBlocks(), account)
}

// QueryMempool returns a copy of the pending transactions.
func (s *State) QueryMempool() []ledger.Tx {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the number of pending transactions.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// ValidateChain runs the full chain validation and reports the result.
func (s *State) ValidateChain() error {
	return chain.Validate(s.genesis, s.QueryBlocks())
}

// RetrieveStatus returns this node's status as shared with peers.
func (s *State) RetrieveStatus() peer.Status {
	latest := s.RetrieveLatestBlock()

	return peer.Status{
		LatestBlockHash: latest.Hash,
		Height:          s.QueryHeight(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}
