package state

import (
	"context"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// MineNewBlock builds a candidate from the pending transactions plus the
// mining reward and performs the proof of work. The result goes back
// through the serialized mutation path and is re-validated there: if the
// chain advanced while we were mining, the append fails and the stale
// block is discarded, which is expected under concurrent mining, not a
// fault.
func (s *State) MineNewBlock(ctx context.Context, beneficiary string) (ledger.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: build candidate for %q", beneficiary)

	reward := ledger.Tx{
		FromID: s.genesis.RewardAccount,
		ToID:   beneficiary,
		Value:  s.genesis.MiningReward,
	}
	trans := append(s.mempool.Copy(), reward)

	candidate := ledger.New(s.RetrieveLatestBlock(), trans)

	block, err := ledger.POW(ctx, candidate, s.genesis.Difficulty, s.evHandler)
	if err != nil {
		return ledger.Block{}, err
	}

	// One last look before touching state, cancellation may have raced
	// the solution.
	if ctx.Err() != nil {
		return ledger.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: integrate block[%d] %s", block.Number, block.Hash)

	if err := s.acceptBlock(block); err != nil {
		return ledger.Block{}, err
	}

	return block, nil
}
