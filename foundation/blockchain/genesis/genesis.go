// Package genesis maintains access to the genesis configuration. Every
// node in a network must run with the same genesis configuration or their
// chains will never reconcile.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the fixed configuration the chain starts from. The
// difficulty never retargets, it is a configuration point only.
type Genesis struct {
	Date          time.Time `json:"date"`           // Creation date, fixes the genesis block timestamp.
	ChainID       uint16    `json:"chain_id"`       // Unique id for this network.
	Difficulty    uint16    `json:"difficulty"`     // Leading zero hex characters required of a block hash, 1 to 64.
	MiningReward  float64   `json:"mining_reward"`  // Amount credited to the beneficiary of a mined block.
	RewardAccount string    `json:"reward_account"` // Well-known account the mining reward is drawn from.
}

// Default returns the genesis configuration nodes run with when no
// genesis file is provided.
func Default() Genesis {
	return Genesis{
		Date:          time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		ChainID:       1,
		Difficulty:    4,
		MiningReward:  100,
		RewardAccount: "network",
	}
}

// Load opens and consumes the specified genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
