package chain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/chain"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/genesis"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func noEv(v string, args ...any) {}

// testGenesis keeps the difficulty low so mining in tests is fast.
func testGenesis() genesis.Genesis {
	gen := genesis.Default()
	gen.Difficulty = 1
	return gen
}

// mineOn builds and mines a block extending prev.
func mineOn(t *testing.T, gen genesis.Genesis, prev ledger.Block, trans []ledger.Tx) ledger.Block {
	t.Helper()

	block, err := ledger.POW(context.Background(), ledger.New(prev, trans), gen.Difficulty, noEv)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
	}

	return block
}

// =============================================================================

func Test_GenesisBlock(t *testing.T) {
	t.Log("Given the need to derive the genesis block from configuration.")
	{
		t.Log("\tTest 0:\tWhen two nodes share the same configuration.")
		{
			gen := testGenesis()
			b1 := chain.GenesisBlock(gen)
			b2 := chain.GenesisBlock(gen)

			if b1.Hash != b2.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould derive the identical block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the identical block.", success)

			if b1.Number != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould carry block number zero.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould carry block number zero.", success)
		}

		t.Log("\tTest 1:\tWhen configurations differ.")
		{
			gen2 := testGenesis()
			gen2.ChainID = 2

			if chain.GenesisBlock(testGenesis()).Hash == chain.GenesisBlock(gen2).Hash {
				t.Fatalf("\t%s\tTest 1:\tShould derive different blocks.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould derive different blocks.", success)
		}
	}
}

func Test_Append(t *testing.T) {
	gen := testGenesis()

	t.Log("Given the need to extend a chain one block at a time.")
	{
		t.Log("\tTest 0:\tWhen appending a properly mined block.")
		{
			c := chain.New(gen)
			tx, _ := ledger.NewTx("alice", "bob", 50)
			block := mineOn(t, gen, c.Latest(), []ledger.Tx{tx})

			if err := c.Append(block); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to append the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to append the block.", success)

			if c.Height() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould have a height of 2, got %d.", failed, c.Height())
			}
			t.Logf("\t%s\tTest 0:\tShould have a height of 2.", success)
		}

		t.Log("\tTest 1:\tWhen the block carries the wrong number.")
		{
			c := chain.New(gen)
			block := mineOn(t, gen, c.Latest(), nil)
			block.Number = 5
			block.Hash = block.CalculateHash()

			if err := c.Append(block); !errors.Is(err, chain.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the block.", success)
		}

		t.Log("\tTest 2:\tWhen the block does not link to the tip.")
		{
			c := chain.New(gen)
			orphan := ledger.Block{Number: 0, PrevBlockHash: "0xdead"}
			block := mineOn(t, gen, orphan, nil)

			if err := c.Append(block); !errors.Is(err, chain.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 2:\tShould reject the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the block.", success)
		}

		t.Log("\tTest 3:\tWhen a transaction was tampered with after mining.")
		{
			c := chain.New(gen)
			tx, _ := ledger.NewTx("alice", "bob", 50)
			block := mineOn(t, gen, c.Latest(), []ledger.Tx{tx})
			block.Trans[0].Value = 5000

			if err := c.Append(block); !errors.Is(err, chain.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 3:\tShould reject the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reject the block.", success)

			if c.Height() != 1 {
				t.Fatalf("\t%s\tTest 3:\tShould leave the chain unchanged.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould leave the chain unchanged.", success)
		}

		t.Log("\tTest 4:\tWhen the hash does not meet the difficulty.")
		{
			hard := testGenesis()
			hard.Difficulty = 8
			c := chain.New(hard)

			// Mined at difficulty 1, almost certainly not at 8.
			block := mineOn(t, gen, chain.GenesisBlock(hard), nil)
			if ledger.IsHashSolved(hard.Difficulty, block.Hash) {
				t.Skip("block accidentally solved the harder problem")
			}

			if err := c.Append(block); !errors.Is(err, chain.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 4:\tShould reject the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 4:\tShould reject the block.", success)
		}
	}
}

func Test_Validate(t *testing.T) {
	gen := testGenesis()

	// Build a valid 4 block chain to pick on.
	build := func(t *testing.T) *chain.Chain {
		c := chain.New(gen)
		for i := 0; i < 3; i++ {
			tx, _ := ledger.NewTx("alice", "bob", float64(10*(i+1)))
			if err := c.Append(mineOn(t, gen, c.Latest(), []ledger.Tx{tx})); err != nil {
				t.Fatalf("\t%s\tShould be able to build the chain: %v", failed, err)
			}
		}
		return c
	}

	t.Log("Given the need to validate entire chains.")
	{
		t.Log("\tTest 0:\tWhen the chain is intact.")
		{
			if err := chain.Validate(gen, chain.New(gen).Blocks()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould validate a genesis only chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould validate a genesis only chain.", success)

			c := build(t)
			if err := chain.Validate(gen, c.Blocks()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould validate the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould validate the chain.", success)
		}

		t.Log("\tTest 1:\tWhen a middle block was tampered with.")
		{
			blocks := build(t).Blocks()
			blocks[2].Trans[0].Value = 9999

			if err := chain.Validate(gen, blocks); !errors.Is(err, chain.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the chain.", success)
		}

		t.Log("\tTest 2:\tWhen a middle block was re-hashed after tampering.")
		{
			blocks := build(t).Blocks()
			blocks[2].Trans[0].Value = 9999
			blocks[2].Hash = blocks[2].CalculateHash()

			// The hash now recomputes but the next block no longer links,
			// and the new hash no longer solves the work problem.
			if err := chain.Validate(gen, blocks); !errors.Is(err, chain.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 2:\tShould reject the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the chain.", success)
		}

		t.Log("\tTest 3:\tWhen the genesis block is foreign.")
		{
			other := testGenesis()
			other.ChainID = 99

			c := chain.New(other)
			if err := chain.Validate(gen, c.Blocks()); !errors.Is(err, chain.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 3:\tShould reject the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reject the chain.", success)
		}

		t.Log("\tTest 4:\tWhen the chain is empty.")
		{
			if err := chain.Validate(gen, nil); !errors.Is(err, chain.ErrInvalidBlock) {
				t.Fatalf("\t%s\tTest 4:\tShould reject an empty chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 4:\tShould reject an empty chain.", success)
		}
	}
}

func Test_Replace(t *testing.T) {
	gen := testGenesis()

	extend := func(t *testing.T, c *chain.Chain, n int, account string) {
		for i := 0; i < n; i++ {
			tx, _ := ledger.NewTx(account, "bob", float64(i+1))
			if err := c.Append(mineOn(t, gen, c.Latest(), []ledger.Tx{tx})); err != nil {
				t.Fatalf("\t%s\tShould be able to extend the chain: %v", failed, err)
			}
		}
	}

	t.Log("Given the need to resolve forks with the longest valid chain rule.")
	{
		t.Log("\tTest 0:\tWhen a longer valid chain arrives.")
		{
			ours := chain.New(gen)
			extend(t, ours, 1, "alice")

			theirs := chain.New(gen)
			extend(t, theirs, 3, "carol")

			if err := ours.Replace(theirs.Blocks()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould adopt the longer chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould adopt the longer chain.", success)

			if ours.Height() != 4 || ours.Latest().Hash != theirs.Latest().Hash {
				t.Fatalf("\t%s\tTest 0:\tShould match the adopted chain's tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould match the adopted chain's tip.", success)
		}

		t.Log("\tTest 1:\tWhen an equal length chain arrives.")
		{
			ours := chain.New(gen)
			extend(t, ours, 2, "alice")
			tip := ours.Latest().Hash

			theirs := chain.New(gen)
			extend(t, theirs, 2, "carol")

			if err := ours.Replace(theirs.Blocks()); !errors.Is(err, chain.ErrRejectedChain) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the equal length chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the equal length chain.", success)

			if ours.Latest().Hash != tip {
				t.Fatalf("\t%s\tTest 1:\tShould keep the current chain.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the current chain.", success)
		}

		t.Log("\tTest 2:\tWhen a longer chain has one broken link.")
		{
			ours := chain.New(gen)
			extend(t, ours, 1, "alice")
			tip := ours.Latest().Hash

			theirs := chain.New(gen)
			extend(t, theirs, 4, "carol")

			blocks := theirs.Blocks()
			blocks[3].PrevBlockHash = "0xbroken"
			blocks[3].Hash = blocks[3].CalculateHash()

			if err := ours.Replace(blocks); !errors.Is(err, chain.ErrRejectedChain) {
				t.Fatalf("\t%s\tTest 2:\tShould reject the broken chain whole: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the broken chain whole.", success)

			if ours.Latest().Hash != tip {
				t.Fatalf("\t%s\tTest 2:\tShould keep the current chain with no partial adoption.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould keep the current chain with no partial adoption.", success)
		}

		t.Log("\tTest 3:\tWhen loading archived blocks through NewFromBlocks.")
		{
			ours := chain.New(gen)
			extend(t, ours, 2, "alice")

			reloaded, err := chain.NewFromBlocks(gen, ours.Blocks())
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould reload the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reload the chain.", success)

			if reloaded.Latest().Hash != ours.Latest().Hash {
				t.Fatalf("\t%s\tTest 3:\tShould preserve the tip across the reload.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould preserve the tip across the reload.", success)
		}
	}
}
