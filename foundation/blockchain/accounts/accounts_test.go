package accounts_test

import (
	"testing"

	"github.com/ledgermesh/ledgermesh/foundation/blockchain/accounts"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/ledger"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Balances(t *testing.T) {
	blocks := []ledger.Block{
		{Number: 0},
		{Number: 1, Trans: []ledger.Tx{
			{FromID: "network", ToID: "alice", Value: 100},
		}},
		{Number: 2, Trans: []ledger.Tx{
			{FromID: "alice", ToID: "bob", Value: 30},
			{FromID: "bob", ToID: "carol", Value: 10},
		}},
	}

	t.Log("Given the need to derive balances by replaying the chain.")
	{
		t.Log("\tTest 0:\tWhen replaying transfers in order.")
		{
			balances := accounts.Balances(blocks)

			expected := map[string]float64{
				"network": -100,
				"alice":   70,
				"bob":     20,
				"carol":   10,
			}

			for account, want := range expected {
				if got := balances[account]; got != want {
					t.Fatalf("\t%s\tTest 0:\tShould have balance %v for %s, got %v.", failed, want, account, got)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould derive the expected balance for every account.", success)

			var sum float64
			for _, bal := range balances {
				sum += bal
			}
			if sum != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould conserve value across all accounts, sum is %v.", failed, sum)
			}
			t.Logf("\t%s\tTest 0:\tShould conserve value across all accounts.", success)
		}

		t.Log("\tTest 1:\tWhen querying a single account.")
		{
			if got := accounts.BalanceOf(blocks, "alice"); got != 70 {
				t.Fatalf("\t%s\tTest 1:\tShould have balance 70 for alice, got %v.", failed, got)
			}
			t.Logf("\t%s\tTest 1:\tShould have balance 70 for alice.", success)

			if got := accounts.BalanceOf(blocks, "nobody"); got != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould have balance 0 for an unseen account, got %v.", failed, got)
			}
			t.Logf("\t%s\tTest 1:\tShould have balance 0 for an unseen account.", success)
		}

		t.Log("\tTest 2:\tWhen an account spends more than it holds.")
		{
			overdraft := []ledger.Block{
				{Number: 1, Trans: []ledger.Tx{
					{FromID: "alice", ToID: "bob", Value: 25},
				}},
			}

			if got := accounts.BalanceOf(overdraft, "alice"); got != -25 {
				t.Fatalf("\t%s\tTest 2:\tShould allow the balance to go negative, got %v.", failed, got)
			}
			t.Logf("\t%s\tTest 2:\tShould allow the balance to go negative.", success)
		}
	}
}
