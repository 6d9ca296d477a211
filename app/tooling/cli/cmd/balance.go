package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

type balance struct {
	Account string  `json:"account"`
	Balance float64 `json:"balance"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

var account string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance of an account.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&account, "account", "a", "", "Account to query. All accounts when empty.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	endpoint := fmt.Sprintf("%s/v1/accounts/list", url)
	if account != "" {
		endpoint = fmt.Sprintf("%s/v1/accounts/list/%s", url, account)
	}

	resp, err := http.Get(endpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	var balances balances
	if err := decoder.Decode(&balances); err != nil {
		log.Fatal(err)
	}

	for _, bal := range balances.Balances {
		fmt.Printf("%s\t%v\n", bal.Account, bal.Balance)
	}
}
