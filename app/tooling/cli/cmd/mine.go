package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var mineAccount string

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Signal the node to mine a block crediting the given account.",
	Run: func(cmd *cobra.Command, args []string) {
		endpoint := fmt.Sprintf("%s/v1/mine", url)
		if mineAccount != "" {
			endpoint = fmt.Sprintf("%s/v1/mine/%s", url, mineAccount)
		}

		resp, err := http.Post(endpoint, "application/json", nil)
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		fmt.Println(string(body))
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&mineAccount, "account", "a", "", "Account credited with the reward. The node's beneficiary when empty.")
}
