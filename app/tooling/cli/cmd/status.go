package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the node's chain status.",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(fmt.Sprintf("%s/v1/node/status", url))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		var status struct {
			LatestBlockHash string `json:"latest_block_hash"`
			Height          uint64 `json:"height"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			log.Fatal(err)
		}

		fmt.Println("height:", status.Height)
		fmt.Println("latest:", status.LatestBlockHash)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
