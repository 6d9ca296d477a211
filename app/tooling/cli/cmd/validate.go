package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Ask the node to validate its local chain.",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(fmt.Sprintf("%s/v1/chain/validate", url))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		var result struct {
			Valid  bool   `json:"valid"`
			Height uint64 `json:"height"`
			Error  string `json:"error,omitempty"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			log.Fatal(err)
		}

		fmt.Println("valid: ", result.Valid)
		fmt.Println("height:", result.Height)
		if result.Error != "" {
			fmt.Println("error: ", result.Error)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
