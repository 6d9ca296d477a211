package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	from  string
	to    string
	value float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a transaction to the node's mempool",
	Run: func(cmd *cobra.Command, args []string) {
		tx := struct {
			From  string  `json:"from"`
			To    string  `json:"to"`
			Value float64 `json:"value"`
		}{
			From:  from,
			To:    to,
			Value: value,
		}

		data, err := json.Marshal(tx)
		if err != nil {
			log.Fatal(err)
		}

		resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		fmt.Println(string(body))
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Account the funds come from.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account the funds go to.")
	sendCmd.Flags().Float64VarP(&value, "value", "v", 0, "Value to send.")
}
