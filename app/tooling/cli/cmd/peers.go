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

var peerHost string

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Print the node's known and connected peers.",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(fmt.Sprintf("%s/v1/node/peers", url))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		var peers struct {
			Known     []string `json:"known"`
			Connected []string `json:"connected"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&peers); err != nil {
			log.Fatal(err)
		}

		fmt.Println("known:    ", peers.Known)
		fmt.Println("connected:", peers.Connected)
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Ask the node to dial a new peer.",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := json.Marshal(struct {
			Host string `json:"host"`
		}{Host: peerHost})
		if err != nil {
			log.Fatal(err)
		}

		resp, err := http.Post(fmt.Sprintf("%s/v1/node/peers", url), "application/json", bytes.NewBuffer(data))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		fmt.Println(string(body))
	},
}

func init() {
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVarP(&peerHost, "host", "p", "", "host:port of the peer to dial.")
}
