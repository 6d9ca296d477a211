// This program provides a command line client for the node's public API.
package main

import "github.com/ledgermesh/ledgermesh/app/tooling/cli/cmd"

func main() {
	cmd.Execute()
}
