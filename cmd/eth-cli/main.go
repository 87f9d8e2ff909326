package main

import "eth-gateway/cmd/eth-cli/cmd"

func main() {
	cmd.Execute()
}
