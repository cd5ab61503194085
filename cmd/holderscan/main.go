package main

import "github.com/smartmap-tools/holderscan/cmd/holderscan/cmd"

func main() {
	cmd.Execute()
}
