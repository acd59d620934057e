package main

import "github.com/canopy-network/committee/cmd/cli"

func main() {
	cli.Execute()
}
