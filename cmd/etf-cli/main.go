package main

import (
	"etf/cmd/etf-cli/cmd"
)

func main() {
	cmd.Execute()
}
