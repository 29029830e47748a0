package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"etf/cli"
	"etf/cmd/etf-cli/cmd/store"
)

var rootCmd = &cobra.Command{
	Use:   "etf-cli",
	Short: "Command-line codec for the Erlang External Term Format.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String(cli.FlagHome, "~/.etf-cli", "Home directory for the CLI's configuration and term store.")
	store.AddCmd(rootCmd)
}
