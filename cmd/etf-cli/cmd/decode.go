package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"etf/cli"
	"etf/codec"
	"etf/log"
	"etf/term"
)

var lgr = log.WithModule("etf-cli")

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decodes an ETF message and prints it in Erlang syntax.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args)
		if err != nil {
			return err
		}
		opts, err := codecOptions(cmd)
		if err != nil {
			return err
		}

		value, rest, err := codec.Unmarshal(data, opts)
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			lgr.Warn("message has trailing bytes", "count", len(rest))
		}

		fmt.Println(term.Repr(value))
		return nil
	},
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func codecOptions(cmd *cobra.Command) (*codec.Options, error) {
	cfg, err := cli.GetConfig(cmd)
	if err != nil {
		return nil, err
	}
	if level, err := log.NewLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return cfg.CodecOptions()
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
