package store

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"etf/cli"
	"etf/codec"
	termstore "etf/store"
	"etf/term"
)

var getRaw bool

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Retrieves a stored term and prints it in Erlang syntax.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		db, err := openDB(cobraCmd)
		if err != nil {
			return err
		}
		defer db.Close()
		data, err := termstore.GetTerm(db, args[0])
		if err != nil {
			return err
		}

		if getRaw {
			out, err := cobraCmd.Flags().GetString(cli.FlagOut)
			if err != nil {
				panic(err)
			}
			if out == "" || out == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(out, data, 0644)
		}

		cfg, err := cli.GetConfig(cobraCmd)
		if err != nil {
			return err
		}
		opts, err := cfg.CodecOptions()
		if err != nil {
			return err
		}
		value, _, err := codec.Unmarshal(data, opts)
		if err != nil {
			return err
		}
		fmt.Println(term.Repr(value))
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVar(&getRaw, "raw", false, "Write the encoded bytes instead of decoding.")
	getCmd.Flags().String(cli.FlagOut, "", "File to write raw bytes to.")
	cmd.AddCommand(getCmd)
}
