package store

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"etf/codec"
	termstore "etf/store"
)

var putCmd = &cobra.Command{
	Use:   "put <name> <file>",
	Short: "Stores an ETF message under a name.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		name := args[0]
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		// Validate before storing so the store only ever holds decodable
		// messages.
		if _, _, err := codec.Unmarshal(data, nil); err != nil {
			return errors.Wrap(err, "refusing to store undecodable message")
		}

		db, err := openDB(cobraCmd)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := termstore.PutTerm(db, name, data); err != nil {
			return err
		}
		lgr.Info("stored term", "name", name, "size", len(data))
		return nil
	},
}

func init() {
	cmd.AddCommand(putCmd)
}
