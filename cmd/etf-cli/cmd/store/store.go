package store

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/syndtr/goleveldb/leveldb"

	"etf/cli"
	"etf/config"
	"etf/log"
	termstore "etf/store"
)

var lgr = log.WithModule("term-store")

var cmd = &cobra.Command{
	Use:   "store",
	Short: "Stores and retrieves encoded terms in the local term store.",
}

func AddCmd(root *cobra.Command) {
	root.AddCommand(cmd)
}

func openDB(cobraCmd *cobra.Command) (*leveldb.DB, error) {
	homeDir := cli.GetHomeDir(cobraCmd)
	if err := config.EnsureHomeDir(homeDir); err != nil {
		return nil, errors.Wrap(err, "error ensuring home directory")
	}
	cfg, err := cli.GetConfig(cobraCmd)
	if err != nil {
		return nil, err
	}
	return termstore.Open(config.ExpandDBPath(homeDir, cfg.Store.Path))
}
