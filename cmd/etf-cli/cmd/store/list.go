package store

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	termstore "etf/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists stored terms.",
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		db, err := openDB(cobraCmd)
		if err != nil {
			return err
		}
		defer db.Close()
		names, sizes, err := termstore.ListTerms(db)
		if err != nil {
			return err
		}

		if !isatty.IsTerminal(os.Stdout.Fd()) {
			for i, name := range names {
				fmt.Printf("%s\t%d\n", name, sizes[i])
			}
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Name", "Size"})
		for i, name := range names {
			table.Append([]string{name, strconv.Itoa(sizes[i])})
		}
		table.Render()
		return nil
	},
}

func init() {
	cmd.AddCommand(listCmd)
}
