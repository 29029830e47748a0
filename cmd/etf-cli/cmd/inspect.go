package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"etf/codec"
	"etf/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarizes the structure of an ETF message.",
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

		compressed := len(data) > 1 && data[1] == codec.TagCompressed
		value, rest, err := codec.Unmarshal(data, opts)
		if err != nil {
			return err
		}

		repr := term.Repr(value)
		if len(repr) > 120 {
			repr = repr[:117] + "..."
		}
		rows := [][]string{
			{"Size", strconv.Itoa(len(data))},
			{"Compressed", strconv.FormatBool(compressed)},
			{"Kind", codec.KindOf(value)},
			{"Elements", strconv.Itoa(elementCount(value))},
			{"Trailing Bytes", strconv.Itoa(len(rest))},
			{"Term", repr},
		}

		if !isatty.IsTerminal(os.Stdout.Fd()) {
			for _, row := range rows {
				fmt.Printf("%s\t%s\n", row[0], row[1])
			}
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Field", "Value"})
		for _, row := range rows {
			table.Append(row)
		}
		table.Render()
		return nil
	},
}

func elementCount(v term.Term) int {
	switch val := v.(type) {
	case term.List:
		return len(val)
	case []term.Term:
		return len(val)
	case term.ImproperList:
		return len(val.Elements)
	case term.Tuple:
		return len(val)
	case *term.Map:
		return val.Len()
	case []byte:
		return len(val)
	case term.BitString:
		return len(val.Bytes)
	case string:
		return len(val)
	default:
		return 1
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
