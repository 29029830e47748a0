package cmd

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"etf/cli"
	"etf/codec"
	"etf/term"
)

var encodeCompressed bool

var encodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Encodes a JSON document as an ETF message.",
	Long: `Encodes a JSON document as an ETF message. JSON objects become maps,
arrays become lists, and numbers become the smallest integer form that fits,
or floats when fractional. Output is written to the --out file, or stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args)
		if err != nil {
			return err
		}
		value, err := decodeJSON(data)
		if err != nil {
			return err
		}
		opts, err := codecOptions(cmd)
		if err != nil {
			return err
		}
		opts.EncodeHooks = map[string]codec.Hook{
			"json.Number": jsonNumberHook,
		}

		var encoded []byte
		if encodeCompressed {
			encoded, err = codec.MarshalCompressed(value, opts)
		} else {
			encoded, err = codec.Marshal(value, opts)
		}
		if err != nil {
			return err
		}
		return writeOutput(cmd, encoded)
	},
}

func decodeJSON(data []byte) (term.Term, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value term.Term
	if err := decoder.Decode(&value); err != nil {
		return nil, errors.Wrap(err, "error decoding JSON input")
	}
	return value, nil
}

// jsonNumberHook maps json.Number onto the narrowest numeric term.
func jsonNumberHook(v term.Term) (term.Term, error) {
	num := v.(json.Number)
	if n, err := num.Int64(); err == nil {
		return n, nil
	}
	if n, ok := new(big.Int).SetString(num.String(), 10); ok {
		return n, nil
	}
	f, err := num.Float64()
	if err != nil {
		return nil, errors.Wrapf(err, "unrepresentable number %s", num)
	}
	return f, nil
}

func writeOutput(cmd *cobra.Command, data []byte) error {
	out, err := cmd.Flags().GetString(cli.FlagOut)
	if err != nil {
		panic(err)
	}
	if out == "" || out == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0644)
}

func init() {
	encodeCmd.Flags().String(cli.FlagOut, "", "File to write the encoded message to.")
	encodeCmd.Flags().BoolVar(&encodeCompressed, "compressed", false, "Wrap the message in the zlib envelope.")
	rootCmd.AddCommand(encodeCmd)
}
