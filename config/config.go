package config

import (
	"io"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"etf/codec"
)

type Config struct {
	LogLevel string      `mapstructure:"log_level"`
	Codec    CodecConfig `mapstructure:"codec"`
	Store    StoreConfig `mapstructure:"store"`
}

type CodecConfig struct {
	AtomRepresentation string `mapstructure:"atom_representation"`
	ByteStrings        string `mapstructure:"byte_strings"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

func ReadConfig(r io.Reader) (*Config, error) {
	decoder := toml.NewDecoder(r)
	decoder.SetTagName("mapstructure")
	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "error decoding config file")
	}
	return config, nil
}

// CodecOptions translates the configured representation names into codec
// options.
func (c *Config) CodecOptions() (*codec.Options, error) {
	opts := &codec.Options{}
	switch c.Codec.AtomRepresentation {
	case "", "atom":
		opts.AtomRepresentation = codec.AtomTerm
	case "str":
		opts.AtomRepresentation = codec.AtomString
	case "bytes":
		opts.AtomRepresentation = codec.AtomBytes
	default:
		return nil, errors.Errorf(
			"atom_representation is %q while expected: atom, str, bytes",
			c.Codec.AtomRepresentation)
	}
	switch c.Codec.ByteStrings {
	case "", "str":
		opts.ByteStrings = codec.ByteStringString
	case "bytes":
		opts.ByteStrings = codec.ByteStringBytes
	case "int_list":
		opts.ByteStrings = codec.ByteStringCodepointList
	default:
		return nil, errors.Errorf(
			"byte_strings is %q while expected: str, bytes, int_list",
			c.Codec.ByteStrings)
	}
	return opts, nil
}
