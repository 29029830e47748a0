package config

import (
	"bytes"
	"io"
	"os"
	"path"
	"text/template"

	"github.com/pkg/errors"

	"etf/log"
)

var DefaultConfig = Config{
	LogLevel: log.LevelInfo.String(),
	Codec: CodecConfig{
		AtomRepresentation: "atom",
		ByteStrings:        "str",
	},
	Store: StoreConfig{
		Path: DBPath,
	},
}

var defaultConfigTemplateText = `# Sets the logging level. Valid values are
# debug, info, warn, error, and fatal.
log_level = "{{.LogLevel}}"

# Configures how decoded terms map onto host values.
[codec]
  # Sets the decoded representation of atoms. Valid values are
  # atom, str, and bytes.
  atom_representation = "{{.Codec.AtomRepresentation}}"
  # Sets the decoded representation of byte strings (STRING_EXT).
  # Valid values are str, bytes, and int_list.
  byte_strings = "{{.Codec.ByteStrings}}"

# Configures the local term store.
[store]
  # Sets the store's database directory, relative to the home
  # directory unless absolute.
  path = "{{.Store.Path}}"
`

var defaultConfigTemplate *template.Template

func GenerateDefaultConfigFile() []byte {
	buf := new(bytes.Buffer)
	if err := defaultConfigTemplate.Execute(buf, DefaultConfig); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func ReadConfigFile(homeDir string) (*Config, error) {
	f, err := os.OpenFile(path.Join(homeDir, "config.toml"), os.O_RDONLY, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "error opening config file for reading")
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	return cfg, nil
}

func WriteDefaultConfigFile(homeDir string) error {
	f, err := os.OpenFile(path.Join(homeDir, "config.toml"), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return errors.Wrap(err, "error opening config file for writing")
	}
	defer f.Close()
	rd := bytes.NewReader(GenerateDefaultConfigFile())
	if _, err := io.Copy(f, rd); err != nil {
		return errors.Wrap(err, "error writing config file")
	}
	return nil
}

func init() {
	tmpl := template.New("defaultConfig")
	t, err := tmpl.Parse(defaultConfigTemplateText)
	if err != nil {
		panic(err)
	}
	defaultConfigTemplate = t
}
