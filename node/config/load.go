package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"
)

// EnvPrefix prefixes environment overrides, e.g. CANLINK_REPLICA_URL.
const EnvPrefix = "CANLINK"

// FromFile loads config from a specified file overriding defaults specified in
// the def parameter. If file does not exist or is empty defaults are assumed.
func FromFile(path string, def *Config) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, xerrors.Errorf("expanding config path: %w", err)
	}
	file, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
		return FromReader(bytes.NewReader(nil), def)
	case err != nil:
		return nil, err
	}

	defer file.Close() //nolint:errcheck // The file is RO
	return FromReader(file, def)
}

// FromReader loads config from a reader instance, then applies environment
// overrides.
func FromReader(reader io.Reader, def *Config) (*Config, error) {
	cfg := def
	if cfg == nil {
		cfg = Default()
	}
	if _, err := toml.NewDecoder(reader).Decode(cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("processing env vars overrides: %s", err)
	}

	for _, p := range []*string{&cfg.Devnet.DatastorePath, &cfg.Devnet.JournalPath} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return nil, xerrors.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return cfg, nil
}

// ConfigComment renders cfg as TOML with every line commented out, for
// writing a starting config file.
func ConfigComment(cfg *Config) ([]byte, error) {
	buf := new(bytes.Buffer)
	_, _ = buf.WriteString("# Default config:\n")
	e := toml.NewEncoder(buf)
	if err := e.Encode(cfg); err != nil {
		return nil, xerrors.Errorf("encoding config: %w", err)
	}
	b := buf.Bytes()
	b = bytes.ReplaceAll(b, []byte("\n"), []byte("\n#"))
	b = bytes.ReplaceAll(b, []byte("#["), []byte("["))
	return b, nil
}
