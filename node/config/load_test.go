package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNothing(t *testing.T) {
	assert := assert.New(t)

	{
		cfg, err := FromFile(filepath.Join(t.TempDir(), "missing.toml"), Default())
		assert.Nil(err, "error should be nil")
		assert.Equal(Default(), cfg, "config from not existing file should be the same as default")
	}

	{
		cfg, err := FromReader(bytes.NewReader(nil), Default())
		assert.Nil(err, "error should be nil")
		assert.Equal(Default(), cfg, "config from empty file should be the same as default")
	}
}

func TestParitalConfig(t *testing.T) {
	assert := assert.New(t)
	cfgString := `
		[Replica]
		Timeout = "10s"
		[Wallet]
		Whitelist = ["token-factory"]
		`
	expected := Default()
	expected.Replica.Timeout = Duration(10 * time.Second)
	expected.Wallet.Whitelist = []string{"token-factory"}

	cfg, err := FromReader(strings.NewReader(cfgString), Default())
	assert.NoError(err)
	assert.Equal(expected, cfg, "config from reader should contain changes")

	f, err := os.CreateTemp(t.TempDir(), "config-*.toml")
	require.NoError(t, err)
	_, err = f.WriteString(cfgString)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err = FromFile(f.Name(), Default())
	assert.NoError(err)
	assert.Equal(expected, cfg, "config from file should contain changes")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CANLINK_REPLICA_URL", "http://replica:9999/rpc/v0")
	t.Setenv("CANLINK_WALLET_CONNECTTIMEOUT", "3s")
	t.Setenv("CANLINK_CANISTERS_TOKENFACTORY", "tf-2")
	t.Setenv("CANLINK_DEVNET_JOURNALPATH", "~/.canlink")

	cfg, err := FromReader(strings.NewReader(`[Replica]
URL = "http://from-file"`), nil)
	require.NoError(t, err)
	require.Equal(t, "http://replica:9999/rpc/v0", cfg.Replica.URL, "env wins over file")
	require.Equal(t, Duration(3*time.Second), cfg.Wallet.ConnectTimeout)
	require.Equal(t, "tf-2", cfg.Canisters.TokenFactory)

	home, err := homedir.Dir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".canlink"), cfg.Devnet.JournalPath)
}

func TestConfigCommentRoundTrip(t *testing.T) {
	b, err := ConfigComment(Default())
	require.NoError(t, err)
	require.Contains(t, string(b), "[Replica]")
	require.Contains(t, string(b), `#  Timeout = "30s"`)

	// uncommented, the rendered defaults load back to the defaults
	plain := strings.ReplaceAll(string(b), "\n#", "\n")
	cfg, err := FromReader(strings.NewReader(plain), &Config{})
	require.NoError(t, err)
	require.Equal(t, Default().Replica, cfg.Replica)
}
