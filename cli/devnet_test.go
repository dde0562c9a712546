package cli

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canlink-project/canlink/launchpad"
	"github.com/canlink-project/canlink/node/config"
	"github.com/canlink-project/canlink/wallet"
)

func newDevnet(t *testing.T, cfg *config.Config) *Devnet {
	d, err := NewDevnet(cfg, promclient.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestLaunchpadCommandsAgainstDevnet(t *testing.T) {
	d := newDevnet(t, config.Default())
	app, _, buf := newTestApp(t, d.Replica, Commands...)

	run := func(args ...string) string {
		buf.Reset()
		require.NoError(t, app.Run(append([]string{"canlink"}, args...)))
		return buf.String()
	}

	require.Equal(t, "no tokens\n", run("tokens", "list"))

	out := run("call", "token-factory", "TokenFactory", "createToken",
		`[{"name":"Gold","symbol":"GLD","decimals":8,"totalSupply":1000000,"logo":[],"description":["shiny"]}]`)
	require.JSONEq(t, `{"ok":"tok-1"}`, out)

	batch := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(batch, []byte(`[
		{"name":"Silver","symbol":"SLV","decimals":6,"totalSupply":500,"logo":[],"description":[]},
		{"name":"Copper","symbol":"CPR","decimals":2,"totalSupply":7,"logo":[],"description":[]}
	]`), 0644))
	require.Equal(t, "tok-2\ntok-3\n", run("tokens", "create-batch", batch))

	// the whole batch is refused when any symbol is taken
	buf.Reset()
	err := app.Run([]string{"canlink", "tokens", "create-batch", batch})
	var ae *AppError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "Token already exists", ae.Message)
	require.Len(t, regexp.MustCompile(`(?m)^tok-\d`).FindAllString(run("tokens", "list"), -1), 3)

	end := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	saleID := strings.TrimSpace(run("sales", "create", "--token", "tok-1", "--price", "3",
		"--soft-cap", "100", "--hard-cap", "1000", "--end", end))
	require.Equal(t, "sale-1", saleID)

	require.Contains(t, run("sales", "contribute", saleID, "250"), "contributed 250")
	require.Contains(t, run("sales", "get", saleID), "Raised:   250")
	require.Contains(t, run("sales", "list", "--token", "tok-1"), saleID)
	require.Equal(t, "no sales\n", run("sales", "list", "--token", "tok-2"))
	require.Equal(t, "sale-1: ended\n", run("sales", "finalize", saleID))

	err = app.Run([]string{"canlink", "sales", "contribute", "sale-9", "1"})
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "Sale not found", ae.Message)

	require.Equal(t, "agent-1\n", run("agents", "register", "--name", "scout", "--token", "tok-1"))
	require.Contains(t, run("agents", "list"), "scout")

	details := run("tokens", "get", "tok-1")
	assert.Contains(t, details, "Gold (GLD)")
	assert.Contains(t, details, "1,000,000")
	assert.Contains(t, details, "Description: shiny")
	assert.Contains(t, details, "Sales:       1")

	st := run("wallet", "status")
	assert.Contains(t, st, "connected: yes")
	assert.Contains(t, st, "principal: 2vxsx-fae")
}

func TestDevnetPersistsState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Devnet.DatastorePath = filepath.Join(dir, "datastore")
	cfg.Devnet.JournalPath = dir

	session := func(d *Devnet) *launchpad.Session {
		ok, err := d.Wallet.Connect(ctx, wallet.ConnectOptions{})
		require.NoError(t, err)
		require.True(t, ok)
		s, err := launchpad.NewSession(d.Wallet, canisters(cfg))
		require.NoError(t, err)
		require.NoError(t, s.Verify(ctx))
		return s
	}

	d, err := NewDevnet(cfg, promclient.NewRegistry())
	require.NoError(t, err)
	res, err := session(d).Tokens.CreateToken(ctx, launchpad.TokenConfig{Name: "Gold", Symbol: "GLD", TotalSupply: 1})
	require.NoError(t, err)
	require.True(t, res.IsOk())
	require.NoError(t, d.Close())

	d = newDevnet(t, cfg)
	toks, err := session(d).Tokens.ListTokens(ctx)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, "GLD", toks[0].Symbol)

	_, err = os.Stat(filepath.Join(dir, "journal", "canlink-journal.ndjson"))
	require.NoError(t, err)
}

func TestDevnetPrintConfig(t *testing.T) {
	app, _, buf := newTestApp(t, nil, DevnetCmd)
	require.NoError(t, app.Run([]string{"canlink", "devnet", "--print-config"}))
	require.Contains(t, buf.String(), "[Canisters]")
	require.Contains(t, buf.String(), `#  TokenFactory = "token-factory"`)
}
