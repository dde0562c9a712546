package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/filecoin-project/go-jsonrpc"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/api/client"
	"github.com/canlink-project/canlink/launchpad"
	"github.com/canlink-project/canlink/node/config"
	"github.com/canlink-project/canlink/principal"
	"github.com/canlink-project/canlink/wallet"
	"github.com/canlink-project/canlink/wallet/remotewallet"
)

var log = logging.Logger("cli")

const (
	metadataContext    = "context"
	metadataConfig     = "config"
	metadataReplicaAPI = "test-replica-api"
	metadataWalletSlot = "wallet-slot"
)

// ErrNoProvider is returned by commands needing a wallet when none has been
// injected.
var ErrNoProvider = xerrors.New("no wallet provider available")

var Commands = []*cli.Command{
	CallCmd,
	InterfaceCmd,
	TokensCmd,
	SalesCmd,
	AgentsCmd,
	WalletCmd,
	DevnetCmd,
}

// Flags are the global flags every command reads its configuration through.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "path to the config file",
		EnvVars: []string{"CANLINK_CONFIG"},
		Value:   "~/.canlink/config.toml",
	},
	&cli.StringFlag{
		Name:  "replica",
		Usage: "replica JSON-RPC endpoint, overrides the config",
	},
	&cli.StringFlag{
		Name:    "token",
		Usage:   "bearer token sent to the replica",
		EnvVars: []string{"CANLINK_TOKEN"},
	},
}

// ReqContext returns context for cli execution. Calling it for the first time
// installs SIGTERM handler that will close returned context.
// Not safe for concurrent execution.
func ReqContext(cctx *cli.Context) context.Context {
	if uctx, ok := cctx.App.Metadata[metadataContext]; ok {
		// unchecked cast as if something else is in there
		// it is crash worthy either way
		return uctx.(context.Context)
	}

	ctx, done := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 2)
	go func() {
		<-sigChan
		done()
	}()
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	cctx.App.Metadata[metadataContext] = ctx
	return ctx
}

// GetConfig loads the config named by --config once per app run and applies
// the flag overrides.
func GetConfig(cctx *cli.Context) (*config.Config, error) {
	if c, ok := cctx.App.Metadata[metadataConfig]; ok {
		return c.(*config.Config), nil
	}

	path := cctx.String("config")
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg = config.Default()
	} else if cfg, err = config.FromFile(path, config.Default()); err != nil {
		return nil, xerrors.Errorf("loading config %s: %w", path, err)
	}
	if r := cctx.String("replica"); r != "" {
		cfg.Replica.URL = r
	}
	if t := cctx.String("token"); t != "" {
		cfg.Replica.Token = t
	}

	cctx.App.Metadata[metadataConfig] = cfg
	return cfg, nil
}

func authHeader(token string) http.Header {
	if token == "" {
		return nil
	}
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

// GetReplicaAPI returns the replica API named by the config, or the one
// injected into app metadata by tests.
func GetReplicaAPI(cctx *cli.Context) (api.ReplicaAPI, jsonrpc.ClientCloser, error) {
	if tn, ok := cctx.App.Metadata[metadataReplicaAPI]; ok {
		return tn.(api.ReplicaAPI), func() {}, nil
	}

	cfg, err := GetConfig(cctx)
	if err != nil {
		return nil, nil, err
	}
	return client.NewReplicaRPC(ReqContext(cctx), cfg.Replica.URL, authHeader(cfg.Replica.Token))
}

func replicaDialer(cctx *cli.Context, token string) wallet.Dialer {
	if tn, ok := cctx.App.Metadata[metadataReplicaAPI]; ok {
		return func(ctx context.Context, host string) (api.ReplicaAPI, jsonrpc.ClientCloser, error) {
			return tn.(api.ReplicaAPI), func() {}, nil
		}
	}
	return wallet.RPCDialer(authHeader(token))
}

// ProviderSlot returns the slot wallet commands read their provider from.
func ProviderSlot(cctx *cli.Context) *wallet.Slot {
	if s, ok := cctx.App.Metadata[metadataWalletSlot]; ok {
		return s.(*wallet.Slot)
	}
	return wallet.Global
}

// InjectProvider is an app Before hook: it builds the provider the config
// asks for and injects it into the slot, unless one is there already.
func InjectProvider(cctx *cli.Context) error {
	slot := ProviderSlot(cctx)
	if slot.Available() {
		return nil
	}
	cfg, err := GetConfig(cctx)
	if err != nil {
		return err
	}

	if cfg.Wallet.RemoteURL != "" {
		rw, err := remotewallet.NewRemoteWallet(ReqContext(cctx), cfg.Wallet.RemoteURL, authHeader(cfg.Replica.Token))
		if err != nil {
			// commands report the empty slot
			log.Warnw("wallet daemon unavailable", "url", cfg.Wallet.RemoteURL, "error", err)
			return nil
		}
		slot.Inject(rw)
		return nil
	}

	identity := principal.Anonymous
	if cfg.Wallet.Principal != "" {
		if identity, err = principal.Decode(cfg.Wallet.Principal); err != nil {
			return xerrors.Errorf("wallet principal: %w", err)
		}
	}
	lp, err := wallet.NewLocalProvider(identity, replicaDialer(cctx, cfg.Replica.Token), cfg.Replica.URL, nil)
	if err != nil {
		return err
	}
	slot.Inject(lp)
	return nil
}

// GetProvider returns the injected provider, connecting it with the
// configured options when needed.
func GetProvider(cctx *cli.Context) (wallet.Provider, error) {
	p, ok := ProviderSlot(cctx).Get()
	if !ok {
		return nil, ErrNoProvider
	}
	ctx := ReqContext(cctx)

	connected, err := p.IsConnected(ctx)
	if err != nil {
		return nil, xerrors.Errorf("checking wallet connection: %w", err)
	}
	if connected {
		return p, nil
	}

	cfg, err := GetConfig(cctx)
	if err != nil {
		return nil, err
	}
	if _, err := p.Connect(ctx, connectOptions(cfg)); err != nil {
		return nil, xerrors.Errorf("connecting wallet: %w", err)
	}
	return p, nil
}

func connectOptions(cfg *config.Config) wallet.ConnectOptions {
	return wallet.ConnectOptions{
		Whitelist: cfg.Wallet.Whitelist,
		Host:      cfg.Wallet.Host,
		Timeout:   cfg.Wallet.ConnectTimeout.Std(),
	}
}

func canisters(cfg *config.Config) launchpad.Canisters {
	return launchpad.Canisters{
		TokenFactory:  launchpad.CanisterID(cfg.Canisters.TokenFactory),
		SaleManager:   launchpad.CanisterID(cfg.Canisters.SaleManager),
		AgentRegistry: launchpad.CanisterID(cfg.Canisters.AgentRegistry),
	}
}

// GetSession connects the provider and binds the launchpad clients.
func GetSession(cctx *cli.Context) (*launchpad.Session, error) {
	p, err := GetProvider(cctx)
	if err != nil {
		return nil, err
	}
	cfg, err := GetConfig(cctx)
	if err != nil {
		return nil, err
	}
	return launchpad.NewSession(p, canisters(cfg))
}
