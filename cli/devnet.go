package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	levelds "github.com/ipfs/go-ds-leveldb"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/tag"
	"go.uber.org/multierr"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/journal"
	"github.com/canlink-project/canlink/journal/fsjournal"
	"github.com/canlink-project/canlink/launchpad"
	"github.com/canlink-project/canlink/launchpad/mock"
	"github.com/canlink-project/canlink/metrics"
	"github.com/canlink-project/canlink/node/config"
	"github.com/canlink-project/canlink/principal"
	"github.com/canlink-project/canlink/replica"
	"github.com/canlink-project/canlink/wallet"
)

// Devnet is a replica with the launchpad canisters installed, plus the
// wallet API of a provider calling it in process.
type Devnet struct {
	Replica *replica.Replica
	Wallet  *wallet.LocalProvider
	Handler http.Handler

	closers []func() error
}

// NewDevnet assembles a devnet from cfg. A nil registry means the default
// prometheus registry.
func NewDevnet(cfg *config.Config, registry *promclient.Registry) (_ *Devnet, err error) {
	d := new(Devnet)
	defer func() {
		if err != nil {
			err = multierr.Append(err, d.Close())
		}
	}()

	var j journal.Journal
	if cfg.Devnet.JournalPath != "" {
		if j, err = fsjournal.OpenFSJournal(cfg.Devnet.JournalPath, journal.EnvDisabledEvents()); err != nil {
			return nil, xerrors.Errorf("opening journal: %w", err)
		}
	} else {
		j = journal.NewMemJournal(journal.EnvDisabledEvents(), 1024)
	}
	d.closers = append(d.closers, j.Close)

	var ds datastore.Batching
	if cfg.Devnet.DatastorePath != "" {
		lds, err := levelds.NewDatastore(cfg.Devnet.DatastorePath, nil)
		if err != nil {
			return nil, xerrors.Errorf("opening datastore %s: %w", cfg.Devnet.DatastorePath, err)
		}
		ds = lds
		d.closers = append(d.closers, lds.Close)
	} else {
		ds = dssync.MutexWrap(datastore.NewMapDatastore())
	}

	d.Replica = replica.New(j)
	cans := mock.New(ds)
	if err := d.Replica.Install(cfg.Canisters.TokenFactory, launchpad.TokenFactory, cans.Tokens); err != nil {
		return nil, err
	}
	if err := d.Replica.Install(cfg.Canisters.SaleManager, launchpad.SaleManager, cans.Sales); err != nil {
		return nil, err
	}
	if err := d.Replica.Install(cfg.Canisters.AgentRegistry, launchpad.AgentRegistry, cans.Agents); err != nil {
		return nil, err
	}

	identity := principal.Anonymous
	if cfg.Wallet.Principal != "" {
		if identity, err = principal.Decode(cfg.Wallet.Principal); err != nil {
			return nil, xerrors.Errorf("wallet principal: %w", err)
		}
	}
	inproc := func(ctx context.Context, host string) (api.ReplicaAPI, jsonrpc.ClientCloser, error) {
		return d.Replica, func() {}, nil
	}
	if d.Wallet, err = wallet.NewLocalProvider(identity, inproc, "inproc", j); err != nil {
		return nil, err
	}

	d.Handler, err = replica.Handler(d.Replica, &wallet.APIAdapter{P: d.Wallet}, replica.HandlerOptions{
		Token:         cfg.Devnet.Token,
		RateLimit:     cfg.Devnet.RateLimit,
		ConnPerMinute: cfg.Devnet.ConnPerMinute,
		Registry:      registry,
	})
	if err != nil {
		return nil, xerrors.Errorf("building handler: %w", err)
	}
	return d, nil
}

func (d *Devnet) Close() error {
	var err error
	for i := len(d.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, d.closers[i]())
	}
	d.closers = nil
	return err
}

var DevnetCmd = &cli.Command{
	Name:  "devnet",
	Usage: "Run a development replica serving the launchpad canisters",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "address to listen on, overrides the config",
		},
		&cli.BoolFlag{
			Name:  "print-config",
			Usage: "print the effective config as a commented TOML file and exit",
		},
		&cli.DurationFlag{
			Name:  "http-server-timeout",
			Value: 30 * time.Second,
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := GetConfig(cctx)
		if err != nil {
			return err
		}
		if cctx.Bool("print-config") {
			b, err := config.ConfigComment(cfg)
			if err != nil {
				return err
			}
			NewAppFmt(cctx.App).Println(string(b))
			return nil
		}
		if l := cctx.String("listen"); l != "" {
			cfg.Devnet.ListenAddress = l
		}

		ctx := ReqContext(cctx)
		if err := metrics.Register(ctx, "devnet", metrics.ReplicaNodeViews...); err != nil {
			return xerrors.Errorf("registering metrics: %w", err)
		}

		d, err := NewDevnet(cfg, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err := d.Close(); err != nil {
				log.Errorw("closing devnet", "error", err)
			}
		}()

		srv := &http.Server{
			Handler:           d.Handler,
			ReadHeaderTimeout: cctx.Duration("http-server-timeout"),
			BaseContext: func(listener net.Listener) context.Context {
				ctx, _ := tag.New(context.Background(), tag.Upsert(metrics.NodeType, "devnet"))
				return ctx
			},
		}

		go func() {
			<-ctx.Done()
			log.Warn("Shutting down...")
			if err := srv.Shutdown(context.TODO()); err != nil {
				log.Errorf("shutting down RPC server failed: %s", err)
			}
			log.Warn("Graceful shutdown successful")
		}()

		nl, err := net.Listen("tcp", cfg.Devnet.ListenAddress)
		if err != nil {
			return err
		}
		log.Infow("devnet listening", "address", nl.Addr().String(),
			"token-factory", cfg.Canisters.TokenFactory,
			"sale-manager", cfg.Canisters.SaleManager,
			"agent-registry", cfg.Canisters.AgentRegistry)

		if err := srv.Serve(nl); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}
