package cli

import (
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/wallet"
)

var WalletCmd = &cli.Command{
	Name:  "wallet",
	Usage: "Inspect and connect the wallet provider",
	Subcommands: []*cli.Command{
		walletStatusCmd,
		walletConnectCmd,
		walletDisconnectCmd,
		walletPrincipalCmd,
	},
}

var walletStatusCmd = &cli.Command{
	Name:  "status",
	Usage: "Report whether a provider is present and connected",
	Action: func(cctx *cli.Context) error {
		afmt := NewAppFmt(cctx.App)

		p, ok := ProviderSlot(cctx).Get()
		if !ok {
			afmt.Println("provider: " + color.YellowString("absent"))
			return nil
		}
		afmt.Println("provider: " + color.GreenString("present"))

		connected, err := p.IsConnected(ReqContext(cctx))
		if err != nil {
			return err
		}
		if !connected {
			afmt.Println("connected: no")
			return nil
		}
		afmt.Println("connected: yes")
		afmt.Printf("principal: %s\n", p.PrincipalID())
		afmt.Printf("account:   %s\n", p.AccountID())
		return nil
	},
}

var walletConnectCmd = &cli.Command{
	Name:  "connect",
	Usage: "Connect the provider to the replica",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "whitelist",
			Usage: "canisters the connection may call, overrides the config",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "replica endpoint, overrides the config",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "handshake timeout, overrides the config",
		},
	},
	Action: func(cctx *cli.Context) error {
		p, ok := ProviderSlot(cctx).Get()
		if !ok {
			return ErrNoProvider
		}
		cfg, err := GetConfig(cctx)
		if err != nil {
			return err
		}
		afmt := NewAppFmt(cctx.App)

		opts := connectOptions(cfg)
		if cctx.IsSet("whitelist") {
			opts.Whitelist = cctx.StringSlice("whitelist")
		}
		if cctx.IsSet("host") {
			opts.Host = cctx.String("host")
		}
		if cctx.IsSet("timeout") {
			opts.Timeout = cctx.Duration("timeout")
		}
		opts.OnConnectionUpdate = func(ev wallet.ConnectionEvent) {
			if ev.Connected {
				afmt.Printf("connected to %s\n", ev.Host)
			}
		}

		ctx := ReqContext(cctx)
		if _, err := p.Connect(ctx, opts); err != nil {
			return xerrors.Errorf("connecting wallet: %w", err)
		}
		afmt.Printf("principal: %s\n", p.PrincipalID())
		afmt.Printf("account:   %s\n", p.AccountID())
		return nil
	},
}

var walletDisconnectCmd = &cli.Command{
	Name:  "disconnect",
	Usage: "Drop the provider connection",
	Action: func(cctx *cli.Context) error {
		p, ok := ProviderSlot(cctx).Get()
		if !ok {
			return ErrNoProvider
		}
		return p.Disconnect(ReqContext(cctx))
	},
}

var walletPrincipalCmd = &cli.Command{
	Name:  "principal",
	Usage: "Print the wallet principal and account identifier",
	Action: func(cctx *cli.Context) error {
		p, err := GetProvider(cctx)
		if err != nil {
			return err
		}
		ctx := ReqContext(cctx)

		pid, err := p.GetPrincipal(ctx)
		if err != nil {
			return err
		}
		acct, err := p.RequestAccountID(ctx)
		if err != nil {
			return err
		}
		afmt := NewAppFmt(cctx.App)
		afmt.Println(pid)
		afmt.Println(acct)
		return nil
	},
}
