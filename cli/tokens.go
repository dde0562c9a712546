package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/launchpad"
)

// outcome turns an `err` result into an *AppError.
func outcome[T any](method string, r idl.Result[T]) (T, error) {
	if msg, isErr := r.Err(); isErr {
		var zero T
		return zero, &AppError{Method: method, Message: msg}
	}
	v, _ := r.Ok()
	return v, nil
}

func optText(s string) idl.Option[string] {
	if s == "" {
		return idl.None[string]()
	}
	return idl.Some(s)
}

func newTable(cctx *cli.Context) *tabwriter.Writer {
	return tabwriter.NewWriter(cctx.App.Writer, 2, 4, 2, ' ', 0)
}

var TokensCmd = &cli.Command{
	Name:  "tokens",
	Usage: "Manage launchpad tokens",
	Subcommands: []*cli.Command{
		tokensListCmd,
		tokensGetCmd,
		tokensCreateCmd,
		tokensCreateBatchCmd,
	},
}

var tokensListCmd = &cli.Command{
	Name:  "list",
	Usage: "List all tokens",
	Action: func(cctx *cli.Context) error {
		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		ctx := ReqContext(cctx)

		toks, err := s.Tokens.ListTokens(ctx)
		if err != nil {
			return err
		}
		if len(toks) == 0 {
			NewAppFmt(cctx.App).Println("no tokens")
			return nil
		}

		tw := newTable(cctx)
		fmt.Fprintln(tw, "ID\tSymbol\tName\tSupply\tDecimals\tCanister")
		for _, t := range toks {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				t.ID, t.Symbol, t.Name, amount(t.TotalSupply), t.Decimals, t.Canister.OrElse("-"))
		}
		return tw.Flush()
	},
}

var tokensGetCmd = &cli.Command{
	Name:      "get",
	Usage:     "Show a token and its sales",
	ArgsUsage: "<token-id>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return ShowHelp(cctx, xerrors.New("expected a token id"))
		}
		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		ctx := ReqContext(cctx)
		afmt := NewAppFmt(cctx.App)

		id := launchpad.TokenID(cctx.Args().First())
		det, err := s.TokenDetails(ctx, id)
		if err != nil {
			return err
		}
		d, ok := det.Get()
		if !ok {
			return xerrors.Errorf("token %s not found", id)
		}

		afmt.Printf("ID:          %s\n", d.ID)
		afmt.Printf("Name:        %s (%s)\n", d.Name, d.Symbol)
		afmt.Printf("Supply:      %s\n", amount(d.TotalSupply))
		afmt.Printf("Decimals:    %d\n", d.Decimals)
		afmt.Printf("Owner:       %s\n", d.Owner)
		afmt.Printf("Canister:    %s\n", d.Canister.OrElse("-"))
		afmt.Printf("Created:     %s\n", timestamp(d.CreatedAt))
		if desc, ok := d.Description.Get(); ok {
			afmt.Printf("Description: %s\n", desc)
		}
		if logo, ok := d.Logo.Get(); ok {
			afmt.Printf("Logo:        %d bytes\n", len(logo))
		}
		afmt.Printf("Sales:       %d\n", len(d.Sales))
		for _, sale := range d.Sales {
			afmt.Printf("  %s\t%s\traised %s of %s\n", sale.ID, sale.Status, amount(sale.Raised), amount(sale.HardCap))
		}
		return nil
	},
}

var tokensCreateCmd = &cli.Command{
	Name:  "create",
	Usage: "Create a token",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "symbol", Required: true},
		&cli.Uint64Flag{Name: "decimals", Value: 8},
		&cli.Uint64Flag{Name: "supply", Usage: "total supply in base units", Required: true},
		&cli.StringFlag{Name: "description"},
		&cli.PathFlag{Name: "logo", Usage: "image file to attach as the logo"},
	},
	Action: func(cctx *cli.Context) error {
		cfg := launchpad.TokenConfig{
			Name:        cctx.String("name"),
			Symbol:      cctx.String("symbol"),
			Decimals:    cctx.Uint64("decimals"),
			TotalSupply: cctx.Uint64("supply"),
			Logo:        idl.None[[]byte](),
			Description: optText(cctx.String("description")),
		}
		if path := cctx.Path("logo"); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				return xerrors.Errorf("reading logo: %w", err)
			}
			cfg.Logo = idl.Some(b)
		}

		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		res, err := s.Tokens.CreateToken(ReqContext(cctx), cfg)
		if err != nil {
			return err
		}
		id, err := outcome("createToken", res)
		if err != nil {
			return err
		}
		NewAppFmt(cctx.App).Println(id)
		return nil
	},
}

var tokensCreateBatchCmd = &cli.Command{
	Name:      "create-batch",
	Usage:     "Create several tokens at once; either all are created or none",
	ArgsUsage: "<file.json>",
	Description: `The file holds a JSON array of token configs:
   [{"name": "Gold", "symbol": "GLD", "decimals": 8, "totalSupply": 1000000,
     "logo": [], "description": ["shiny"]}]`,
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return ShowHelp(cctx, xerrors.New("expected a file"))
		}
		b, err := os.ReadFile(cctx.Args().First())
		if err != nil {
			return err
		}
		v, err := idl.FromJSON(idl.Vec(launchpad.TokenConfigType), json.RawMessage(b))
		if err != nil {
			return xerrors.Errorf("parsing %s: %w", cctx.Args().First(), err)
		}
		cfgs, err := idl.FromValues(v, launchpad.AsTokenConfig)
		if err != nil {
			return err
		}

		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		res, err := s.Tokens.CreateTokenBatch(ReqContext(cctx), cfgs)
		if err != nil {
			return err
		}
		ids, err := outcome("createTokenBatch", res)
		if err != nil {
			return err
		}
		afmt := NewAppFmt(cctx.App)
		for _, id := range ids {
			afmt.Println(id)
		}
		return nil
	},
}
