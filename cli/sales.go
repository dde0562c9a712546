package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/build"
	"github.com/canlink-project/canlink/launchpad"
)

var SalesCmd = &cli.Command{
	Name:  "sales",
	Usage: "Manage token sales",
	Subcommands: []*cli.Command{
		salesListCmd,
		salesGetCmd,
		salesCreateCmd,
		salesContributeCmd,
		salesFinalizeCmd,
	},
}

var salesListCmd = &cli.Command{
	Name:  "list",
	Usage: "List sales",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "token",
			Usage: "only list sales of this token",
		},
		&cli.BoolFlag{
			Name:  "active",
			Usage: "only list sales accepting contributions",
		},
	},
	Action: func(cctx *cli.Context) error {
		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		ctx := ReqContext(cctx)

		var sales []launchpad.SaleInfo
		if tok := cctx.String("token"); tok != "" {
			sales, err = s.Sales.ListSalesByToken(ctx, launchpad.TokenID(tok))
		} else {
			sales, err = s.Sales.ListSales(ctx)
		}
		if err != nil {
			return err
		}
		if cctx.Bool("active") {
			sales = (&launchpad.Overview{Sales: sales}).ActiveSales()
		}
		if len(sales) == 0 {
			NewAppFmt(cctx.App).Println("no sales")
			return nil
		}

		tw := newTable(cctx)
		fmt.Fprintln(tw, "ID\tToken\tStatus\tPrice\tRaised\tSoft Cap\tHard Cap")
		for _, sale := range sales {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				sale.ID, sale.Token, sale.Status, amount(sale.Price),
				amount(sale.Raised), amount(sale.SoftCap), amount(sale.HardCap))
		}
		return tw.Flush()
	},
}

var salesGetCmd = &cli.Command{
	Name:      "get",
	Usage:     "Show a sale",
	ArgsUsage: "<sale-id>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return ShowHelp(cctx, xerrors.New("expected a sale id"))
		}
		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		id := launchpad.SaleID(cctx.Args().First())
		res, err := s.Sales.GetSale(ReqContext(cctx), id)
		if err != nil {
			return err
		}
		sale, ok := res.Get()
		if !ok {
			return xerrors.Errorf("sale %s not found", id)
		}

		afmt := NewAppFmt(cctx.App)
		afmt.Printf("ID:       %s\n", sale.ID)
		afmt.Printf("Token:    %s\n", sale.Token)
		afmt.Printf("Status:   %s\n", sale.Status)
		afmt.Printf("Creator:  %s\n", sale.Creator)
		afmt.Printf("Price:    %s\n", amount(sale.Price))
		afmt.Printf("Raised:   %s\n", amount(sale.Raised))
		afmt.Printf("Caps:     %s soft, %s hard\n", amount(sale.SoftCap), amount(sale.HardCap))
		afmt.Printf("Start:    %s\n", timestamp(sale.StartTime))
		afmt.Printf("End:      %s\n", timestamp(sale.EndTime))
		return nil
	},
}

var salesCreateCmd = &cli.Command{
	Name:  "create",
	Usage: "Open a sale for a token",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "token", Required: true},
		&cli.Uint64Flag{Name: "price", Usage: "price per token in base units", Required: true},
		&cli.Uint64Flag{Name: "soft-cap", Required: true},
		&cli.Uint64Flag{Name: "hard-cap", Required: true},
		&cli.TimestampFlag{Name: "start", Layout: time.RFC3339, Usage: "defaults to now"},
		&cli.TimestampFlag{Name: "end", Layout: time.RFC3339, Required: true},
	},
	Action: func(cctx *cli.Context) error {
		start := build.Clock.Now()
		if ts := cctx.Timestamp("start"); ts != nil {
			start = *ts
		}
		end := *cctx.Timestamp("end")
		if !end.After(start) {
			return ShowHelp(cctx, xerrors.Errorf("sale must end after it starts (%s)", start.Format(time.RFC3339)))
		}
		if cctx.Uint64("soft-cap") > cctx.Uint64("hard-cap") {
			return ShowHelp(cctx, xerrors.New("soft cap exceeds hard cap"))
		}

		cfg := launchpad.SaleConfig{
			Token:     launchpad.TokenID(cctx.String("token")),
			Price:     cctx.Uint64("price"),
			SoftCap:   cctx.Uint64("soft-cap"),
			HardCap:   cctx.Uint64("hard-cap"),
			StartTime: start.UnixNano(),
			EndTime:   end.UnixNano(),
		}

		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		res, err := s.Sales.CreateSale(ReqContext(cctx), cfg)
		if err != nil {
			return err
		}
		id, err := outcome("createSale", res)
		if err != nil {
			return err
		}
		NewAppFmt(cctx.App).Println(id)
		return nil
	},
}

var salesContributeCmd = &cli.Command{
	Name:      "contribute",
	Usage:     "Contribute to a sale",
	ArgsUsage: "<sale-id> <amount>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 2 {
			return ShowHelp(cctx, xerrors.New("expected a sale id and an amount"))
		}
		amt, err := strconv.ParseUint(cctx.Args().Get(1), 10, 64)
		if err != nil {
			return ShowHelp(cctx, xerrors.Errorf("parsing amount: %w", err))
		}

		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		id := launchpad.SaleID(cctx.Args().First())
		res, err := s.Sales.Contribute(ReqContext(cctx), id, amt)
		if err != nil {
			return err
		}
		if _, err := outcome("contribute", res); err != nil {
			return err
		}
		NewAppFmt(cctx.App).Printf("contributed %s to %s\n", amount(amt), id)
		return nil
	},
}

var salesFinalizeCmd = &cli.Command{
	Name:      "finalize",
	Usage:     "Close a sale",
	ArgsUsage: "<sale-id>",
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return ShowHelp(cctx, xerrors.New("expected a sale id"))
		}
		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		id := launchpad.SaleID(cctx.Args().First())
		res, err := s.Sales.FinalizeSale(ReqContext(cctx), id)
		if err != nil {
			return err
		}
		status, err := outcome("finalizeSale", res)
		if err != nil {
			return err
		}
		NewAppFmt(cctx.App).Printf("%s: %s\n", id, status)
		return nil
	},
}
