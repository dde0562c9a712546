package cli

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

type PrintHelpErr struct {
	Err error
	Ctx *cli.Context
}

func (e *PrintHelpErr) Error() string {
	return e.Err.Error()
}

func (e *PrintHelpErr) Unwrap() error {
	return e.Err
}

func (e *PrintHelpErr) Is(o error) bool {
	_, ok := o.(*PrintHelpErr)
	return ok
}

func ShowHelp(cctx *cli.Context, err error) error {
	return &PrintHelpErr{Err: err, Ctx: cctx}
}

// AppError is an `err` result returned by a canister. The call itself
// succeeded.
type AppError struct {
	Method  string
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

func RunApp(app *cli.App) {
	if err := app.Run(os.Args); err != nil {
		if os.Getenv("CANLINK_DEV") != "" {
			log.Warnf("%+v", err)
		}

		var ae *AppError
		if xerrors.As(err, &ae) {
			fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("REJECTED:"), ae.Message)
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n\n", color.RedString("ERROR:"), err)
		}

		var phe *PrintHelpErr
		if xerrors.As(err, &phe) {
			_ = cli.ShowCommandHelp(phe.Ctx, phe.Ctx.Command.Name)
		}
		os.Exit(1)
	}
}

// AppFmt writes to the app's writer so output can be captured in tests.
type AppFmt struct {
	app   *cli.App
	Stdin io.Reader
}

func NewAppFmt(a *cli.App) *AppFmt {
	var stdin io.Reader
	istdin, ok := a.Metadata["stdin"]
	if ok {
		stdin = istdin.(io.Reader)
	} else {
		stdin = os.Stdin
	}
	return &AppFmt{app: a, Stdin: stdin}
}

func (a *AppFmt) Print(args ...interface{}) {
	_, _ = fmt.Fprint(a.app.Writer, args...)
}

func (a *AppFmt) Println(args ...interface{}) {
	_, _ = fmt.Fprintln(a.app.Writer, args...)
}

func (a *AppFmt) Printf(fmtstr string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.app.Writer, fmtstr, args...)
}

func amount(n uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(n))
}

// timestamp renders canister time, nanoseconds since the epoch.
func timestamp(ns int64) string {
	if ns == 0 {
		return "-"
	}
	t := time.Unix(0, ns)
	return fmt.Sprintf("%s (%s)", t.UTC().Format(time.RFC3339), humanize.Time(t))
}
