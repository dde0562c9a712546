package cli

import (
	"encoding/json"
	"sort"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/launchpad"
)

func service(cctx *cli.Context, name string) (*actor.Service, error) {
	svc, ok := launchpad.Services[name]
	if !ok {
		known := make([]string, 0, len(launchpad.Services))
		for n := range launchpad.Services {
			known = append(known, n)
		}
		sort.Strings(known)
		return nil, ShowHelp(cctx, xerrors.Errorf("unknown service %q, expected one of %v", name, known))
	}
	return svc, nil
}

var CallCmd = &cli.Command{
	Name:      "call",
	Usage:     "Call a canister method with JSON arguments",
	ArgsUsage: "<canister> <service> <method> [json-args]",
	Description: `Arguments are a JSON array with one element per declared argument.
   Options are written as [] or [value], variants as {"tag": payload}, nat and
   int as numbers or strings. The reply is printed as JSON.`,
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() < 3 || cctx.NArg() > 4 {
			return ShowHelp(cctx, xerrors.New("expected 3 or 4 arguments"))
		}
		canister, method := cctx.Args().Get(0), cctx.Args().Get(2)
		svc, err := service(cctx, cctx.Args().Get(1))
		if err != nil {
			return err
		}
		m, ok := svc.Method(method)
		if !ok {
			return ShowHelp(cctx, xerrors.Errorf("%s has no method %s", svc.Name(), method))
		}

		raw := json.RawMessage("[]")
		if cctx.NArg() == 4 {
			raw = json.RawMessage(cctx.Args().Get(3))
		}
		args, err := idl.ArgsFromJSON(m.Args, raw)
		if err != nil {
			return ShowHelp(cctx, xerrors.Errorf("parsing arguments: %w", err))
		}

		p, err := GetProvider(cctx)
		if err != nil {
			return err
		}
		a, err := p.CreateActor(canister, svc)
		if err != nil {
			return err
		}

		ctx := ReqContext(cctx)
		afmt := NewAppFmt(cctx.App)

		v, err := a.Call(ctx, method, args...)
		if err != nil {
			return err
		}
		out, err := idl.ToJSON(m.Result, v)
		if err != nil {
			return xerrors.Errorf("rendering reply: %w", err)
		}
		afmt.Println(string(out))

		if vr, ok := v.(idl.Variant); ok && vr.Tag == idl.ResultErrTag {
			msg, _ := vr.Value.(string)
			return &AppError{Method: method, Message: msg}
		}
		return nil
	},
}

var InterfaceCmd = &cli.Command{
	Name:      "interface",
	Usage:     "Print a service interface and its fingerprint",
	ArgsUsage: "<service>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "canister",
			Usage: "check that this canister serves the interface",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.NArg() != 1 {
			return ShowHelp(cctx, xerrors.New("expected a service name"))
		}
		svc, err := service(cctx, cctx.Args().First())
		if err != nil {
			return err
		}

		afmt := NewAppFmt(cctx.App)
		afmt.Println(svc.String())
		afmt.Printf("fingerprint: %s\n", svc.Fingerprint())

		canister := cctx.String("canister")
		if canister == "" {
			return nil
		}

		p, err := GetProvider(cctx)
		if err != nil {
			return err
		}
		a, err := p.CreateActor(canister, svc)
		if err != nil {
			return err
		}
		if err := a.Verify(ReqContext(cctx)); err != nil {
			return err
		}
		afmt.Printf("canister %s serves %s\n", canister, svc.Name())
		return nil
	},
}
