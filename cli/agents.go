package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/launchpad"
)

var AgentsCmd = &cli.Command{
	Name:  "agents",
	Usage: "Manage registered agents",
	Subcommands: []*cli.Command{
		agentsListCmd,
		agentsRegisterCmd,
	},
}

var agentsListCmd = &cli.Command{
	Name:  "list",
	Usage: "List registered agents",
	Action: func(cctx *cli.Context) error {
		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		agents, err := s.Agents.ListAgents(ReqContext(cctx))
		if err != nil {
			return err
		}
		if len(agents) == 0 {
			NewAppFmt(cctx.App).Println("no agents")
			return nil
		}

		tw := newTable(cctx)
		fmt.Fprintln(tw, "ID\tName\tToken\tOwner\tDescription")
		for _, a := range agents {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				a.ID, a.Name, a.Token.OrElse("-"), a.Owner, a.Description.OrElse(""))
		}
		return tw.Flush()
	},
}

var agentsRegisterCmd = &cli.Command{
	Name:  "register",
	Usage: "Register an agent",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "token", Usage: "token the agent is linked to"},
	},
	Action: func(cctx *cli.Context) error {
		cfg := launchpad.AgentConfig{
			Name:        cctx.String("name"),
			Description: optText(cctx.String("description")),
			Token:       idl.None[launchpad.TokenID](),
		}
		if tok := cctx.String("token"); tok != "" {
			cfg.Token = idl.Some(launchpad.TokenID(tok))
		}

		s, err := GetSession(cctx)
		if err != nil {
			return err
		}
		res, err := s.Agents.RegisterAgent(ReqContext(cctx), cfg)
		if err != nil {
			return err
		}
		id, err := outcome("registerAgent", res)
		if err != nil {
			return err
		}
		NewAppFmt(cctx.App).Println(id)
		return nil
	},
}
