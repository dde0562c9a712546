package main

import (
	"github.com/urfave/cli/v2"

	"github.com/canlink-project/canlink/build"
	lcli "github.com/canlink-project/canlink/cli"
	"github.com/canlink-project/canlink/lib/canlog"
)

func main() {
	canlog.SetupLogLevels()

	app := &cli.App{
		Name:                 "canlink",
		Usage:                "Typed client for launchpad canisters",
		Version:              build.UserVersion(),
		EnableBashCompletion: true,
		Flags:                lcli.Flags,
		Before:               lcli.InjectProvider,
		Commands:             lcli.Commands,
	}
	app.Setup()

	lcli.RunApp(app)
}
