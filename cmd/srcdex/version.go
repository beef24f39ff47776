package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/kailas-cloud/srcdex/internal/version"
)

// VersionCommand returns the version subcommand.
func VersionCommand(_ *MainConfig) *cli.Command {
	return cli.NewCommand("version").
		WithSynopsis("version - Print build information").
		WithRun(func(cc *cli.Context, _ []string) error {
			fmt.Fprintf(cc.Out, "srcdex %s\n", version.String())
			return nil
		})
}
