package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

type dumpConfig struct {
	*cli.Command
	main *MainConfig
}

// DumpCommand returns the dump subcommand.
func DumpCommand(main *MainConfig) *cli.Command {
	cfg := &dumpConfig{main: main}
	return cli.NewCommandAt(&cfg.Command, "dump").
		WithSynopsis("dump - Print every document as path, package, restpath, suffix and timestamp").
		WithRun(cfg.run)
}

func (cfg *dumpConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: dump takes no arguments", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.table.Dump(ctx, cc.Out)
}
