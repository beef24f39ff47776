package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

type addConfig struct {
	*cli.Command
	Package string `cli:"name=package aliases=p desc='package name; defaults to the base name of dir'"`
	main    *MainConfig
}

// AddCommand returns the add subcommand.
func AddCommand(main *MainConfig) *cli.Command {
	cfg := &addConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "add").
		WithSynopsis("add [-package name] <dir> <restpath>... - Add files of a package directory").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *addConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: srcdex add [-package name] <dir> <restpath>...", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := args[0]
	failed := 0
	for _, rest := range args[1:] {
		outcome, err := a.table.Add(ctx, dir, rest, cfg.Package)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", colorFailed("failed   "), rest, err)
			failed++
			continue
		}
		fmt.Fprintf(cc.Out, "%s %s\n", outcomeLabel(outcome), rest)
	}
	if failed > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}
