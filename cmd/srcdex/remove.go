package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/pathcodec"
)

type removeConfig struct {
	*cli.Command
	Match bool `cli:"name=match aliases=m desc='remove every document whose path contains the argument'"`
	All   bool `cli:"name=all desc='remove every document'"`
	main  *MainConfig
}

// RemoveCommand returns the remove subcommand.
func RemoveCommand(main *MainConfig) *cli.Command {
	cfg := &removeConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "remove").
		WithSynopsis("remove [-match] <path>... | remove -all - Drop documents from the catalog").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *removeConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	switch {
	case cfg.All && (cfg.Match || len(args) > 0):
		return fmt.Errorf("%w: -all takes no paths", cli.ErrUsage)
	case !cfg.All && len(args) == 0:
		return fmt.Errorf("%w: usage: srcdex remove [-match] <path>...", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.All {
		n, err := a.table.RemoveAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cc.Out, "removed %d documents\n", n)
		return nil
	}

	printRemoved := func(d domdoc.Document) {
		fmt.Fprintln(cc.Out, d.Path())
	}
	for _, p := range args {
		if cfg.Match {
			if _, err := a.table.RemoveMatchPath(ctx, p, printRemoved); err != nil {
				return err
			}
			continue
		}
		abs, err := pathcodec.Normalize(p)
		if err != nil {
			return err
		}
		if err := a.table.Remove(ctx, abs); err != nil {
			return err
		}
		fmt.Fprintln(cc.Out, abs)
	}
	return nil
}
