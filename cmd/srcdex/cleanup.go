package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

type cleanupConfig struct {
	*cli.Command
	Package string `cli:"name=package aliases=p desc='only check documents of this package'"`
	Quiet   bool   `cli:"name=quiet aliases=q desc='print only the count'"`
	main    *MainConfig
}

// CleanupCommand returns the cleanup subcommand.
func CleanupCommand(main *MainConfig) *cli.Command {
	cfg := &cleanupConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "cleanup").
		WithSynopsis("cleanup [-package name] - Drop documents whose file no longer exists").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *cleanupConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: cleanup takes no arguments", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	var onEach func(domdoc.Document)
	if !cfg.Quiet {
		onEach = func(d domdoc.Document) {
			fmt.Fprintln(cc.Out, d.Shortpath())
		}
	}
	var n int
	if cfg.Package != "" {
		n, err = a.table.CleanupPackageName(ctx, cfg.Package, onEach)
	} else {
		n, err = a.table.Cleanup(ctx, onEach)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "removed %d documents\n", n)
	return nil
}
