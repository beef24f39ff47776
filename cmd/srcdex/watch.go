package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	watchuc "github.com/kailas-cloud/srcdex/internal/usecase/watch"
)

type watchConfig struct {
	*cli.Command
	Package string `cli:"name=package aliases=p desc='package name; defaults to the base name of dir'"`
	main    *MainConfig
}

// WatchCommand returns the watch subcommand.
func WatchCommand(main *MainConfig) *cli.Command {
	cfg := &watchConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "watch").
		WithSynopsis("watch [-package name] <dir> - Scan a package directory and keep it in sync").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *watchConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: srcdex watch [-package name] <dir>", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := a.startWatch(ctx, args[0], cfg.Package)
	if err != nil {
		return err
	}
	w.OnFlush(func(f watchuc.Flush) {
		for _, rest := range f.Added {
			fmt.Fprintf(cc.Out, "%s %s\n", colorNew("add    "), rest)
		}
		for _, rest := range f.Failed {
			fmt.Fprintf(cc.Out, "%s %s\n", colorFailed("failed "), rest)
		}
		if f.Removed > 0 {
			fmt.Fprintf(cc.Out, "%s %d\n", colorUpdated("removed"), f.Removed)
		}
	})
	return w.Run(ctx)
}
