package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

const description = `srcdex keeps a deduplicated catalog of source files drawn from package
directories and answers multi-facet queries over it.

Examples:
  srcdex scan ~/src/rails
  srcdex add ~/src/rails activerecord/lib/active_record.rb
  srcdex search -s rb -k migration def change
  srcdex get rails/activerecord/lib/active_record.rb
  srcdex tree rails/activerecord
  srcdex cleanup
  srcdex serve`

// MainCommand returns the root command.
func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "srcdex").
		WithSynopsis("srcdex [opts] command [opts]").
		WithDescription(description).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return srcdexMain(cfg, cc, args)
		}).
		WithSubs(
			AddCommand(cfg),
			ScanCommand(cfg),
			SearchCommand(cfg),
			GetCommand(cfg),
			TreeCommand(cfg),
			RemoveCommand(cfg),
			CleanupCommand(cfg),
			DumpCommand(cfg),
			StatsCommand(cfg),
			ServeCommand(cfg),
			WatchCommand(cfg),
			VersionCommand(cfg),
		)
}

func srcdexMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

// listOpt declares a repeatable option whose values accumulate in dst.
func listOpt(name, desc string, dst *[]string) *cli.Opt {
	return &cli.Opt{
		Name:        name,
		Description: desc,
		Type: cli.NamedFuncOpt(cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
			*dst = append(*dst, v)
			return *dst, nil
		}), "(term)"),
	}
}
