package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/request"
)

type searchConfig struct {
	*cli.Command
	Offset int    `cli:"name=offset desc='skip this many results'"`
	Limit  int    `cli:"name=limit aliases=n desc='maximum number of results, 0 for all'"`
	Order  string `cli:"name=order desc='lexical (default) or relevance'"`
	Long   bool   `cli:"name=l desc='print absolute paths instead of shortpaths'"`

	keywords, packages, paths, restpaths, suffixes []string

	main *MainConfig
}

// SearchCommand returns the search subcommand.
func SearchCommand(main *MainConfig) *cli.Command {
	cfg := &searchConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	opts = append(opts,
		listOpt("k", "keyword matched against content, restpath or package (repeatable)", &cfg.keywords),
		listOpt("package", "restrict to a package (repeatable, any of)", &cfg.packages),
		listOpt("path", "substring of the absolute path (repeatable, all of)", &cfg.paths),
		listOpt("r", "substring of the restpath (repeatable, all of)", &cfg.restpaths),
		listOpt("s", "file suffix without the dot (repeatable, any of)", &cfg.suffixes),
	)
	return cli.NewCommandAt(&cfg.Command, "search").
		WithSynopsis("search [opts] [pattern]... - Find documents whose content contains every pattern").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *searchConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	opts := request.Options{
		Patterns:  args,
		Keywords:  cfg.keywords,
		Packages:  cfg.packages,
		Paths:     cfg.paths,
		Restpaths: cfg.restpaths,
		Suffixes:  cfg.suffixes,
		Offset:    cfg.Offset,
		Limit:     cfg.Limit,
		Order:     order.Mode(cfg.Order),
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.table.Search(ctx, opts)
	if err != nil {
		return err
	}
	for i := range docs {
		if cfg.Long {
			fmt.Fprintln(cc.Out, docs[i].Path())
			continue
		}
		fmt.Fprintln(cc.Out, docs[i].Shortpath())
	}
	if len(docs) == 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}
