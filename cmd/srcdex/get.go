package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
)

type getConfig struct {
	*cli.Command
	Long bool `cli:"name=l desc='print the absolute path instead of the content'"`
	main *MainConfig
}

// GetCommand returns the get subcommand.
func GetCommand(main *MainConfig) *cli.Command {
	cfg := &getConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "get").
		WithSynopsis("get [-l] <package/restpath> - Print the indexed content of a file").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *getConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: srcdex get [-l] <package/restpath>", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.table.GetShortpath(ctx, args[0])
	if err != nil {
		return err
	}
	if cfg.Long {
		_, err = fmt.Fprintln(cc.Out, doc.Path())
		return err
	}
	_, err = io.WriteString(cc.Out, doc.Content())
	return err
}
