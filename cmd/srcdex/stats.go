package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/scott-cotton/cli"

	documentuc "github.com/kailas-cloud/srcdex/internal/usecase/document"
)

type statsConfig struct {
	*cli.Command
	Packages bool `cli:"name=packages aliases=p desc='list per-package document counts'"`
	main     *MainConfig
}

// StatsCommand returns the stats subcommand.
func StatsCommand(main *MainConfig) *cli.Command {
	cfg := &statsConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "stats").
		WithSynopsis("stats [-packages] - Summarize the catalog").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *statsConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: stats takes no arguments", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := collectStats(ctx, a.table)
	if err != nil {
		return err
	}
	st.print(cc.Out, cfg.Packages)
	return nil
}

type catalogStats struct {
	documents int
	bytes     uint64
	newest    time.Time
	packages  map[string]int
}

func collectStats(ctx context.Context, table *documentuc.Table) (catalogStats, error) {
	st := catalogStats{packages: make(map[string]int)}
	size, err := table.Size(ctx)
	if err != nil {
		return st, err
	}
	st.documents = size
	for doc, err := range table.Each(ctx) {
		if err != nil {
			return st, err
		}
		st.bytes += uint64(len(doc.Content()))
		st.packages[doc.Package()]++
		if doc.Timestamp().After(st.newest) {
			st.newest = doc.Timestamp()
		}
	}
	return st, nil
}

func (st catalogStats) print(w io.Writer, perPackage bool) {
	fmt.Fprintf(w, "documents: %s\n", humanize.Comma(int64(st.documents)))
	fmt.Fprintf(w, "packages:  %s\n", humanize.Comma(int64(len(st.packages))))
	fmt.Fprintf(w, "content:   %s\n", humanize.Bytes(st.bytes))
	if !st.newest.IsZero() {
		fmt.Fprintf(w, "newest:    %s (%s)\n", st.newest.Format(time.RFC3339), humanize.Time(st.newest))
	}
	if !perPackage {
		return
	}
	names := make([]string, 0, len(st.packages))
	for name := range st.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-32s %s\n", name, humanize.Comma(int64(st.packages[name])))
	}
}
