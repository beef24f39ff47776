package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/scott-cotton/cli"
)

type scanConfig struct {
	*cli.Command
	Package string `cli:"name=package aliases=p desc='package name; only valid with a single dir'"`
	Quiet   bool   `cli:"name=quiet aliases=q desc='do not list per-file failures'"`
	main    *MainConfig
}

// ScanCommand returns the scan subcommand.
func ScanCommand(main *MainConfig) *cli.Command {
	cfg := &scanConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "scan").
		WithSynopsis("scan [-package name] <dir>... - Index package directories and drop vanished files").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *scanConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: srcdex scan [-package name] <dir>...", cli.ErrUsage)
	}
	if cfg.Package != "" && len(args) > 1 {
		return fmt.Errorf("%w: -package requires exactly one dir", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	scanner := a.scanner()
	failed := false
	for _, dir := range args {
		report, err := scanner.ScanPackage(ctx, dir, cfg.Package)
		if err != nil {
			return err
		}
		fmt.Fprintf(cc.Out, "%s: %s files, %d new, %d updated, %d unchanged, %d skipped, %d removed, %d failed in %s\n",
			report.Package,
			humanize.Comma(int64(report.Total())),
			report.New, report.Updated, report.Unchanged,
			report.Skipped, report.Removed, len(report.Failed),
			report.Duration.Round(time.Millisecond),
		)
		if len(report.Failed) > 0 {
			failed = true
		}
		if !cfg.Quiet {
			for _, f := range report.Failed {
				fmt.Fprintf(os.Stderr, "  %s %s: %v\n", colorFailed("failed"), f.Restpath, f.Err)
			}
		}
	}
	if failed {
		return cli.ExitCodeErr(1)
	}
	return nil
}
