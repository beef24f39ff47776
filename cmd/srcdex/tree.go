package main

import (
	"fmt"
	"path"

	"github.com/disiqueira/gotree/v3"
	"github.com/scott-cotton/cli"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/pathcodec"
)

type treeConfig struct {
	*cli.Command
	main *MainConfig
}

// TreeCommand returns the tree subcommand.
func TreeCommand(main *MainConfig) *cli.Command {
	cfg := &treeConfig{main: main}
	return cli.NewCommandAt(&cfg.Command, "tree").
		WithSynopsis("tree [package[/restpath]] - Show the indexed files below a shortpath").
		WithRun(cfg.run)
}

func (cfg *treeConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: usage: srcdex tree [package[/restpath]]", cli.ErrUsage)
	}
	shortpath := ""
	if len(args) == 1 {
		shortpath = args[0]
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.table.GetShortpathBelow(ctx, shortpath)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return cli.ExitCodeErr(1)
	}
	fmt.Fprint(cc.Out, renderTree(shortpath, docs))
	return nil
}

// shortpathTree lays shortpaths out as nested directories under a root label.
type shortpathTree struct {
	tree gotree.Tree
	dirs map[string]gotree.Tree
}

func newShortpathTree(root string) shortpathTree {
	return shortpathTree{tree: gotree.New(root), dirs: make(map[string]gotree.Tree)}
}

func (t shortpathTree) dir(p string) gotree.Tree {
	if p == "." || p == "" {
		return t.tree
	}
	d, ok := t.dirs[p]
	if !ok {
		d = t.dir(path.Dir(p)).Add(path.Base(p))
		t.dirs[p] = d
	}
	return d
}

func (t shortpathTree) insert(rel string) {
	t.dir(path.Dir(rel)).Add(path.Base(rel))
}

// renderTree draws docs under the package of the queried shortpath, or under
// "." with one top-level node per package when the shortpath is empty.
// Documents are expected in lexical order, so siblings print sorted.
func renderTree(shortpath string, docs []domdoc.Document) string {
	pkg, _ := pathcodec.SplitShortpath(shortpath)
	if pkg == "" {
		pkg = "."
	}
	t := newShortpathTree(pkg)
	for i := range docs {
		if pkg == "." {
			t.insert(docs[i].Shortpath())
			continue
		}
		t.insert(docs[i].Restpath())
	}
	return t.tree.Print()
}
