package srcdex

import (
	"context"
	"io"
	"iter"
	"time"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

// Add catalogs packageDir/restpath. packageName overrides the package,
// which otherwise is the base name of packageDir. The file is read only
// when it is new to the catalog or newer than the stored copy.
func (c *Client) Add(ctx context.Context, packageDir, restpath, packageName string) (_ Outcome, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add", start, err, "restpath", restpath) }()

	o, err := c.table.Add(ctx, packageDir, restpath, packageName)
	if err != nil {
		return Unchanged, err
	}
	return outcomeFromDomain(o), nil
}

// Scan adds every file under dir as package name (the base name of dir when
// empty) and drops that package's documents whose files are gone.
func (c *Client) Scan(ctx context.Context, dir, name string) (_ ScanReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("scan", start, err, "dir", dir) }()

	r, err := c.scanner.ScanPackage(ctx, dir, name)
	return reportFromScan(&r), err
}

// Remove drops the document stored under exactly path.
func (c *Client) Remove(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("remove", start, err, "path", path) }()

	return c.table.Remove(ctx, path)
}

// RemoveMatchPath drops every document whose path contains path and returns
// the removed paths.
func (c *Client) RemoveMatchPath(ctx context.Context, path string) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("remove_match_path", start, err, "path", path) }()

	var removed []string
	_, err = c.table.RemoveMatchPath(ctx, path, func(d domdoc.Document) {
		removed = append(removed, d.Path())
	})
	return removed, err
}

// RemoveAll empties the catalog.
func (c *Client) RemoveAll(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("remove_all", start, err) }()

	return c.table.RemoveAll(ctx)
}

// Get returns the document addressed by a "package/restpath" shortpath.
func (c *Client) Get(ctx context.Context, shortpath string) (_ Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err, "shortpath", shortpath) }()

	d, err := c.table.GetShortpath(ctx, shortpath)
	if err != nil {
		return Document{}, err
	}
	return documentFromDomain(&d), nil
}

// Below lists, in lexical order, the documents of a package whose restpath
// contains the shortpath's restpath. An empty shortpath lists everything.
func (c *Client) Below(ctx context.Context, shortpath string) (_ []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("below", start, err, "shortpath", shortpath) }()

	docs, err := c.table.GetShortpathBelow(ctx, shortpath)
	if err != nil {
		return nil, err
	}
	return documentsFromDomain(docs), nil
}

// Search returns the window of documents matching q.
func (c *Client) Search(ctx context.Context, q Query) (_ []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	docs, err := c.table.Search(ctx, q.toOptions())
	if err != nil {
		return nil, err
	}
	return documentsFromDomain(docs), nil
}

// Cleanup drops documents whose file no longer exists and returns their
// shortpaths. A non-empty pkg restricts the check to that package.
func (c *Client) Cleanup(ctx context.Context, pkg string) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cleanup", start, err, "package", pkg) }()

	var removed []string
	onEach := func(d domdoc.Document) {
		removed = append(removed, d.Shortpath())
	}
	if pkg != "" {
		_, err = c.table.CleanupPackageName(ctx, pkg, onEach)
	} else {
		_, err = c.table.Cleanup(ctx, onEach)
	}
	return removed, err
}

// Size returns the number of catalogued documents.
func (c *Client) Size(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("size", start, err) }()

	return c.table.Size(ctx)
}

// All iterates every document in storage order. An error ends the sequence.
func (c *Client) All(ctx context.Context) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		for d, err := range c.table.Each(ctx) {
			if err != nil {
				yield(Document{}, err)
				return
			}
			if !yield(documentFromDomain(&d), nil) {
				return
			}
		}
	}
}

// Dump writes a human-readable listing of every document to w.
func (c *Client) Dump(ctx context.Context, w io.Writer) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("dump", start, err) }()

	return c.table.Dump(ctx, w)
}
