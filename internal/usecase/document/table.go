package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/srcdex/internal/domain"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/srcdex/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/srcdex/internal/logger"
	"github.com/kailas-cloud/srcdex/internal/metrics"
	"github.com/kailas-cloud/srcdex/internal/pathcodec"
)

// scanPageSize is the window Each pulls from the repository per round trip.
const scanPageSize = 256

// Removal reasons reported to metrics.
const (
	reasonRemove    = "remove"
	reasonMatchPath = "match_path"
	reasonAll       = "all"
	reasonCleanup   = "cleanup"
)

// Table is the document catalog: one row per source file, keyed by its
// canonical absolute path. It holds no locks; per-path atomicity of Add
// comes from the repository's insert-if-absent.
type Table struct {
	repo   Repository
	loader ContentLoader
	fs     FileSystem
	logger *zap.Logger
}

// New creates a table over repo.
func New(repo Repository, loader ContentLoader, fs FileSystem) *Table {
	return &Table{
		repo:   repo,
		loader: loader,
		fs:     fs,
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (t *Table) WithLogger(l *zap.Logger) *Table {
	if l != nil {
		t.logger = l
	}
	return t
}

// log prefers the request-scoped logger carried by ctx.
func (t *Table) log(ctx context.Context) *zap.Logger {
	return logpkg.FromContextOr(ctx, t.logger)
}

// Add ingests packageDir/restpath. packageName overrides the package, which
// otherwise is the base name of packageDir. Content is read only when the
// file is new or its mtime is strictly newer than the stored timestamp.
func (t *Table) Add(ctx context.Context, packageDir, restpath, packageName string) (domdoc.Outcome, error) {
	outcome, err := t.add(ctx, packageDir, restpath, packageName)
	if err != nil {
		metrics.ObserveIngest("error")
		return domdoc.Unchanged, err
	}
	metrics.ObserveIngest(outcome.String())
	return outcome, nil
}

func (t *Table) add(ctx context.Context, packageDir, restpath, packageName string) (domdoc.Outcome, error) {
	absDir, err := filepath.Abs(packageDir)
	if err != nil {
		return domdoc.Unchanged, domain.NewIOError(packageDir, err)
	}
	filename := filepath.Join(absDir, restpath)

	path, err := pathcodec.Normalize(filename)
	if err != nil {
		return domdoc.Unchanged, encodingError(filename, err)
	}
	if packageName == "" {
		packageName = filepath.Base(absDir)
	}
	pkg, err := pathcodec.ToUTF8(packageName)
	if err != nil {
		return domdoc.Unchanged, encodingError(packageName, err)
	}
	rest, err := pathcodec.NormalizeRestpath(restpath)
	if err != nil {
		return domdoc.Unchanged, encodingError(restpath, err)
	}

	// The OS sees the native filename, not the re-encoded key.
	mtime, err := t.fs.ModTime(filename)
	if err != nil {
		return domdoc.Unchanged, err
	}

	in := ingest{filename: filename, path: path, pkg: pkg, rest: rest, mtime: mtime}

	existing, err := t.repo.Get(ctx, path)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return t.insert(ctx, in)
	case err != nil:
		return domdoc.Unchanged, fmt.Errorf("lookup %s: %w", path, err)
	}
	return t.update(ctx, &existing, in)
}

type ingest struct {
	filename string
	path     string
	pkg      string
	rest     string
	mtime    time.Time
}

func (in ingest) build(content string) (domdoc.Document, error) {
	doc, err := domdoc.New(in.path, in.pkg, in.rest, content, in.mtime, pathcodec.SuffixOf(in.path))
	if err != nil {
		return domdoc.Document{}, err
	}
	return doc.WithFilename(in.filename), nil
}

func (t *Table) insert(ctx context.Context, in ingest) (domdoc.Outcome, error) {
	text, err := t.loader.ReadNormalized(in.filename)
	if err != nil {
		return domdoc.Unchanged, err
	}
	doc, err := in.build(text)
	if err != nil {
		return domdoc.Unchanged, err
	}

	err = t.repo.Insert(ctx, &doc)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A concurrent Add won the insert; fall back to the update rule.
		existing, getErr := t.repo.Get(ctx, in.path)
		if getErr != nil {
			return domdoc.Unchanged, fmt.Errorf("lookup %s: %w", in.path, getErr)
		}
		return t.update(ctx, &existing, in)
	}
	if err != nil {
		return domdoc.Unchanged, err
	}

	t.log(ctx).Debug("Document added",
		zap.String("path", doc.Path()),
		zap.String("package", doc.Package()),
	)
	return domdoc.NewFile, nil
}

func (t *Table) update(ctx context.Context, existing *domdoc.Document, in ingest) (domdoc.Outcome, error) {
	if !existing.IsNewerThan(in.mtime) {
		return domdoc.Unchanged, nil
	}

	text, err := t.loader.ReadNormalized(in.filename)
	if err != nil {
		return domdoc.Unchanged, err
	}
	doc, err := in.build(text)
	if err != nil {
		return domdoc.Unchanged, err
	}
	if err := t.repo.Update(ctx, &doc); err != nil {
		return domdoc.Unchanged, err
	}

	t.log(ctx).Debug("Document updated",
		zap.String("path", doc.Path()),
		zap.String("package", doc.Package()),
		zap.Time("timestamp", doc.Timestamp()),
	)
	return domdoc.Updated, nil
}

// Remove deletes the document whose key is exactly path.
// An absent path is reported as domain.ErrNotFound.
func (t *Table) Remove(ctx context.Context, path string) error {
	if err := t.repo.Delete(ctx, path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	metrics.ObserveRemoved(reasonRemove, 1)
	return nil
}

// RemoveMatchPath deletes every document whose path contains path as a
// token or substring, which may be more than the literal file named.
// onEach, if set, sees each document before it is deleted.
func (t *Table) RemoveMatchPath(ctx context.Context, path string, onEach func(domdoc.Document)) (int, error) {
	if strings.TrimSpace(path) == "" {
		return 0, fmt.Errorf("empty path would match every document: %w", domain.ErrInvalidRequest)
	}
	term, err := pathcodec.ToUTF8(path)
	if err != nil {
		return 0, encodingError(path, err)
	}
	docs, err := t.repo.Find(ctx, request.Compile(request.Options{Paths: []string{term}}), order.Lexical, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("match %s: %w", path, err)
	}
	n, err := t.deleteAll(ctx, docs, onEach)
	metrics.ObserveRemoved(reasonMatchPath, n)
	return n, err
}

// RemoveAll deletes every document.
func (t *Table) RemoveAll(ctx context.Context) (int, error) {
	docs, err := t.ToSlice(ctx)
	if err != nil {
		return 0, err
	}
	n, err := t.deleteAll(ctx, docs, nil)
	metrics.ObserveRemoved(reasonAll, n)
	return n, err
}

func (t *Table) deleteAll(ctx context.Context, docs []domdoc.Document, onEach func(domdoc.Document)) (int, error) {
	removed := 0
	for i := range docs {
		if onEach != nil {
			onEach(docs[i])
		}
		if err := t.repo.Delete(ctx, docs[i].Path()); err != nil {
			return removed, fmt.Errorf("remove %s: %w", docs[i].Path(), err)
		}
		removed++
	}
	return removed, nil
}

// GetShortpath returns the document with exactly the package and restpath
// of shortpath, or domain.ErrNotFound.
func (t *Table) GetShortpath(ctx context.Context, shortpath string) (domdoc.Document, error) {
	pkg, rest, err := pathcodec.ParseShortpath(shortpath)
	if err != nil {
		return domdoc.Document{}, err
	}
	where := predicate.AllOf(
		predicate.Equal(domdoc.FieldPackage, pkg),
		predicate.Equal(domdoc.FieldRestpath, rest),
	)
	docs, err := t.repo.Find(ctx, where, order.Lexical, 0, 1)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get %s: %w", shortpath, err)
	}
	if len(docs) == 0 {
		return domdoc.Document{}, fmt.Errorf("shortpath %s: %w", shortpath, domain.ErrNotFound)
	}
	return docs[0], nil
}

// GetShortpathBelow returns, in lexical order, every document for an empty
// shortpath, every document of the package for a bare package, and
// otherwise the package's documents whose restpath contains the given one.
func (t *Table) GetShortpathBelow(ctx context.Context, shortpath string) ([]domdoc.Document, error) {
	var where predicate.Node = predicate.All{}
	if shortpath != "" {
		pkg, rest, err := pathcodec.ParseShortpath(shortpath)
		if err != nil {
			return nil, err
		}
		var restTerm predicate.Node
		if rest != "" {
			restTerm = predicate.Match(domdoc.FieldRestpath, rest)
		}
		where = predicate.AllOf(predicate.Equal(domdoc.FieldPackage, pkg), restTerm)
	}
	docs, err := t.repo.Find(ctx, where, order.Lexical, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("below %s: %w", shortpath, err)
	}
	return docs, nil
}

// Search compiles opts into one predicate and returns the ordered window.
// An empty match set is not an error.
func (t *Table) Search(ctx context.Context, opts request.Options) ([]domdoc.Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	defer metrics.ObserveSearch(time.Now())

	where := request.Compile(opts)
	docs, err := t.repo.Find(ctx, where, opts.Order.OrDefault(), opts.Offset, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", where, err)
	}
	return docs, nil
}

// Cleanup deletes documents whose backing file no longer exists. onEach, if
// set, sees each document before it is deleted.
func (t *Table) Cleanup(ctx context.Context, onEach func(domdoc.Document)) (int, error) {
	snapshot, err := t.ToSlice(ctx)
	if err != nil {
		return 0, err
	}
	return t.sweep(ctx, snapshot, onEach)
}

// CleanupPackageName is Cleanup restricted to documents of package pkg.
func (t *Table) CleanupPackageName(ctx context.Context, pkg string, onEach func(domdoc.Document)) (int, error) {
	snapshot, err := t.repo.Find(ctx, predicate.Equal(domdoc.FieldPackage, pkg), order.Lexical, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("package %s: %w", pkg, err)
	}
	return t.sweep(ctx, snapshot, onEach)
}

func (t *Table) sweep(ctx context.Context, snapshot []domdoc.Document, onEach func(domdoc.Document)) (int, error) {
	var gone []domdoc.Document
	for i := range snapshot {
		// Ask about the native name; the key may have been re-encoded.
		ok, err := t.fs.Exists(snapshot[i].Filename())
		if err != nil {
			return 0, err
		}
		if !ok {
			gone = append(gone, snapshot[i])
		}
	}

	n, err := t.deleteAll(ctx, gone, func(d domdoc.Document) {
		t.log(ctx).Info("Removing document of missing file",
			zap.String("path", d.Path()),
			zap.String("package", d.Package()),
		)
		if onEach != nil {
			onEach(d)
		}
	})
	metrics.ObserveRemoved(reasonCleanup, n)
	return n, err
}

// Size returns the number of documents.
func (t *Table) Size(ctx context.Context) (int, error) {
	return t.repo.Count(ctx)
}

// Each yields every document in engine-native order. Each range over the
// returned sequence starts a fresh scan. A failed page is yielded once as an
// error and ends the sequence.
func (t *Table) Each(ctx context.Context) iter.Seq2[domdoc.Document, error] {
	return func(yield func(domdoc.Document, error) bool) {
		for offset := 0; ; offset += scanPageSize {
			page, err := t.repo.Scan(ctx, offset, scanPageSize)
			if err != nil {
				yield(domdoc.Document{}, err)
				return
			}
			for _, doc := range page {
				if !yield(doc, nil) {
					return
				}
			}
			if len(page) < scanPageSize {
				return
			}
		}
	}
}

// ToSlice collects Each into a snapshot.
func (t *Table) ToSlice(ctx context.Context) ([]domdoc.Document, error) {
	var docs []domdoc.Document
	for doc, err := range t.Each(ctx) {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Dump writes every document's fields to w, one document per block.
func (t *Table) Dump(ctx context.Context, w io.Writer) error {
	for doc, err := range t.Each(ctx) {
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n  package:   %s\n  restpath:  %s\n  suffix:    %s\n  timestamp: %s\n  content:   %d bytes\n",
			doc.Path(), doc.Package(), doc.Restpath(), doc.Suffix(),
			doc.Timestamp().Format(time.RFC3339Nano), len(doc.Content()))
		if err != nil {
			return fmt.Errorf("dump: %w", err)
		}
	}
	return nil
}

func encodingError(name string, err error) error {
	if errors.Is(err, domain.ErrIO) {
		return err
	}
	return domain.NewEncodingError(name, err)
}
