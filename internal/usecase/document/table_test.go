package document

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/srcdex/internal/domain"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/srcdex/internal/domain/search/request"
)

func TestAdd_NewThenUnchanged(t *testing.T) {
	tbl, loader := newTestTable(t)
	dir := writeSource(t, t.TempDir(), "foo", "a.rb", "def bar\n", t0)

	if out := mustAdd(t, tbl, dir, "a.rb"); out != domdoc.NewFile {
		t.Fatalf("first Add = %v, want newfile", out)
	}
	if out := mustAdd(t, tbl, dir, "a.rb"); out != domdoc.Unchanged {
		t.Fatalf("second Add = %v, want unchanged", out)
	}
	if n := loader.reads.Load(); n != 1 {
		t.Errorf("content read %d times, want 1", n)
	}
	if n := mustSize(t, tbl); n != 1 {
		t.Errorf("Size = %d, want 1", n)
	}

	doc, err := tbl.GetShortpath(context.Background(), "foo/a.rb")
	if err != nil {
		t.Fatalf("GetShortpath: %v", err)
	}
	if doc.Path() != filepath.Join(dir, "a.rb") {
		t.Errorf("Path = %q", doc.Path())
	}
	if doc.Content() != "def bar\n" || doc.Suffix() != "rb" {
		t.Errorf("stored %q / %q", doc.Content(), doc.Suffix())
	}
	if !doc.Timestamp().Equal(t0) {
		t.Errorf("Timestamp = %v, want %v", doc.Timestamp(), t0)
	}
}

func TestAdd_MonotonicUpdate(t *testing.T) {
	tbl, _ := newTestTable(t)
	root := t.TempDir()
	dir := writeSource(t, root, "foo", "a.rb", "v1", t0)
	mustAdd(t, tbl, dir, "a.rb")

	// Older mtime with new content is ignored.
	writeSource(t, root, "foo", "a.rb", "v0", t0.Add(-time.Minute))
	if out := mustAdd(t, tbl, dir, "a.rb"); out != domdoc.Unchanged {
		t.Fatalf("older Add = %v, want unchanged", out)
	}

	writeSource(t, root, "foo", "a.rb", "v2", t1)
	if out := mustAdd(t, tbl, dir, "a.rb"); out != domdoc.Updated {
		t.Fatalf("newer Add = %v, want update", out)
	}

	doc, err := tbl.GetShortpath(context.Background(), "foo/a.rb")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content() != "v2" || !doc.Timestamp().Equal(t1) {
		t.Errorf("stored %q at %v, want v2 at %v", doc.Content(), doc.Timestamp(), t1)
	}
	if n := mustSize(t, tbl); n != 1 {
		t.Errorf("Size = %d, want 1", n)
	}
}

func TestAdd_PathIsIdentity(t *testing.T) {
	tbl, _ := newTestTable(t)
	dir := writeSource(t, t.TempDir(), "foo", "a.rb", "x", t0)
	ctx := context.Background()

	mustAdd(t, tbl, dir, "a.rb")
	out, err := tbl.Add(ctx, dir, "a.rb", "renamed")
	if err != nil {
		t.Fatal(err)
	}
	if out != domdoc.Unchanged {
		t.Errorf("Add with package override = %v, want unchanged", out)
	}
	// Same file through a non-canonical directory spelling.
	out, err = tbl.Add(ctx, filepath.Join(dir, "..", "foo"), "./a.rb", "")
	if err != nil {
		t.Fatal(err)
	}
	if out != domdoc.Unchanged {
		t.Errorf("Add via dotted path = %v, want unchanged", out)
	}
	if n := mustSize(t, tbl); n != 1 {
		t.Errorf("Size = %d, want 1", n)
	}
}

func TestAdd_PackageOverride(t *testing.T) {
	tbl, _ := newTestTable(t)
	dir := writeSource(t, t.TempDir(), "checkout-1.2", "lib/a.rb", "x", t0)

	if _, err := tbl.Add(context.Background(), dir, "lib/a.rb", "gem"); err != nil {
		t.Fatal(err)
	}
	doc, err := tbl.GetShortpath(context.Background(), "gem/lib/a.rb")
	if err != nil {
		t.Fatalf("GetShortpath: %v", err)
	}
	if doc.Package() != "gem" || doc.Restpath() != "lib/a.rb" {
		t.Errorf("got %s", doc.Shortpath())
	}
}

func TestAdd_NonASCII(t *testing.T) {
	tbl, _ := newTestTable(t)
	dir := writeSource(t, t.TempDir(), "日本語", "ソース/ファイル.rb", "# コメント\n", t0)

	if out := mustAdd(t, tbl, dir, "ソース/ファイル.rb"); out != domdoc.NewFile {
		t.Fatalf("Add = %v", out)
	}
	doc, err := tbl.GetShortpath(context.Background(), "日本語/ソース/ファイル.rb")
	if err != nil {
		t.Fatalf("GetShortpath: %v", err)
	}
	if doc.Content() != "# コメント\n" {
		t.Errorf("Content = %q", doc.Content())
	}

	docs, err := tbl.Search(context.Background(), request.Options{Patterns: []string{"コメント"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Errorf("Search found %d, want 1", len(docs))
	}
}

func TestAdd_MissingFile(t *testing.T) {
	tbl, _ := newTestTable(t)
	_, err := tbl.Add(context.Background(), t.TempDir(), "nope.rb", "")
	if !errors.Is(err, domain.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if n := mustSize(t, tbl); n != 0 {
		t.Errorf("Size = %d, want 0", n)
	}
}

func TestAdd_Concurrent(t *testing.T) {
	tbl, _ := newTestTable(t)
	dir := writeSource(t, t.TempDir(), "foo", "a.rb", "x", t0)

	const workers = 8
	outcomes := make([]domdoc.Outcome, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i], errs[i] = tbl.Add(context.Background(), dir, "a.rb", "")
		}()
	}
	wg.Wait()

	created := 0
	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if outcomes[i] == domdoc.NewFile {
			created++
		}
	}
	if created != 1 {
		t.Errorf("%d workers reported newfile, want 1", created)
	}
	if n := mustSize(t, tbl); n != 1 {
		t.Errorf("Size = %d, want 1", n)
	}
}

func TestAdd_LostInsertRaceFallsBackToUpdate(t *testing.T) {
	stored := domdoc.Reconstruct("/src/foo/a.rb", "foo", "a.rb", "old", t0, "rb")
	gets := 0
	var updated *domdoc.Document
	repo := &mockRepo{
		getFn: func(context.Context, string) (domdoc.Document, error) {
			gets++
			if gets == 1 {
				return domdoc.Document{}, domain.ErrNotFound
			}
			return stored, nil
		},
		insertFn: func(context.Context, *domdoc.Document) error {
			return domain.ErrAlreadyExists
		},
		updateFn: func(_ context.Context, doc *domdoc.Document) error {
			updated = doc
			return nil
		},
	}
	tbl := New(repo, stubLoader{text: "new"}, stubFS{mtime: t1})

	out, err := tbl.Add(context.Background(), "/src/foo", "a.rb", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != domdoc.Updated {
		t.Errorf("Add = %v, want update", out)
	}
	if updated == nil || updated.Content() != "new" {
		t.Errorf("Update not called with new content: %+v", updated)
	}
}

func TestAdd_LookupError(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &mockRepo{
		getFn: func(context.Context, string) (domdoc.Document, error) {
			return domdoc.Document{}, boom
		},
	}
	tbl := New(repo, stubLoader{}, stubFS{mtime: t0})

	if _, err := tbl.Add(context.Background(), "/src/foo", "a.rb", ""); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

// seedQueryFixture adds foo/a.rb and baz/b.py, both containing "def bar".
func seedQueryFixture(t *testing.T, tbl *Table) {
	t.Helper()
	root := t.TempDir()
	mustAdd(t, tbl, writeSource(t, root, "foo", "a.rb", "def bar\nend\n", t0), "a.rb")
	mustAdd(t, tbl, writeSource(t, root, "baz", "b.py", "def bar():\n    pass\n", t1), "b.py")
}

func TestSearch_Examples(t *testing.T) {
	tbl, _ := newTestTable(t)
	seedQueryFixture(t, tbl)

	tests := []struct {
		name string
		opts request.Options
		want []string
	}{
		{"pattern and suffix", request.Options{Patterns: []string{"bar"}, Suffixes: []string{"rb"}}, []string{"foo/a.rb"}},
		{"suffix or", request.Options{Suffixes: []string{"rb", "py"}}, []string{"baz/b.py", "foo/a.rb"}},
		{"empty lists everything", request.Options{}, []string{"baz/b.py", "foo/a.rb"}},
		{"package", request.Options{Packages: []string{"baz"}}, []string{"baz/b.py"}},
		{"keyword on restpath", request.Options{Keywords: []string{"a.rb"}}, []string{"foo/a.rb"}},
		{"case-insensitive", request.Options{Patterns: []string{"DEF BAR"}}, []string{"baz/b.py", "foo/a.rb"}},
		{"no match", request.Options{Patterns: []string{"nothing"}}, []string{}},
		{"path", request.Options{Paths: []string{"foo/a"}}, []string{"foo/a.rb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := tbl.Search(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if got := shortpaths(docs); !equalStrings(got, tt.want) {
				t.Errorf("Search = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch_Pagination(t *testing.T) {
	tbl, _ := newTestTable(t)
	root := t.TempDir()
	for _, name := range []string{"e.rb", "c.rb", "a.rb", "d.rb", "b.rb"} {
		mustAdd(t, tbl, writeSource(t, root, "p", name, "body", t0), name)
	}

	docs, err := tbl.Search(context.Background(), request.Options{
		Patterns: []string{"body"},
		Offset:   2,
		Limit:    2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := shortpaths(docs), []string{"p/c.rb", "p/d.rb"}; !equalStrings(got, want) {
		t.Errorf("window = %v, want %v", got, want)
	}

	docs, err = tbl.Search(context.Background(), request.Options{Offset: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("offset past end returned %d docs", len(docs))
	}
}

func TestSearch_Relevance(t *testing.T) {
	tbl, _ := newTestTable(t)
	root := t.TempDir()
	// zalpha.rb matches the keyword in content and restpath, a.rb only in content.
	mustAdd(t, tbl, writeSource(t, root, "p", "a.rb", "alpha", t1), "a.rb")
	mustAdd(t, tbl, writeSource(t, root, "p", "zalpha.rb", "alpha", t0), "zalpha.rb")

	opts := request.Options{Keywords: []string{"alpha"}}
	docs, err := tbl.Search(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := shortpaths(docs); !equalStrings(got, []string{"p/a.rb", "p/zalpha.rb"}) {
		t.Errorf("lexical = %v", got)
	}

	opts.Order = order.Relevance
	docs, err = tbl.Search(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := shortpaths(docs); !equalStrings(got, []string{"p/zalpha.rb", "p/a.rb"}) {
		t.Errorf("relevance = %v", got)
	}
}

func TestSearch_InvalidOptions(t *testing.T) {
	tbl, _ := newTestTable(t)
	_, err := tbl.Search(context.Background(), request.Options{Offset: -1})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestGetShortpath(t *testing.T) {
	tbl, _ := newTestTable(t)
	seedQueryFixture(t, tbl)
	ctx := context.Background()

	if _, err := tbl.GetShortpath(ctx, "foo/a.rb"); err != nil {
		t.Errorf("exact lookup: %v", err)
	}
	// Equality, not substring.
	if _, err := tbl.GetShortpath(ctx, "fo/a.rb"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for partial package, got %v", err)
	}
	if _, err := tbl.GetShortpath(ctx, "foo/a"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for partial restpath, got %v", err)
	}
	if _, err := tbl.GetShortpath(ctx, "/a.rb"); !errors.Is(err, domain.ErrInvalidShortpath) {
		t.Errorf("expected ErrInvalidShortpath, got %v", err)
	}
}

func TestGetShortpathBelow(t *testing.T) {
	tbl, _ := newTestTable(t)
	root := t.TempDir()
	for _, rest := range []string{"lib/b.rb", "lib/a.rb", "test/a_test.rb"} {
		mustAdd(t, tbl, writeSource(t, root, "foo", rest, "x", t0), rest)
	}
	mustAdd(t, tbl, writeSource(t, root, "bar", "lib/c.rb", "x", t0), "lib/c.rb")

	tests := []struct {
		shortpath string
		want      []string
	}{
		{"", []string{"bar/lib/c.rb", "foo/lib/a.rb", "foo/lib/b.rb", "foo/test/a_test.rb"}},
		{"foo", []string{"foo/lib/a.rb", "foo/lib/b.rb", "foo/test/a_test.rb"}},
		{"foo/lib", []string{"foo/lib/a.rb", "foo/lib/b.rb"}},
		{"fo", []string{}},
		{"bar/test", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.shortpath, func(t *testing.T) {
			docs, err := tbl.GetShortpathBelow(context.Background(), tt.shortpath)
			if err != nil {
				t.Fatal(err)
			}
			if got := shortpaths(docs); !equalStrings(got, tt.want) {
				t.Errorf("below %q = %v, want %v", tt.shortpath, got, tt.want)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	tbl, _ := newTestTable(t)
	dir := writeSource(t, t.TempDir(), "foo", "a.rb", "x", t0)
	mustAdd(t, tbl, dir, "a.rb")
	ctx := context.Background()

	if err := tbl.Remove(ctx, filepath.Join(dir, "a.rb")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n := mustSize(t, tbl); n != 0 {
		t.Errorf("Size = %d, want 0", n)
	}
	if err := tbl.Remove(ctx, filepath.Join(dir, "a.rb")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Remove: expected ErrNotFound, got %v", err)
	}
}

func TestRemoveMatchPath_Substring(t *testing.T) {
	tbl, _ := newTestTable(t)
	root := t.TempDir()
	dir := writeSource(t, root, "foo", "a.rb", "x", t0)
	writeSource(t, root, "foo", "ab.rb", "x", t0)
	mustAdd(t, tbl, dir, "a.rb")
	mustAdd(t, tbl, dir, "ab.rb")
	mustAdd(t, tbl, writeSource(t, root, "bar", "a.rb", "x", t0), "a.rb")

	var seen []string
	n, err := tbl.RemoveMatchPath(context.Background(), "foo/a", func(d domdoc.Document) {
		seen = append(seen, d.Shortpath())
	})
	if err != nil {
		t.Fatal(err)
	}
	// foo/a matches both foo/a.rb and foo/ab.rb.
	if n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	if !equalStrings(seen, []string{"foo/a.rb", "foo/ab.rb"}) {
		t.Errorf("callback saw %v", seen)
	}
	left, err := tbl.ToSlice(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := shortpaths(left); !equalStrings(got, []string{"bar/a.rb"}) {
		t.Errorf("remaining = %v", got)
	}
}

func TestRemoveMatchPath_EmptyPath(t *testing.T) {
	tbl, _ := newTestTable(t)
	seedQueryFixture(t, tbl)

	if _, err := tbl.RemoveMatchPath(context.Background(), " ", nil); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if n := mustSize(t, tbl); n != 2 {
		t.Errorf("Size = %d, want 2", n)
	}
}

func TestRemoveAll(t *testing.T) {
	tbl, _ := newTestTable(t)
	seedQueryFixture(t, tbl)

	n, err := tbl.RemoveAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	if n := mustSize(t, tbl); n != 0 {
		t.Errorf("Size = %d, want 0", n)
	}
}

func TestCleanup(t *testing.T) {
	tbl, _ := newTestTable(t)
	root := t.TempDir()
	dir := writeSource(t, root, "foo", "a.rb", "x", t0)
	writeSource(t, root, "foo", "b.rb", "x", t0)
	mustAdd(t, tbl, dir, "a.rb")
	mustAdd(t, tbl, dir, "b.rb")
	mustAdd(t, tbl, writeSource(t, root, "bar", "c.rb", "x", t0), "c.rb")

	if err := os.Remove(filepath.Join(dir, "a.rb")); err != nil {
		t.Fatal(err)
	}

	var seen []string
	n, err := tbl.Cleanup(context.Background(), func(d domdoc.Document) {
		seen = append(seen, d.Shortpath())
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || !equalStrings(seen, []string{"foo/a.rb"}) {
		t.Errorf("Cleanup removed %d %v, want 1 [foo/a.rb]", n, seen)
	}
	if size := mustSize(t, tbl); size != 2 {
		t.Errorf("Size = %d, want 2", size)
	}

	n, err = tbl.Cleanup(context.Background(), nil)
	if err != nil || n != 0 {
		t.Errorf("second Cleanup = %d, %v", n, err)
	}
}

func TestCleanup_KeepsNonUTF8Filename(t *testing.T) {
	tbl, _ := newTestTable(t)
	// "日本.rb" in EUC-JP; the key is its UTF-8 re-encoding.
	native := "\xc6\xfc\xcb\xdc.rb"
	dir := writeSource(t, t.TempDir(), "foo", native, "x", t0)

	if out := mustAdd(t, tbl, dir, native); out != domdoc.NewFile {
		t.Fatalf("Add = %v, want newfile", out)
	}
	doc, err := tbl.GetShortpath(context.Background(), "foo/日本.rb")
	if err != nil {
		t.Fatalf("GetShortpath: %v", err)
	}
	if doc.Filename() != filepath.Join(dir, native) {
		t.Errorf("Filename() = %q", doc.Filename())
	}

	n, err := tbl.Cleanup(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("Cleanup with the file present = %d, %v", n, err)
	}
	n, err = tbl.CleanupPackageName(context.Background(), "foo", nil)
	if err != nil || n != 0 {
		t.Fatalf("CleanupPackageName with the file present = %d, %v", n, err)
	}
	if out := mustAdd(t, tbl, dir, native); out != domdoc.Unchanged {
		t.Errorf("re-Add = %v, want unchanged", out)
	}

	if err := os.Remove(filepath.Join(dir, native)); err != nil {
		t.Fatal(err)
	}
	n, err = tbl.Cleanup(context.Background(), nil)
	if err != nil || n != 1 {
		t.Fatalf("Cleanup after removal = %d, %v", n, err)
	}
	if size := mustSize(t, tbl); size != 0 {
		t.Errorf("Size = %d, want 0", size)
	}
}

func TestCleanupPackageName(t *testing.T) {
	tbl, _ := newTestTable(t)
	root := t.TempDir()
	foo := writeSource(t, root, "foo", "a.rb", "x", t0)
	bar := writeSource(t, root, "bar", "a.rb", "x", t0)
	mustAdd(t, tbl, foo, "a.rb")
	mustAdd(t, tbl, bar, "a.rb")

	for _, dir := range []string{foo, bar} {
		if err := os.Remove(filepath.Join(dir, "a.rb")); err != nil {
			t.Fatal(err)
		}
	}

	n, err := tbl.CleanupPackageName(context.Background(), "foo", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	left, err := tbl.ToSlice(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := shortpaths(left); !equalStrings(got, []string{"bar/a.rb"}) {
		t.Errorf("remaining = %v", got)
	}
}

func TestCleanup_StatErrorAborts(t *testing.T) {
	doc := domdoc.Reconstruct("/src/foo/a.rb", "foo", "a.rb", "", t0, "rb")
	deleted := false
	repo := &mockRepo{
		findFn: func(context.Context, predicate.Node, order.Mode, int, int) ([]domdoc.Document, error) {
			return []domdoc.Document{doc}, nil
		},
		deleteFn: func(context.Context, string) error {
			deleted = true
			return nil
		},
	}
	statErr := domain.NewIOError("/src/foo/a.rb", os.ErrPermission)
	tbl := New(repo, stubLoader{}, stubFS{existsErr: statErr})

	if _, err := tbl.CleanupPackageName(context.Background(), "foo", nil); !errors.Is(err, domain.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if deleted {
		t.Error("nothing should be deleted after a stat failure")
	}
}

func TestEach_Restartable(t *testing.T) {
	tbl, _ := newTestTable(t)
	seedQueryFixture(t, tbl)
	seq := tbl.Each(context.Background())

	for round := range 2 {
		n := 0
		for _, err := range seq {
			if err != nil {
				t.Fatal(err)
			}
			n++
		}
		if n != 2 {
			t.Errorf("round %d yielded %d, want 2", round, n)
		}
	}
}

func TestEach_Pages(t *testing.T) {
	total := scanPageSize + 3
	var offsets []int
	repo := &mockRepo{
		scanFn: func(_ context.Context, offset, limit int) ([]domdoc.Document, error) {
			offsets = append(offsets, offset)
			n := min(limit, total-offset)
			return make([]domdoc.Document, max(n, 0)), nil
		},
	}
	tbl := New(repo, stubLoader{}, stubFS{})

	docs, err := tbl.ToSlice(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != total {
		t.Errorf("collected %d, want %d", len(docs), total)
	}
	if len(offsets) != 2 || offsets[1] != scanPageSize {
		t.Errorf("scan offsets = %v", offsets)
	}
}

func TestEach_Error(t *testing.T) {
	boom := errors.New("scan failed")
	repo := &mockRepo{
		scanFn: func(context.Context, int, int) ([]domdoc.Document, error) { return nil, boom },
	}
	tbl := New(repo, stubLoader{}, stubFS{})

	if _, err := tbl.ToSlice(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected scan error, got %v", err)
	}
	if err := tbl.Dump(context.Background(), &bytes.Buffer{}); !errors.Is(err, boom) {
		t.Fatalf("Dump: expected scan error, got %v", err)
	}
}

func TestDump(t *testing.T) {
	tbl, _ := newTestTable(t)
	dir := writeSource(t, t.TempDir(), "foo", "a.rb", "def bar\n", t0)
	mustAdd(t, tbl, dir, "a.rb")

	var buf bytes.Buffer
	if err := tbl.Dump(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		filepath.Join(dir, "a.rb"),
		"package:   foo",
		"restpath:  a.rb",
		"suffix:    rb",
		"content:   8 bytes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
