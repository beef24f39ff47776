package document

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/srcdex/internal/content"
	"github.com/kailas-cloud/srcdex/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
	docrepo "github.com/kailas-cloud/srcdex/internal/repository/document"
)

var (
	t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

// countingLoader records how often file content is read.
type countingLoader struct {
	inner *content.Loader
	reads atomic.Int32
}

func (l *countingLoader) ReadNormalized(filename string) (string, error) {
	l.reads.Add(1)
	return l.inner.ReadNormalized(filename)
}

// newTestTable returns a table backed by an isolated in-memory SQLite database.
func newTestTable(t *testing.T) (*Table, *countingLoader) {
	t.Helper()
	store, err := sqlite.NewStore(sqlite.Config{Path: ":memory:"}, docrepo.Index("srcdex:doc:"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("ensure index: %v", err)
	}

	fs := content.NewLoader()
	loader := &countingLoader{inner: fs}
	return New(docrepo.New(store), loader, fs), loader
}

// writeSource writes root/pkg/rest with body and mtime and returns the package dir.
func writeSource(t *testing.T, root, pkg, rest, body string, mtime time.Time) string {
	t.Helper()
	dir := filepath.Join(root, pkg)
	file := filepath.Join(dir, filepath.FromSlash(rest))
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(file, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return dir
}

func mustAdd(t *testing.T, tbl *Table, dir, rest string) domdoc.Outcome {
	t.Helper()
	out, err := tbl.Add(context.Background(), dir, rest, "")
	if err != nil {
		t.Fatalf("Add(%s, %s): %v", dir, rest, err)
	}
	return out
}

func mustSize(t *testing.T, tbl *Table) int {
	t.Helper()
	n, err := tbl.Size(context.Background())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	return n
}

func shortpaths(docs []domdoc.Document) []string {
	out := make([]string, len(docs))
	for i := range docs {
		out[i] = docs[i].Shortpath()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// mockRepo implements Repository for failure-path tests.
type mockRepo struct {
	insertFn func(ctx context.Context, doc *domdoc.Document) error
	updateFn func(ctx context.Context, doc *domdoc.Document) error
	getFn    func(ctx context.Context, path string) (domdoc.Document, error)
	deleteFn func(ctx context.Context, path string) error
	findFn   func(ctx context.Context, where predicate.Node, mode order.Mode, offset, limit int) ([]domdoc.Document, error)
	scanFn   func(ctx context.Context, offset, limit int) ([]domdoc.Document, error)
}

func (m *mockRepo) Insert(ctx context.Context, doc *domdoc.Document) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, doc)
	}
	return nil
}

func (m *mockRepo) Update(ctx context.Context, doc *domdoc.Document) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, doc)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, path string) (domdoc.Document, error) {
	return m.getFn(ctx, path)
}

func (m *mockRepo) Delete(ctx context.Context, path string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, path)
	}
	return nil
}

func (m *mockRepo) Count(context.Context) (int, error) { return 0, nil }

func (m *mockRepo) Find(
	ctx context.Context, where predicate.Node, mode order.Mode, offset, limit int,
) ([]domdoc.Document, error) {
	if m.findFn != nil {
		return m.findFn(ctx, where, mode, offset, limit)
	}
	return nil, nil
}

func (m *mockRepo) Scan(ctx context.Context, offset, limit int) ([]domdoc.Document, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, offset, limit)
	}
	return nil, nil
}

// stubFS answers filesystem queries from fixed values.
type stubFS struct {
	mtime     time.Time
	existsErr error
}

func (f stubFS) ModTime(string) (time.Time, error) { return f.mtime, nil }
func (f stubFS) Exists(string) (bool, error)       { return false, f.existsErr }

type stubLoader struct{ text string }

func (l stubLoader) ReadNormalized(string) (string, error) { return l.text, nil }
