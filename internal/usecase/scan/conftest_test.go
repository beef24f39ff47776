package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

// --- Mocks ---

type mockTable struct {
	mu        sync.Mutex
	added     []string
	addFn     func(packageDir, restpath, packageName string) (domdoc.Outcome, error)
	cleanupFn func(pkg string) (int, error)
	cleaned   []string
}

func (m *mockTable) Add(_ context.Context, packageDir, restpath, packageName string) (domdoc.Outcome, error) {
	m.mu.Lock()
	m.added = append(m.added, filepath.ToSlash(restpath))
	m.mu.Unlock()
	if m.addFn != nil {
		return m.addFn(packageDir, restpath, packageName)
	}
	return domdoc.NewFile, nil
}

func (m *mockTable) CleanupPackageName(_ context.Context, pkg string, _ func(domdoc.Document)) (int, error) {
	m.mu.Lock()
	m.cleaned = append(m.cleaned, pkg)
	m.mu.Unlock()
	if m.cleanupFn != nil {
		return m.cleanupFn(pkg)
	}
	return 0, nil
}

func (m *mockTable) addedSorted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.added...)
	sort.Strings(out)
	return out
}

// --- Helpers ---

// writeTree creates files (restpath -> body) under a fresh package dir named pkg.
func writeTree(t *testing.T, pkg string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), pkg)
	for rest, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(rest))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
