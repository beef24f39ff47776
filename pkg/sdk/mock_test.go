package srcdex

import (
	"context"
	"io"
	"iter"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/request"
	scanuc "github.com/kailas-cloud/srcdex/internal/usecase/scan"
)

// --- tableUseCase mock ---

type mockTableUC struct {
	addFn             func(ctx context.Context, dir, rest, name string) (domdoc.Outcome, error)
	removeFn          func(ctx context.Context, path string) error
	removeMatchPathFn func(ctx context.Context, path string, onEach func(domdoc.Document)) (int, error)
	removeAllFn       func(ctx context.Context) (int, error)
	getFn             func(ctx context.Context, shortpath string) (domdoc.Document, error)
	belowFn           func(ctx context.Context, shortpath string) ([]domdoc.Document, error)
	searchFn          func(ctx context.Context, opts request.Options) ([]domdoc.Document, error)
	cleanupFn         func(ctx context.Context, onEach func(domdoc.Document)) (int, error)
	cleanupPackageFn  func(ctx context.Context, pkg string, onEach func(domdoc.Document)) (int, error)
	sizeFn            func(ctx context.Context) (int, error)
	docs              []domdoc.Document
	eachErr           error
}

func (m *mockTableUC) Add(ctx context.Context, dir, rest, name string) (domdoc.Outcome, error) {
	return m.addFn(ctx, dir, rest, name)
}

func (m *mockTableUC) Remove(ctx context.Context, path string) error {
	return m.removeFn(ctx, path)
}

func (m *mockTableUC) RemoveMatchPath(
	ctx context.Context, path string, onEach func(domdoc.Document),
) (int, error) {
	return m.removeMatchPathFn(ctx, path, onEach)
}

func (m *mockTableUC) RemoveAll(ctx context.Context) (int, error) {
	return m.removeAllFn(ctx)
}

func (m *mockTableUC) GetShortpath(ctx context.Context, shortpath string) (domdoc.Document, error) {
	return m.getFn(ctx, shortpath)
}

func (m *mockTableUC) GetShortpathBelow(ctx context.Context, shortpath string) ([]domdoc.Document, error) {
	return m.belowFn(ctx, shortpath)
}

func (m *mockTableUC) Search(ctx context.Context, opts request.Options) ([]domdoc.Document, error) {
	return m.searchFn(ctx, opts)
}

func (m *mockTableUC) Cleanup(ctx context.Context, onEach func(domdoc.Document)) (int, error) {
	return m.cleanupFn(ctx, onEach)
}

func (m *mockTableUC) CleanupPackageName(
	ctx context.Context, pkg string, onEach func(domdoc.Document),
) (int, error) {
	return m.cleanupPackageFn(ctx, pkg, onEach)
}

func (m *mockTableUC) Size(ctx context.Context) (int, error) {
	return m.sizeFn(ctx)
}

func (m *mockTableUC) Each(_ context.Context) iter.Seq2[domdoc.Document, error] {
	return func(yield func(domdoc.Document, error) bool) {
		for _, d := range m.docs {
			if !yield(d, nil) {
				return
			}
		}
		if m.eachErr != nil {
			yield(domdoc.Document{}, m.eachErr)
		}
	}
}

func (m *mockTableUC) Dump(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, "dump")
	return err
}

// --- scanUseCase mock ---

type mockScanUC struct {
	scanFn func(ctx context.Context, dir, name string) (scanuc.Report, error)
}

func (m *mockScanUC) ScanPackage(ctx context.Context, dir, name string) (scanuc.Report, error) {
	return m.scanFn(ctx, dir, name)
}

// --- helpers ---

func testClient(table tableUseCase, scanner scanUseCase) *Client {
	return &Client{
		table:   table,
		scanner: scanner,
	}
}
