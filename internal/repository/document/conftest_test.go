package document

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/srcdex/internal/db"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	insertFn func(ctx context.Context, key string, fields map[string]string) error
	getFn    func(ctx context.Context, key string) (map[string]string, error)
	updateFn func(ctx context.Context, key string, fields map[string]string) error
	deleteFn func(ctx context.Context, key string) error
	countFn  func(ctx context.Context) (int, error)
	selectFn func(ctx context.Context, q *db.Query) ([]db.Record, error)
}

func (m *mockStore) Insert(ctx context.Context, key string, fields map[string]string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (map[string]string, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Update(ctx context.Context, key string, fields map[string]string) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockStore) Select(ctx context.Context, q *db.Query) ([]db.Record, error) {
	if m.selectFn != nil {
		return m.selectFn(ctx, q)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

func testDocument(t *testing.T) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New("/src/日本語/lib/a.rb", "日本語", "lib/a.rb", "def bar\nend\n", testTime, "rb")
	if err != nil {
		t.Fatal(err)
	}
	return doc
}
