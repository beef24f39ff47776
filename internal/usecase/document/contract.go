package document

import (
	"context"
	"time"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
)

// Repository defines the storage contract for documents keyed by path.
type Repository interface {
	// Insert fails with domain.ErrAlreadyExists if the path is taken.
	Insert(ctx context.Context, doc *domdoc.Document) error
	// Update fails with domain.ErrNotFound if the path is absent.
	Update(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, path string) (domdoc.Document, error)
	Delete(ctx context.Context, path string) error
	Count(ctx context.Context) (int, error)
	Find(ctx context.Context, where predicate.Node, mode order.Mode, offset, limit int) ([]domdoc.Document, error)
	// Scan windows all documents in engine-native order.
	Scan(ctx context.Context, offset, limit int) ([]domdoc.Document, error)
}

// ContentLoader reads a file and returns its text as UTF-8.
type ContentLoader interface {
	ReadNormalized(filename string) (string, error)
}

// FileSystem answers metadata queries on native (pre-normalization) paths.
type FileSystem interface {
	ModTime(filename string) (time.Time, error)
	Exists(filename string) (bool, error)
}
