package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/srcdex/internal/db"
	"github.com/kailas-cloud/srcdex/internal/domain"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
)

// IndexName is the engine-side name of the document table.
const IndexName = "srcdex_documents"

// Index returns the document schema. prefix is the key namespace used by
// key-value engines and ignored by SQL ones.
func Index(prefix string) *db.IndexDefinition {
	return db.NewIndex(IndexName).
		Prefix(prefix).
		TextExact(domdoc.FieldPath).
		TextExact(domdoc.FieldPackage).
		TextExact(domdoc.FieldRestpath).
		Text(domdoc.FieldContent).
		TextExact(domdoc.FieldSuffix).
		Numeric(domdoc.FieldTimestamp).
		Stored(domdoc.FieldFilename).
		MustBuild()
}

// store is the consumer interface for documents (ISP).
type store interface {
	Insert(ctx context.Context, key string, fields map[string]string) error
	Get(ctx context.Context, key string) (map[string]string, error)
	Update(ctx context.Context, key string, fields map[string]string) error
	Delete(ctx context.Context, key string) error
	Count(ctx context.Context) (int, error)
	Select(ctx context.Context, q *db.Query) ([]db.Record, error)
}

// Repo implements usecase/document.Repository. Documents are keyed by path.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Insert stores a new document. It fails with domain.ErrAlreadyExists if the path is taken.
func (r *Repo) Insert(ctx context.Context, doc *domdoc.Document) error {
	if err := r.store.Insert(ctx, doc.Path(), buildFields(doc)); err != nil {
		if errors.Is(err, db.ErrKeyExists) {
			return fmt.Errorf("insert %s: %w", doc.Path(), domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert %s: %w", doc.Path(), err)
	}
	return nil
}

// Update overwrites a stored document.
func (r *Repo) Update(ctx context.Context, doc *domdoc.Document) error {
	if err := r.store.Update(ctx, doc.Path(), buildFields(doc)); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("update %s: %w", doc.Path(), domain.ErrNotFound)
		}
		return fmt.Errorf("update %s: %w", doc.Path(), err)
	}
	return nil
}

// Get returns the document stored under path.
func (r *Repo) Get(ctx context.Context, path string) (domdoc.Document, error) {
	m, err := r.store.Get(ctx, path)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrNotFound
		}
		return domdoc.Document{}, fmt.Errorf("get %s: %w", path, err)
	}
	return parseFields(path, m), nil
}

// Delete removes the document stored under path.
func (r *Repo) Delete(ctx context.Context, path string) error {
	if err := r.store.Delete(ctx, path); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Find returns documents matching where in the given order, windowed by
// offset and limit. limit <= 0 means no limit.
func (r *Repo) Find(
	ctx context.Context, where predicate.Node, mode order.Mode, offset, limit int,
) ([]domdoc.Document, error) {
	records, err := r.store.Select(ctx, &db.Query{
		Where:  where,
		Sort:   sortKeys(mode),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return toDocuments(records), nil
}

// Scan returns a window of documents in engine-native order, without sorting.
func (r *Repo) Scan(ctx context.Context, offset, limit int) ([]domdoc.Document, error) {
	records, err := r.store.Select(ctx, &db.Query{Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return toDocuments(records), nil
}

func toDocuments(records []db.Record) []domdoc.Document {
	docs := make([]domdoc.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, parseFields(rec.Key, rec.Fields))
	}
	return docs
}

func sortKeys(mode order.Mode) []db.SortKey {
	lexical := []db.SortKey{
		{Field: domdoc.FieldPackage},
		{Field: domdoc.FieldRestpath},
	}
	if mode.OrDefault() != order.Relevance {
		return lexical
	}
	return append([]db.SortKey{
		{Field: db.ScoreField, Descending: true},
		{Field: domdoc.FieldTimestamp, Descending: true},
	}, lexical...)
}
