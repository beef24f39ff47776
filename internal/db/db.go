package db

import (
	"context"
	"time"
)

// Store is the index engine facade: a keyed record table with full-text
// predicates, boolean combination, multi-key sort and offset/limit.
type Store interface {
	Pinger
	IndexManager
	RecordStore
	Selector
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager creates the engine-side schema for the bound IndexDefinition.
type IndexManager interface {
	EnsureIndex(ctx context.Context) error
}

// RecordStore provides keyed access to flat records.
type RecordStore interface {
	// Insert adds a record. It fails with ErrKeyExists if key is present,
	// which makes check-then-insert safe against a concurrent writer.
	Insert(ctx context.Context, key string, fields map[string]string) error
	// Get returns the fields of key or ErrKeyNotFound.
	Get(ctx context.Context, key string) (map[string]string, error)
	// Update overwrites the given fields of an existing record or returns ErrKeyNotFound.
	Update(ctx context.Context, key string, fields map[string]string) error
	// Delete removes key or returns ErrKeyNotFound.
	Delete(ctx context.Context, key string) error
	// Count returns the number of records.
	Count(ctx context.Context) (int, error)
}

// Selector evaluates predicate queries.
type Selector interface {
	Select(ctx context.Context, q *Query) ([]Record, error)
}
