package health

import "context"

// DBPinger checks index engine availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CatalogCounter reports the number of catalogued documents.
type CatalogCounter interface {
	Size(ctx context.Context) (int, error)
}
