package watch

import (
	"context"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

// Table is the part of the document table the watcher drives.
type Table interface {
	Add(ctx context.Context, packageDir, restpath, packageName string) (domdoc.Outcome, error)
	CleanupPackageName(ctx context.Context, pkg string, onEach func(domdoc.Document)) (int, error)
}

// Filter decides which package-relative paths are never indexed.
type Filter interface {
	Ignored(restpath string) bool
}
