package scan

import (
	"context"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

// Table is the part of the document table a scan drives.
type Table interface {
	Add(ctx context.Context, packageDir, restpath, packageName string) (domdoc.Outcome, error)
	CleanupPackageName(ctx context.Context, pkg string, onEach func(domdoc.Document)) (int, error)
}
