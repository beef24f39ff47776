package srcdex

import "github.com/kailas-cloud/srcdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrIO               = domain.ErrIO
	ErrEncoding         = domain.ErrEncoding
	ErrInvalidShortpath = domain.ErrInvalidShortpath
	ErrInvalidRequest   = domain.ErrInvalidRequest
)
