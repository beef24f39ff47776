package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a lookup or removal of a document absent from the table.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals an insert of a document whose path is already stored.
	ErrAlreadyExists = errors.New("already exists")
	// ErrIO signals a filesystem failure while reading a file or its metadata.
	ErrIO = errors.New("io error")
	// ErrEncoding signals a failure to normalize a path or content to UTF-8.
	ErrEncoding = errors.New("encoding error")
	// ErrInvalidShortpath signals a malformed package/restpath string.
	ErrInvalidShortpath = errors.New("invalid shortpath")
	// ErrInvalidRequest signals invalid search parameters.
	ErrInvalidRequest = errors.New("invalid request")
)

// PathError attaches the offending filename to an ErrIO or ErrEncoding failure.
type PathError struct {
	Kind error
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind.Error(), e.Path, e.Err)
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *PathError) Unwrap() []error { return []error{e.Kind, e.Err} }

// NewIOError wraps err as an ErrIO for path.
func NewIOError(path string, err error) error {
	return &PathError{Kind: ErrIO, Path: path, Err: err}
}

// NewEncodingError wraps err as an ErrEncoding for path.
func NewEncodingError(path string, err error) error {
	return &PathError{Kind: ErrEncoding, Path: path, Err: err}
}
