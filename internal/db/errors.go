package db

import "errors"

// Sentinel errors for engine operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrKeyExists     = errors.New("db: key already exists")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrUnknownField  = errors.New("db: unknown field")
)

// Op names the failing engine operation in an Error.
const (
	OpCreateIndex = "create-index"
	OpInsert      = "insert"
	OpGet         = "get"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpCount       = "count"
	OpSelect      = "select"
	OpPing        = "ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
