package chi

import (
	"time"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

// ErrorCode is a machine-readable error category.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeInvalidShortpath ErrorCode = "invalid_shortpath"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeEncodingError    ErrorCode = "encoding_error"
	ErrorCodeIOError          ErrorCode = "io_error"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchParams are the query parameters of GET /search.
// List parameters repeat: ?pattern=a&pattern=b.
type SearchParams struct {
	Pattern  *[]string `form:"pattern,omitempty" json:"pattern,omitempty"`
	Keyword  *[]string `form:"keyword,omitempty" json:"keyword,omitempty"`
	Package  *[]string `form:"package,omitempty" json:"package,omitempty"`
	Path     *[]string `form:"path,omitempty" json:"path,omitempty"`
	Restpath *[]string `form:"restpath,omitempty" json:"restpath,omitempty"`
	Suffix   *[]string `form:"suffix,omitempty" json:"suffix,omitempty"`
	Offset   *int      `form:"offset,omitempty" json:"offset,omitempty"`
	Limit    *int      `form:"limit,omitempty" json:"limit,omitempty"`
	Order    *string   `form:"order,omitempty" json:"order,omitempty"`
	Content  *bool     `form:"content,omitempty" json:"content,omitempty"`
}

// Document is the wire form of a catalogued file.
type Document struct {
	Path      string    `json:"path"`
	Package   string    `json:"package"`
	Restpath  string    `json:"restpath"`
	Shortpath string    `json:"shortpath"`
	Suffix    string    `json:"suffix"`
	Timestamp time.Time `json:"timestamp"`
	Content   *string   `json:"content,omitempty"`
}

// DocumentListResponse is returned by /search and /tree.
type DocumentListResponse struct {
	Items  []Document `json:"items"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
	Count  int        `json:"count"`
}

// CleanupResponse is returned by POST /cleanup.
type CleanupResponse struct {
	Removed int      `json:"removed"`
	Paths   []string `json:"paths"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
}

func documentToAPI(d *domdoc.Document, withContent bool) Document {
	out := Document{
		Path:      d.Path(),
		Package:   d.Package(),
		Restpath:  d.Restpath(),
		Shortpath: d.Shortpath(),
		Suffix:    d.Suffix(),
		Timestamp: d.Timestamp(),
	}
	if withContent {
		c := d.Content()
		out.Content = &c
	}
	return out
}

func documentsToAPI(docs []domdoc.Document, withContent bool) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = documentToAPI(&docs[i], withContent)
	}
	return out
}
