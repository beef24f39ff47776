package srcdex

import (
	"time"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/request"
	scanuc "github.com/kailas-cloud/srcdex/internal/usecase/scan"
)

// Outcome reports what Add did.
type Outcome string

// Outcome constants.
const (
	NewFile   Outcome = "newfile"
	Updated   Outcome = "update"
	Unchanged Outcome = "unchanged"
)

// Order controls result ordering.
type Order string

// Order constants.
const (
	// Lexical sorts by package, then restpath. It is the default.
	Lexical Order = "lexical"
	// Relevance sorts by match count, newest first among ties.
	Relevance Order = "relevance"
)

// Document is one catalogued source file.
type Document struct {
	Path      string
	Package   string
	Restpath  string
	Shortpath string
	Suffix    string
	Content   string
	Timestamp time.Time
}

// Query selects documents. Every field is optional; the zero Query
// matches the whole catalog.
type Query struct {
	// Patterns must all occur in the content.
	Patterns []string
	// Keywords must all occur, each in the content, restpath or package.
	Keywords []string
	// Packages limits results to any of the named packages.
	Packages []string
	// Paths must all occur in the absolute path.
	Paths []string
	// Restpaths must all occur in the restpath.
	Restpaths []string
	// Suffixes limits results to any of the extensions (without the dot).
	Suffixes []string

	Offset int
	Limit  int
	Order  Order
}

// ScanFailure is a file a scan could not ingest.
type ScanFailure struct {
	Restpath string
	Err      error
}

// ScanReport summarizes one package scan.
type ScanReport struct {
	Package   string
	New       int
	Updated   int
	Unchanged int
	Skipped   int
	Removed   int
	Failed    []ScanFailure
	Duration  time.Duration
}

func documentFromDomain(d *domdoc.Document) Document {
	return Document{
		Path:      d.Path(),
		Package:   d.Package(),
		Restpath:  d.Restpath(),
		Shortpath: d.Shortpath(),
		Suffix:    d.Suffix(),
		Content:   d.Content(),
		Timestamp: d.Timestamp(),
	}
}

func documentsFromDomain(docs []domdoc.Document) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = documentFromDomain(&docs[i])
	}
	return out
}

func outcomeFromDomain(o domdoc.Outcome) Outcome {
	return Outcome(o.String())
}

func (q *Query) toOptions() request.Options {
	return request.Options{
		Patterns:  q.Patterns,
		Keywords:  q.Keywords,
		Packages:  q.Packages,
		Paths:     q.Paths,
		Restpaths: q.Restpaths,
		Suffixes:  q.Suffixes,
		Offset:    q.Offset,
		Limit:     q.Limit,
		Order:     order.Mode(q.Order),
	}
}

func reportFromScan(r *scanuc.Report) ScanReport {
	out := ScanReport{
		Package:   r.Package,
		New:       r.New,
		Updated:   r.Updated,
		Unchanged: r.Unchanged,
		Skipped:   r.Skipped,
		Removed:   r.Removed,
		Duration:  r.Duration,
	}
	for _, f := range r.Failed {
		out.Failed = append(out.Failed, ScanFailure{Restpath: f.Restpath, Err: f.Err})
	}
	return out
}
