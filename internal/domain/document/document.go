package document

import (
	"fmt"
	"time"
)

// Field names shared by the predicate compiler, the repository and the engines.
const (
	FieldPath      = "path"
	FieldPackage   = "package"
	FieldRestpath  = "restpath"
	FieldContent   = "content"
	FieldTimestamp = "timestamp"
	FieldSuffix    = "suffix"
	// FieldFilename holds the native filename when it differs from the path.
	FieldFilename  = "filename"
)

// Document is one indexed source file (immutable value object).
// Path is the only enforced identity; Package/Restpath are derived from it at ingest.
type Document struct {
	path      string
	pkg       string
	restpath  string
	content   string
	timestamp time.Time
	suffix    string
	filename  string
}

// New validates and creates a Document.
func New(path, pkg, restpath, content string, timestamp time.Time, suffix string) (Document, error) {
	if path == "" {
		return Document{}, fmt.Errorf("document path is required")
	}
	if pkg == "" {
		return Document{}, fmt.Errorf("document package is required")
	}
	if timestamp.IsZero() {
		return Document{}, fmt.Errorf("document timestamp is required")
	}
	return Reconstruct(path, pkg, restpath, content, timestamp, suffix), nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(path, pkg, restpath, content string, timestamp time.Time, suffix string) Document {
	return Document{
		path:      path,
		pkg:       pkg,
		restpath:  restpath,
		content:   content,
		timestamp: timestamp,
		suffix:    suffix,
	}
}

// Path returns the canonical absolute path (primary key).
func (d *Document) Path() string { return d.path }

// Package returns the logical package name.
func (d *Document) Package() string { return d.pkg }

// Restpath returns the path relative to the package directory.
func (d *Document) Restpath() string { return d.restpath }

// Content returns the normalized file text.
func (d *Document) Content() string { return d.content }

// Timestamp returns the backing file's modification time at ingest.
func (d *Document) Timestamp() time.Time { return d.timestamp }

// Suffix returns the file extension without the leading dot.
func (d *Document) Suffix() string { return d.suffix }

// WithFilename returns a copy that remembers the native (pre-normalization)
// filename the document was read from.
func (d Document) WithFilename(filename string) Document {
	if filename == d.path {
		filename = ""
	}
	d.filename = filename
	return d
}

// Filename returns the name the OS knows the backing file by. It differs
// from Path only for names that are not valid UTF-8.
func (d *Document) Filename() string {
	if d.filename == "" {
		return d.path
	}
	return d.filename
}

// Shortpath returns the human-facing "package/restpath" identifier.
func (d *Document) Shortpath() string {
	if d.restpath == "" {
		return d.pkg
	}
	return d.pkg + "/" + d.restpath
}

// IsNewerThan reports whether t is strictly after the stored timestamp.
func (d *Document) IsNewerThan(t time.Time) bool {
	return t.After(d.timestamp)
}

// Outcome is the tri-state result of an ingest.
type Outcome int

// Ingest outcomes.
const (
	// Unchanged means the stored record is at least as new as the file; nothing was written.
	Unchanged Outcome = iota
	// NewFile means a record was inserted.
	NewFile
	// Updated means an existing record was overwritten with newer content.
	Updated
)

func (o Outcome) String() string {
	switch o {
	case NewFile:
		return "newfile"
	case Updated:
		return "update"
	default:
		return "unchanged"
	}
}
