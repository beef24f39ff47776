package document

import (
	"encoding/base64"
	"strconv"
	"time"

	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
)

// buildFields converts a domain Document into a flat record for the store.
// Timestamps are stored as Unix nanoseconds so numeric ordering is exact.
// A native filename that differs from the path is stored base64 encoded,
// since it is usually not valid UTF-8.
func buildFields(doc *domdoc.Document) map[string]string {
	var filename string
	if native := doc.Filename(); native != doc.Path() {
		filename = base64.StdEncoding.EncodeToString([]byte(native))
	}
	return map[string]string{
		domdoc.FieldFilename:  filename,
		domdoc.FieldPath:      doc.Path(),
		domdoc.FieldPackage:   doc.Package(),
		domdoc.FieldRestpath:  doc.Restpath(),
		domdoc.FieldContent:   doc.Content(),
		domdoc.FieldSuffix:    doc.Suffix(),
		domdoc.FieldTimestamp: strconv.FormatInt(doc.Timestamp().UnixNano(), 10),
	}
}

// parseFields converts a flat record back into a domain Document.
func parseFields(key string, m map[string]string) domdoc.Document {
	path := m[domdoc.FieldPath]
	if path == "" {
		path = key
	}
	var ts time.Time
	if nanos, err := strconv.ParseInt(m[domdoc.FieldTimestamp], 10, 64); err == nil {
		ts = time.Unix(0, nanos)
	}
	doc := domdoc.Reconstruct(
		path,
		m[domdoc.FieldPackage],
		m[domdoc.FieldRestpath],
		m[domdoc.FieldContent],
		ts,
		m[domdoc.FieldSuffix],
	)
	if raw, err := base64.StdEncoding.DecodeString(m[domdoc.FieldFilename]); err == nil && len(raw) > 0 {
		doc = doc.WithFilename(string(raw))
	}
	return doc
}
