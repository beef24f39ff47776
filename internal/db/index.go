package db

import (
	"errors"
	"strconv"
)

// IndexFieldType enumerates supported index field types.
type IndexFieldType int

const (
	// IndexFieldText is a full-text field supporting match predicates.
	IndexFieldText IndexFieldType = iota
	// IndexFieldTag is an exact-match field.
	IndexFieldTag
	// IndexFieldNumeric is an integer field.
	IndexFieldNumeric
	// IndexFieldStored is kept with the record but never indexed.
	IndexFieldStored
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldTag:
		return "TAG"
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldStored:
		return "STORED"
	default:
		return "TEXT"
	}
}

// IndexField describes a single field in an index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// Exact also indexes a TEXT field for equality comparisons.
	Exact bool
	// Sortable keeps the field available as a sort key.
	Sortable bool
}

// IndexDefinition is a complete schema for one record table.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if !IsValidFieldName(f.Name) {
			return errors.New("field name contains invalid characters: " + f.Name)
		}
		if f.Name == ScoreField || f.Name == KeyField {
			return errors.New("field name is reserved: " + f.Name)
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
	}

	return nil
}

// Field looks up a field by name.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	if idx == nil {
		return IndexField{}, false
	}
	for _, f := range idx.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// FieldNames returns field names in declaration order.
func (idx *IndexDefinition) FieldNames() []string {
	names := make([]string, len(idx.Fields))
	for i, f := range idx.Fields {
		names[i] = f.Name
	}
	return names
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}

// IsValidFieldName returns true if s matches [a-zA-Z_][a-zA-Z0-9_]*, which is
// safe as both a SQL column and an FT schema attribute.
func IsValidFieldName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !(isDigit && i > 0) {
			return false
		}
	}
	return true
}
