package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("test-idx").
		Prefix("doc:").
		TextExact("path").
		Text("content").
		Numeric("timestamp").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	if f := idx.Fields[0]; f.Name != "path" || f.Type != IndexFieldText || !f.Exact || !f.Sortable {
		t.Errorf("field[0] = %+v, want exact sortable path TEXT", f)
	}
	if f := idx.Fields[1]; f.Exact || f.Sortable {
		t.Errorf("field[1] = %+v, want plain TEXT", f)
	}
	if f := idx.Fields[2]; f.Type != IndexFieldNumeric || !f.Sortable {
		t.Errorf("field[2] = %+v, want sortable NUMERIC", f)
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		Tag("x").
		MustBuild()

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "field not a column name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Text(`a"; DROP`).Build()
			},
			wantErr: "field name contains invalid characters",
		},
		{
			name: "leading digit",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Text("1st").Build()
			},
			wantErr: "field name contains invalid characters",
		},
		{
			name: "reserved score field",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Numeric(ScoreField).Build()
			},
			wantErr: "reserved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Prefix("doc:").
		Tag("cat").
		Numeric("ts").
		Stored("origin").
		MustBuild()

	s := idx.String()
	want := "FT.CREATE my-idx ON HASH PREFIX doc: SCHEMA cat TAG ts NUMERIC SORTABLE"
	if s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}

func TestIndexBuilder_Stored(t *testing.T) {
	idx := NewIndex("idx").Text("content").Stored("origin").MustBuild()
	f, ok := idx.Field("origin")
	if !ok {
		t.Fatal("stored field should be declared")
	}
	if f.Type != IndexFieldStored || f.Sortable || f.Exact {
		t.Errorf("unexpected stored field: %+v", f)
	}
}

func TestIndexDefinition_Field(t *testing.T) {
	idx := NewIndex("idx").Text("content").Numeric("ts").MustBuild()

	f, ok := idx.Field("ts")
	if !ok || f.Type != IndexFieldNumeric {
		t.Errorf("Field(ts) = %+v, %v", f, ok)
	}
	if _, ok := idx.Field("missing"); ok {
		t.Error("expected missing field lookup to fail")
	}
	var nilIdx *IndexDefinition
	if _, ok := nilIdx.Field("ts"); ok {
		t.Error("nil definition should have no fields")
	}
}

func TestIndexBuilder_DuplicateFields(t *testing.T) {
	idx := &IndexDefinition{
		Name: "dup-idx",
		Fields: []IndexField{
			{Name: "field1", Type: IndexFieldTag},
			{Name: "field1", Type: IndexFieldNumeric},
		},
	}

	if err := idx.Validate(); err == nil {
		t.Fatal("expected error for duplicate fields")
	}
}
