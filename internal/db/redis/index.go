package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/srcdex/internal/db"
)

// tagSuffix names the TAG alias indexed alongside every TEXT field. Match
// and equality predicates run against it because TEXT tokenization cannot
// express substring matches that span punctuation.
const tagSuffix = "__tag"

// foldSuffix names the hash field holding predicate.Fold of a text field.
// It is indexed as a case-sensitive TAG, so match terms, folded the same
// way, compare exactly instead of relying on the engine's own folding.
const foldSuffix = "__fold"

// tagSeparator keeps whole values as single tags.
const tagSeparator = "\x1f"

// EnsureIndex creates the FT index for the bound definition unless it exists.
func (s *Store) EnsureIndex(ctx context.Context) error {
	exists, err := s.indexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	args, err := buildCreateArgs(s.def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes the FT index, keeping the hashes.
func (s *Store) DropIndex(ctx context.Context) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(s.def.Name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// indexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) indexExists(ctx context.Context) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(s.def.Name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return true, nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx == nil || idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name, "ON", "HASH"}

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	var args []string

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, f.Name, "NUMERIC")
		if f.Sortable {
			args = append(args, "SORTABLE")
		}

	case db.IndexFieldText:
		args = append(args, f.Name, "TEXT")
		if f.Sortable {
			args = append(args, "SORTABLE")
		}
		args = append(args, f.Name, "AS", f.Name+tagSuffix, "TAG", "SEPARATOR", tagSeparator)
		args = append(args, f.Name+foldSuffix, "TAG", "SEPARATOR", tagSeparator, "CASESENSITIVE")

	case db.IndexFieldTag:
		args = append(args, f.Name, "TAG", "SEPARATOR", tagSeparator)
		if f.Sortable {
			args = append(args, "SORTABLE")
		}

	case db.IndexFieldStored:
		// Kept in the hash only.

	default:
		return nil, errors.New("unknown field type")
	}

	return args, nil
}
