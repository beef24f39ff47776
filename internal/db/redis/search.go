package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/srcdex/internal/db"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
)

// pageSize is the FT.SEARCH LIMIT used while draining a result set.
const pageSize = 1000

// Select runs q via FT.SEARCH. The engine query narrows candidates; each
// candidate is then checked with predicate.Eval before sorting and windowing
// in process. An unfiltered, unsorted window is read straight from the
// engine.
func (s *Store) Select(ctx context.Context, q *db.Query) ([]db.Record, error) {
	if err := s.checkSort(q.Sort); err != nil {
		return nil, err
	}
	if predicate.IsAll(q.Where) && len(q.Sort) == 0 && q.Limit > 0 {
		_, entries, err := s.search(ctx, "*", max(q.Offset, 0), q.Limit)
		if err != nil {
			return nil, err
		}
		records := make([]db.Record, 0, len(entries))
		for _, e := range entries {
			s.stripInternal(e.fields)
			records = append(records, db.Record{Key: s.recordKey(e.key), Fields: e.fields})
		}
		return records, nil
	}

	query, err := buildQuery(s.def, q.Where)
	if err != nil {
		return nil, err
	}

	var records []db.Record
	for offset := 0; ; offset += pageSize {
		total, entries, err := s.search(ctx, query, offset, pageSize)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			s.stripInternal(e.fields)
			if !predicate.Eval(q.Where, e.fields) {
				continue
			}
			records = append(records, db.Record{
				Key:    s.recordKey(e.key),
				Fields: e.fields,
				Score:  db.MatchScore(q.Where, e.fields),
			})
		}

		if len(entries) == 0 || offset+pageSize >= total {
			break
		}
	}

	db.SortRecords(records, q.Sort, s.def)
	return db.Window(records, q.Offset, q.Limit), nil
}

// search runs one FT.SEARCH page.
func (s *Store) search(ctx context.Context, query string, offset, limit int) (int, []entry, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(
		s.def.Name, query,
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(limit),
		"DIALECT", "2",
	).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	total, entries, err := parseListResult(raw)
	if err != nil {
		return 0, nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return total, entries, nil
}

// Count returns the number of indexed records via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(s.def.Name, "*", "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

func (s *Store) checkSort(keys []db.SortKey) error {
	for _, k := range keys {
		if k.Field == db.ScoreField {
			continue
		}
		if _, ok := s.def.Field(k.Field); !ok {
			return fmt.Errorf("sort by %q: %w", k.Field, db.ErrUnknownField)
		}
	}
	return nil
}

// --- Result parsing ---

type entry struct {
	key    string
	fields map[string]string
}

func parseListResult(raw []rueidis.RedisMessage) (int, []entry, error) {
	if len(raw) == 0 {
		return 0, nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return 0, nil, nil
	}

	entries := make([]entry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, entry{key: key, fields: parseFieldPairs(fields)})
	}

	return int(total), entries, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery translates a predicate tree into a DIALECT 2 query string.
func buildQuery(def *db.IndexDefinition, n predicate.Node) (string, error) {
	if predicate.IsAll(n) {
		return "*", nil
	}
	return buildNode(def, n)
}

func buildNode(def *db.IndexDefinition, n predicate.Node) (string, error) {
	switch v := n.(type) {
	case nil, predicate.All:
		return "*", nil
	case predicate.Term:
		return buildTerm(def, v)
	case predicate.And:
		return buildGroup(def, v.Children, " ")
	case predicate.Or:
		return buildGroup(def, v.Children, " | ")
	}
	return "", fmt.Errorf("unsupported predicate %T", n)
}

func buildGroup(def *db.IndexDefinition, children []predicate.Node, sep string) (string, error) {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		p, err := buildNode(def, c)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func buildTerm(def *db.IndexDefinition, t predicate.Term) (string, error) {
	f, ok := def.Field(t.Field)
	if !ok {
		return "", fmt.Errorf("field %q: %w", t.Field, db.ErrUnknownField)
	}

	if t.Value == "" {
		// Left to the in-process filter.
		return "*", nil
	}

	attr := f.Name
	switch f.Type {
	case db.IndexFieldText:
		if t.Op == predicate.OpMatch {
			return fmt.Sprintf("@%s%s:{w'*%s*'}", f.Name, foldSuffix, wildcardEscaper.Replace(predicate.Fold(t.Value))), nil
		}
		attr += tagSuffix
	case db.IndexFieldStored:
		// Left to the in-process filter.
		return "*", nil
	case db.IndexFieldNumeric:
		if t.Op == predicate.OpEqual {
			if _, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
				return fmt.Sprintf("@%s:[%s %s]", attr, t.Value, t.Value), nil
			}
		}
		// Left to the in-process filter.
		return "*", nil
	}

	if t.Op == predicate.OpEqual {
		return fmt.Sprintf("@%s:{%s}", attr, tagEscaper.Replace(t.Value)), nil
	}
	return fmt.Sprintf("@%s:{w'*%s*'}", attr, wildcardEscaper.Replace(t.Value)), nil
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

var wildcardEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`*`, `\*`,
	`?`, `\?`,
)
