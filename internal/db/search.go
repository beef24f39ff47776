package db

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
)

// ScoreField is a pseudo field that sorts by match score: the number of
// match terms of the query a record satisfies.
const ScoreField = "_score"

// KeyField is the reserved column or hash field holding a record's key.
const KeyField = "_key"

// SortKey orders results by one field.
type SortKey struct {
	Field      string
	Descending bool
}

// Query selects records matching Where, sorted by Sort, windowed by Offset/Limit.
// A nil Where selects everything. Limit <= 0 means no limit.
type Query struct {
	Where  predicate.Node
	Sort   []SortKey
	Offset int
	Limit  int
}

// Record is a single selected row.
type Record struct {
	Key    string
	Fields map[string]string
	Score  float64
}

// SortRecords sorts records in place by keys. Numeric fields of def compare
// as integers, everything else as byte strings. Ties keep engine order.
func SortRecords(records []Record, keys []SortKey, def *IndexDefinition) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(records, func(a, b Record) int {
		for _, k := range keys {
			c := compareField(a, b, k.Field, def)
			if k.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareField(a, b Record, field string, def *IndexDefinition) int {
	if field == ScoreField {
		return cmp.Compare(a.Score, b.Score)
	}
	if f, ok := def.Field(field); ok && f.Type == IndexFieldNumeric {
		x, _ := strconv.ParseInt(a.Fields[field], 10, 64)
		y, _ := strconv.ParseInt(b.Fields[field], 10, 64)
		return cmp.Compare(x, y)
	}
	return cmp.Compare(a.Fields[field], b.Fields[field])
}

// Window applies offset and limit to an already sorted slice.
func Window(records []Record, offset, limit int) []Record {
	if offset >= len(records) {
		return nil
	}
	if offset > 0 {
		records = records[offset:]
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}

// MatchScore counts the match terms of where that fields satisfy.
func MatchScore(where predicate.Node, fields map[string]string) float64 {
	var score float64
	for _, t := range predicate.Terms(where) {
		if t.Op == predicate.OpMatch && predicate.Eval(t, fields) {
			score++
		}
	}
	return score
}
