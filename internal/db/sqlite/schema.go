package sqlite

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/srcdex/internal/db"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
)

// foldSuffix names the shadow column holding predicate.Fold of a text field.
// The FTS5 index covers the folded columns, so match terms are folded too and
// LIKE never relies on SQLite's ASCII-only case folding.
const foldSuffix = "__fold"

func foldColumn(name string) string { return name + foldSuffix }

// schema derives table, FTS5 shadow table and SQL fragments from an index definition.
type schema struct {
	def   *db.IndexDefinition
	table string
	fts   string
	text  []string
}

func newSchema(def *db.IndexDefinition) schema {
	sch := schema{def: def, table: def.Name, fts: def.Name + "_fts"}
	for _, f := range def.Fields {
		if f.Type == db.IndexFieldText {
			sch.text = append(sch.text, f.Name)
		}
	}
	return sch
}

func (sch schema) ddl() []string {
	cols := []string{
		"id INTEGER PRIMARY KEY",
		quote(db.KeyField) + " TEXT NOT NULL UNIQUE",
	}
	var stmts []string
	for _, f := range sch.def.Fields {
		if f.Type == db.IndexFieldNumeric {
			cols = append(cols, quote(f.Name)+" INTEGER NOT NULL DEFAULT 0")
		} else {
			cols = append(cols, quote(f.Name)+" TEXT NOT NULL DEFAULT ''")
		}
		if f.Exact || f.Sortable || f.Type == db.IndexFieldTag {
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)",
				quote(sch.table+"_"+f.Name+"_idx"), quote(sch.table), quote(f.Name)))
		}
	}
	for _, name := range sch.text {
		cols = append(cols, quote(foldColumn(name))+" TEXT NOT NULL DEFAULT ''")
	}
	stmts = append([]string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		quote(sch.table), strings.Join(cols, ",\n\t"))}, stmts...)

	if len(sch.text) == 0 {
		return stmts
	}

	textCols := quoteAll(sch.foldColumns())
	newCols := prefixAll("new.", textCols)
	oldCols := prefixAll("old.", textCols)
	ftsCols := strings.Join(textCols, ", ")
	stmts = append(stmts,
		fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS %s USING fts5(%s, content='%s', content_rowid='id', tokenize='trigram')",
			quote(sch.fts), ftsCols, sch.table),
		fmt.Sprintf("CREATE TRIGGER IF NOT EXISTS %s AFTER INSERT ON %s BEGIN\n"+
			"\tINSERT INTO %s(rowid, %s) VALUES (new.id, %s);\nEND",
			quote(sch.table+"_ai"), quote(sch.table), quote(sch.fts), ftsCols, strings.Join(newCols, ", ")),
		fmt.Sprintf("CREATE TRIGGER IF NOT EXISTS %s AFTER DELETE ON %s BEGIN\n"+
			"\tINSERT INTO %s(%s, rowid, %s) VALUES ('delete', old.id, %s);\nEND",
			quote(sch.table+"_ad"), quote(sch.table), quote(sch.fts), quote(sch.fts), ftsCols, strings.Join(oldCols, ", ")),
		fmt.Sprintf("CREATE TRIGGER IF NOT EXISTS %s AFTER UPDATE ON %s BEGIN\n"+
			"\tINSERT INTO %s(%s, rowid, %s) VALUES ('delete', old.id, %s);\n"+
			"\tINSERT INTO %s(rowid, %s) VALUES (new.id, %s);\nEND",
			quote(sch.table+"_au"), quote(sch.table),
			quote(sch.fts), quote(sch.fts), ftsCols, strings.Join(oldCols, ", "),
			quote(sch.fts), ftsCols, strings.Join(newCols, ", ")),
	)
	return stmts
}

func (sch schema) foldColumns() []string {
	out := make([]string, len(sch.text))
	for i, name := range sch.text {
		out[i] = foldColumn(name)
	}
	return out
}

// foldedValues returns the shadow column values for the text fields present
// in fields, in sch.text order.
func (sch schema) foldedValues(fields map[string]string) (cols []string, args []any) {
	for _, name := range sch.text {
		v, ok := fields[name]
		if !ok {
			continue
		}
		cols = append(cols, quote(foldColumn(name)))
		args = append(args, predicate.Fold(v))
	}
	return cols, args
}

func (sch schema) columnList() string {
	return strings.Join(quoteAll(sch.def.FieldNames()), ", ")
}

func (sch schema) fieldMap(values []string) map[string]string {
	m := make(map[string]string, len(values))
	for i, f := range sch.def.Fields {
		m[f.Name] = values[i]
	}
	return m
}

type statement struct {
	sql  string
	args []any
}

func (sch schema) selectSQL(q *db.Query) (statement, error) {
	order, err := sch.orderBy(q.Sort)
	if err != nil {
		return statement{}, err
	}

	score, scoreArgs, err := sch.scoreExpr(q.Where)
	if err != nil {
		return statement{}, err
	}
	where, whereArgs, err := sch.whereExpr(q.Where)
	if err != nil {
		return statement{}, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s, %s, %s AS %s FROM %s",
		quote(db.KeyField), sch.columnList(), score, quote(db.ScoreField), quote(sch.table))
	if where != "" {
		b.WriteString(" WHERE " + where)
	}
	b.WriteString(" ORDER BY " + order)
	b.WriteString(" LIMIT ? OFFSET ?")

	args := make([]any, 0, len(scoreArgs)+len(whereArgs)+2)
	args = append(args, scoreArgs...)
	args = append(args, whereArgs...)
	args = append(args, limit, max(q.Offset, 0))
	return statement{sql: b.String(), args: args}, nil
}

func (sch schema) orderBy(keys []db.SortKey) (string, error) {
	if len(keys) == 0 {
		return "id", nil
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Field != db.ScoreField {
			if _, ok := sch.def.Field(k.Field); !ok {
				return "", fmt.Errorf("sort by %q: %w", k.Field, db.ErrUnknownField)
			}
		}
		dir := "ASC"
		if k.Descending {
			dir = "DESC"
		}
		parts = append(parts, quote(k.Field)+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}

// scoreExpr counts satisfied match terms, mirroring db.MatchScore.
func (sch schema) scoreExpr(n predicate.Node) (string, []any, error) {
	var parts []string
	var args []any
	for _, t := range predicate.Terms(n) {
		if t.Op != predicate.OpMatch {
			continue
		}
		f, ok := sch.def.Field(t.Field)
		if !ok {
			return "", nil, fmt.Errorf("field %q: %w", t.Field, db.ErrUnknownField)
		}
		col, value := quote(f.Name), t.Value
		if f.Type == db.IndexFieldText {
			col, value = quote(foldColumn(f.Name)), predicate.Fold(value)
		}
		parts = append(parts, fmt.Sprintf(`(CASE WHEN %s LIKE ? ESCAPE '\' THEN 1 ELSE 0 END)`, col))
		args = append(args, likePattern(value))
	}
	if len(parts) == 0 {
		return "0", nil, nil
	}
	return "(" + strings.Join(parts, " + ") + ")", args, nil
}

// whereExpr renders n as a SQL condition. An empty string selects everything.
func (sch schema) whereExpr(n predicate.Node) (string, []any, error) {
	if predicate.IsAll(n) {
		return "", nil, nil
	}
	switch v := n.(type) {
	case predicate.Term:
		return sch.termExpr(v)
	case predicate.And:
		return sch.groupExpr(v.Children, " AND ")
	case predicate.Or:
		return sch.groupExpr(v.Children, " OR ")
	}
	return "", nil, fmt.Errorf("unsupported predicate %T", n)
}

func (sch schema) groupExpr(children []predicate.Node, sep string) (string, []any, error) {
	parts := make([]string, 0, len(children))
	var args []any
	for _, c := range children {
		expr, cargs, err := sch.whereExpr(c)
		if err != nil {
			return "", nil, err
		}
		if expr == "" {
			expr = "1"
		}
		parts = append(parts, expr)
		args = append(args, cargs...)
	}
	return "(" + strings.Join(parts, sep) + ")", args, nil
}

func (sch schema) termExpr(t predicate.Term) (string, []any, error) {
	f, ok := sch.def.Field(t.Field)
	if !ok {
		return "", nil, fmt.Errorf("field %q: %w", t.Field, db.ErrUnknownField)
	}
	col := quote(f.Name)

	if t.Op == predicate.OpEqual {
		return col + " = ?", []any{t.Value}, nil
	}
	if f.Type == db.IndexFieldText {
		return fmt.Sprintf(`id IN (SELECT rowid FROM %s WHERE %s LIKE ? ESCAPE '\')`, quote(sch.fts), quote(foldColumn(f.Name))),
			[]any{likePattern(predicate.Fold(t.Value))}, nil
	}
	return col + ` LIKE ? ESCAPE '\'`, []any{likePattern(t.Value)}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteAll(idents []string) []string {
	out := make([]string, len(idents))
	for i, s := range idents {
		out[i] = quote(s)
	}
	return out
}

func prefixAll(prefix string, items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = prefix + s
	}
	return out
}
