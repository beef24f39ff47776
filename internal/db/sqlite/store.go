// Package sqlite implements db.Store on an embedded SQLite database with an
// FTS5 trigram index for substring predicates.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/kailas-cloud/srcdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds SQLite connection parameters.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in process.
	Path string
}

// Store implements db.Store on one table derived from an IndexDefinition.
type Store struct {
	db  *sql.DB
	def *db.IndexDefinition
	sch schema
}

// NewStore opens the database at cfg.Path bound to def.
func NewStore(cfg Config, def *db.IndexDefinition) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("path is required")
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("index definition: %w", err)
	}

	conn, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", cfg.Path, err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive for the lifetime of the store.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	return &Store{db: conn, def: def, sch: newSchema(def)}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() {
	s.db.Close()
}

// WaitForReady is immediate for an embedded database once Ping succeeds.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Ping(ctx)
}

// EnsureIndex creates the table, its FTS5 shadow and sync triggers.
func (s *Store) EnsureIndex(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range s.sch.ddl() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%s: %w", firstLine(stmt), err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// Insert adds a record, failing with db.ErrKeyExists on a duplicate key.
func (s *Store) Insert(ctx context.Context, key string, fields map[string]string) error {
	cols := []string{quote(db.KeyField)}
	args := []any{key}
	for _, f := range s.def.Fields {
		v, err := s.bind(f, fields[f.Name])
		if err != nil {
			return &db.Error{Op: db.OpInsert, Err: err}
		}
		cols = append(cols, quote(f.Name))
		args = append(args, v)
	}
	if err := s.checkFields(fields); err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	foldCols, foldArgs := s.sch.foldedValues(fields)
	cols = append(cols, foldCols...)
	args = append(args, foldArgs...)

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(s.sch.table), strings.Join(cols, ", "), placeholders(len(cols)))
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return db.ErrKeyExists
		}
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	return nil
}

// Get returns the fields of key.
func (s *Store) Get(ctx context.Context, key string) (map[string]string, error) {
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		s.sch.columnList(), quote(s.sch.table), quote(db.KeyField))

	values := make([]string, len(s.def.Fields))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	err := s.db.QueryRowContext(ctx, stmt, key).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return s.sch.fieldMap(values), nil
}

// Update overwrites the given fields of key.
func (s *Store) Update(ctx context.Context, key string, fields map[string]string) error {
	if err := s.checkFields(fields); err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}

	var sets []string
	var args []any
	for _, f := range s.def.Fields {
		raw, ok := fields[f.Name]
		if !ok {
			continue
		}
		v, err := s.bind(f, raw)
		if err != nil {
			return &db.Error{Op: db.OpUpdate, Err: err}
		}
		sets = append(sets, quote(f.Name)+" = ?")
		args = append(args, v)
	}
	foldCols, foldArgs := s.sch.foldedValues(fields)
	for _, col := range foldCols {
		sets = append(sets, col+" = ?")
	}
	args = append(args, foldArgs...)
	if len(sets) == 0 {
		sets = append(sets, quote(db.KeyField)+" = "+quote(db.KeyField))
	}
	args = append(args, key)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quote(s.sch.table), strings.Join(sets, ", "), quote(db.KeyField))
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	return requireRow(res, db.OpUpdate)
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quote(s.sch.table), quote(db.KeyField))
	res, err := s.db.ExecContext(ctx, stmt, key)
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	return requireRow(res, db.OpDelete)
}

// Count returns the number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	stmt := "SELECT COUNT(*) FROM " + quote(s.sch.table)
	if err := s.db.QueryRowContext(ctx, stmt).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Select runs q with filtering, ordering and windowing pushed into SQL.
func (s *Store) Select(ctx context.Context, q *db.Query) ([]db.Record, error) {
	built, err := s.sch.selectSQL(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, built.sql, built.args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	var records []db.Record
	for rows.Next() {
		var key string
		var score float64
		values := make([]string, len(s.def.Fields))
		dest := make([]any, 0, len(values)+2)
		dest = append(dest, &key)
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &score)
		if err := rows.Scan(dest...); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		records = append(records, db.Record{Key: key, Fields: s.sch.fieldMap(values), Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return records, nil
}

func (s *Store) bind(f db.IndexField, raw string) (any, error) {
	if f.Type != db.IndexFieldNumeric {
		return raw, nil
	}
	if raw == "" {
		return int64(0), nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}
	return n, nil
}

func (s *Store) checkFields(fields map[string]string) error {
	for name := range fields {
		if _, ok := s.def.Field(name); !ok {
			return fmt.Errorf("field %q: %w", name, db.ErrUnknownField)
		}
	}
	return nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &db.Error{Op: op, Err: err}
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
