package redis

import (
	"context"

	"github.com/kailas-cloud/srcdex/internal/db"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
)

// keyField marks a claimed record key. HSETNX on it makes Insert atomic.
const keyField = db.KeyField

// Insert claims key with HSETNX and then writes fields.
func (s *Store) Insert(ctx context.Context, key string, fields map[string]string) error {
	rk := s.redisKey(key)
	claimed, err := s.do(ctx, s.b().Hsetnx().Key(rk).Field(keyField).Value(key).Build()).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	if claimed == 0 {
		return db.ErrKeyExists
	}
	if err := s.hset(ctx, rk, fields); err != nil {
		return &db.Error{Op: db.OpInsert, Err: err}
	}
	return nil
}

// Get returns all record fields of key.
func (s *Store) Get(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(s.redisKey(key)).Build()).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	s.stripInternal(m)
	return m, nil
}

// Update overwrites fields of an existing record.
func (s *Store) Update(ctx context.Context, key string, fields map[string]string) error {
	rk := s.redisKey(key)
	n, err := s.do(ctx, s.b().Exists().Key(rk).Build()).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	if err := s.hset(ctx, rk, fields); err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.do(ctx, s.b().Del().Key(s.redisKey(key)).Build()).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	return nil
}

func (s *Store) hset(ctx context.Context, rk string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	cmd := s.b().Hset().Key(rk).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
		if f, ok := s.def.Field(k); ok && f.Type == db.IndexFieldText {
			cmd = cmd.FieldValue(k+foldSuffix, predicate.Fold(v))
		}
	}
	return s.do(ctx, cmd.Build()).Error()
}

// stripInternal drops the key marker and folded copies from a hash read back
// from the engine.
func (s *Store) stripInternal(m map[string]string) {
	delete(m, keyField)
	for _, f := range s.def.Fields {
		if f.Type == db.IndexFieldText {
			delete(m, f.Name+foldSuffix)
		}
	}
}
