package redis

import (
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/srcdex/internal/db"
)

// NewStoreForTest wraps an existing client, typically a rueidis mock.
func NewStoreForTest(c rueidis.Client, def *db.IndexDefinition) *Store {
	return newStore(c, def)
}
