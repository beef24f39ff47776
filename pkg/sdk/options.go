package srcdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "sqlite" or "redis"
	path     string
	addrs    []string
	password string
	db       int

	keyPrefix   string
	ignore      []string
	maxFileSize int64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite stores the catalog in the SQLite file at path.
// ":memory:" keeps it in process for the lifetime of the Client.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.path = path
	})
}

// WithRedis stores the catalog in a Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisDB selects the logical Redis database.
func WithRedisDB(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = n
	})
}

// WithKeyPrefix sets the record key prefix, which also names the index.
// Default: "srcdex:doc:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithIgnore replaces the patterns Scan skips. See scan.DefaultIgnore for
// the defaults.
func WithIgnore(patterns ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.ignore = patterns
	})
}

// WithMaxFileSize makes Scan skip files larger than n bytes.
func WithMaxFileSize(n int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxFileSize = n
	})
}

// WithLogger enables structured logging for catalog operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
