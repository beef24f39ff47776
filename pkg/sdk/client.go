package srcdex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/kailas-cloud/srcdex/internal/content"
	"github.com/kailas-cloud/srcdex/internal/db"
	dbRedis "github.com/kailas-cloud/srcdex/internal/db/redis"
	dbSqlite "github.com/kailas-cloud/srcdex/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/request"
	documentrepo "github.com/kailas-cloud/srcdex/internal/repository/document"
	documentuc "github.com/kailas-cloud/srcdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/srcdex/internal/usecase/health"
	scanuc "github.com/kailas-cloud/srcdex/internal/usecase/scan"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "srcdex:doc:"
)

// Internal interfaces so tests can substitute the use cases.
type tableUseCase interface {
	Add(ctx context.Context, packageDir, restpath, packageName string) (domdoc.Outcome, error)
	Remove(ctx context.Context, path string) error
	RemoveMatchPath(ctx context.Context, path string, onEach func(domdoc.Document)) (int, error)
	RemoveAll(ctx context.Context) (int, error)
	GetShortpath(ctx context.Context, shortpath string) (domdoc.Document, error)
	GetShortpathBelow(ctx context.Context, shortpath string) ([]domdoc.Document, error)
	Search(ctx context.Context, opts request.Options) ([]domdoc.Document, error)
	Cleanup(ctx context.Context, onEach func(domdoc.Document)) (int, error)
	CleanupPackageName(ctx context.Context, pkg string, onEach func(domdoc.Document)) (int, error)
	Size(ctx context.Context) (int, error)
	Each(ctx context.Context) iter.Seq2[domdoc.Document, error]
	Dump(ctx context.Context, w io.Writer) error
}

type scanUseCase interface {
	ScanPackage(ctx context.Context, dir, name string) (scanuc.Report, error)
}

// Client is the srcdex entry point.
type Client struct {
	store     db.Store
	table     tableUseCase
	scanner   scanUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the catalog and creates its index if needed.
// The provided context is used for the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("srcdex: storage required (use WithSQLite or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("srcdex: database not ready: %w", err)
	}
	if err := store.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("srcdex: ensure index: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	def := documentrepo.Index(cfg.keyPrefix)
	switch cfg.driver {
	case "sqlite":
		s, err := dbSqlite.NewStore(dbSqlite.Config{Path: cfg.path}, def)
		if err != nil {
			return nil, fmt.Errorf("srcdex: create sqlite store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
			DB:       cfg.db,
		}, def)
		if err != nil {
			return nil, fmt.Errorf("srcdex: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("srcdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	loader := content.NewLoader()
	table := documentuc.New(documentrepo.New(store), loader, loader)
	scanner := scanuc.New(table, scanuc.Options{
		Ignore:      cfg.ignore,
		MaxFileSize: cfg.maxFileSize,
	})

	return &Client{
		store:     store,
		table:     table,
		scanner:   scanner,
		healthSvc: healthuc.New(store, table),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
