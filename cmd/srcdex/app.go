package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scott-cotton/cli"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srcdex/internal/config"
	"github.com/kailas-cloud/srcdex/internal/content"
	"github.com/kailas-cloud/srcdex/internal/db"
	dbRedis "github.com/kailas-cloud/srcdex/internal/db/redis"
	dbSqlite "github.com/kailas-cloud/srcdex/internal/db/sqlite"
	logpkg "github.com/kailas-cloud/srcdex/internal/logger"
	"github.com/kailas-cloud/srcdex/internal/metrics"
	docrepo "github.com/kailas-cloud/srcdex/internal/repository/document"
	documentuc "github.com/kailas-cloud/srcdex/internal/usecase/document"
	scanuc "github.com/kailas-cloud/srcdex/internal/usecase/scan"
	watchuc "github.com/kailas-cloud/srcdex/internal/usecase/watch"
)

// MainConfig holds the options shared by every subcommand.
type MainConfig struct {
	ConfigFile string `cli:"name=config desc='config file; defaults to config/<env>.yaml, then built-in defaults'"`
	Env        string `cli:"name=env desc='environment name (local, dev, prod)'"`
	LogLevel   string `cli:"name=log-level desc='override the configured log level'"`

	Main *cli.Command
}

// loadConfig resolves the configuration. A missing default file is not an
// error; an explicit -config that cannot be read is.
func (cfg *MainConfig) loadConfig() (config.Config, error) {
	if cfg.ConfigFile != "" {
		return config.LoadFile(cfg.ConfigFile)
	}
	c, err := config.Load(cfg.env())
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return c, err
}

// env is -env, or $ENV, or "local".
func (cfg *MainConfig) env() string {
	if cfg.Env != "" {
		return cfg.Env
	}
	return config.GetEnv()
}

// app is the composition root for one command invocation.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  db.Store
	table  *documentuc.Table
}

// open wires config, logging, the store and the document table. Long running
// commands log in the configured environment's format and level; one-shot
// commands only report warnings to stderr unless -log-level says otherwise.
func (cfg *MainConfig) open(ctx context.Context, longRunning bool) (*app, error) {
	c, err := cfg.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	env, level := "cli", cfg.LogLevel
	if longRunning {
		env = cfg.env()
		if level == "" {
			level = c.Logging.Level
		}
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := openStore(c)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Database.Driver, err)
	}
	timeout := time.Duration(c.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	if err := store.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	metrics.Register()

	loader := content.NewLoader()
	table := documentuc.New(docrepo.New(store), loader, loader).WithLogger(logger)

	logger.Debug("Catalog opened",
		zap.String("driver", c.Database.Driver),
		zap.String("path", c.Database.Path),
		zap.Strings("addrs", c.Database.Addrs),
	)
	return &app{cfg: c, logger: logger, store: store, table: table}, nil
}

func openStore(c config.Config) (db.Store, error) {
	def := docrepo.Index(c.Database.KeyPrefix)
	switch c.Database.Driver {
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    c.Database.Addrs,
			Username: c.Database.Username,
			Password: c.Database.Password,
			DB:       c.Database.DB,
		}, def)
	case config.DriverSQLite:
		return dbSqlite.NewStore(dbSqlite.Config{Path: c.Database.Path}, def)
	}
	return nil, fmt.Errorf("unknown database driver %q", c.Database.Driver)
}

func (a *app) scanner() *scanuc.Service {
	return scanuc.New(a.table, scanuc.Options{
		Ignore:      a.cfg.Scan.Ignore,
		MaxFileSize: a.cfg.Scan.MaxFileSize,
	}).WithLogger(a.logger)
}

// startWatch scans dir once so the catalog is current, then returns a
// watcher for it. The caller runs it.
func (a *app) startWatch(ctx context.Context, dir, name string) (*watchuc.Watcher, error) {
	scanner := a.scanner()
	report, err := scanner.ScanPackage(ctx, dir, name)
	if err != nil {
		return nil, err
	}
	debounce := time.Duration(a.cfg.Watch.DebounceMs) * time.Millisecond
	w, err := watchuc.New(a.table, scanner, dir, report.Package, debounce)
	if err != nil {
		return nil, err
	}
	return w.WithLogger(a.logger), nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
