package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/scott-cotton/cli"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srcdex/internal/config"
	chiTransport "github.com/kailas-cloud/srcdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/srcdex/internal/usecase/health"
	"github.com/kailas-cloud/srcdex/internal/version"
)

type serveConfig struct {
	*cli.Command
	Port int `cli:"name=port desc='listen port; overrides http.port'"`

	watchDirs []string

	main *MainConfig
}

// ServeCommand returns the serve subcommand.
func ServeCommand(main *MainConfig) *cli.Command {
	cfg := &serveConfig{main: main}
	opts, _ := cli.StructOpts(cfg)
	opts = append(opts, listOpt("watch", "package dir to scan and keep in sync while serving (repeatable)", &cfg.watchDirs))
	return cli.NewCommandAt(&cfg.Command, "serve").
		WithSynopsis("serve [-port n] [-watch dir]... - Serve the HTTP query API").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *serveConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: serve takes no arguments", cli.ErrUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := cfg.main.open(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	port := a.cfg.HTTP.Port
	if cfg.Port > 0 {
		port = cfg.Port
	}
	logger.Info("Starting srcdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", cfg.main.env()),
		zap.Int("http_port", port),
		zap.String("db_driver", a.cfg.Database.Driver),
	)

	for _, dir := range cfg.watchDirs {
		w, err := a.startWatch(ctx, dir, "")
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("Watcher stopped", zap.String("dir", dir), zap.Error(err))
			}
		}()
	}

	server := chiTransport.NewServer(a.table, healthuc.New(a.store, a.table), logger)
	srv := newHTTPServer(a.cfg.HTTP, port, server.Handler())

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func newHTTPServer(c config.HTTPConfig, port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      h,
		ReadTimeout:  time.Duration(c.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(c.WriteTimeoutSec) * time.Second,
	}
}
