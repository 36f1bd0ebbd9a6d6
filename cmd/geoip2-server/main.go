package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/TomasB/geoip2-server/internal/config"
	"github.com/TomasB/geoip2-server/internal/data"
	"github.com/TomasB/geoip2-server/internal/lookup"
	"github.com/TomasB/geoip2-server/internal/reserved"
	"github.com/TomasB/geoip2-server/internal/server"
	"github.com/gin-gonic/gin"
)

var version = "dev"

var watchFile = data.WatchFile

func main() {
	cfg, err := config.Parse("geoip2-server", version, os.Args[1:])
	if errors.Is(err, config.ErrExit) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "geoip2-server:", err)
		os.Exit(2)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.SlogLevel() == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or a listener fails. The database is
// opened before any port is bound.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("service starting", "version", version, "log_level", cfg.SlogLevel().String())

	reader, err := data.NewMmdbReader(cfg.Database)
	if err != nil {
		return err
	}
	defer reader.Close()

	if cfg.VerifyDatabase {
		if err := reader.Verify(); err != nil {
			return fmt.Errorf("verify %s: %w", cfg.Database, err)
		}
	}

	meta := reader.Metadata()
	logger.Info("MMDB loaded",
		"path", cfg.Database,
		"database_type", meta.DatabaseType,
		"ip_version", meta.IPVersion,
		"node_count", meta.NodeCount,
		"build_time", meta.BuildTime,
	)

	var opts []lookup.Option
	if cfg.RejectReserved {
		opts = append(opts, lookup.WithReserved(reserved.Default()))
	}
	resolver := lookup.NewResolver(reader, opts...)

	var grpcServer *server.GRPCServer
	if cfg.GRPCAddr() != "" {
		grpcServer = server.NewGRPCServer(resolver, logger)
	}

	// Readiness only; a watcher failure is not fatal.
	var ready func() error
	watcher, err := watchFile(cfg.Database, func() {
		if grpcServer != nil {
			grpcServer.SetNotServing()
		}
	})
	if err != nil {
		logger.Warn("database watcher disabled", "path", cfg.Database, "error", err)
	} else {
		defer watcher.Close()
		ready = watcher.Ready
	}

	httpListener, err := server.Listen(cfg.Addr(), cfg.ProxyProtocol)
	if err != nil {
		return err
	}

	var grpcListener net.Listener
	if grpcServer != nil {
		grpcListener, err = net.Listen("tcp", cfg.GRPCAddr())
		if err != nil {
			httpListener.Close()
			return fmt.Errorf("listen %s: %w", cfg.GRPCAddr(), err)
		}
	}

	srv := &http.Server{
		Handler: server.NewRouter(resolver, server.RouterOptions{
			Logger:      logger,
			Ready:       ready,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errs := make(chan error, 2)
	go func() {
		logger.Info("service started", "addr", httpListener.Addr().String())
		if err := srv.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	if grpcServer != nil {
		go func() {
			logger.Info("grpc service started", "addr", grpcListener.Addr().String())
			if err := grpcServer.Serve(grpcListener); err != nil {
				errs <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("service shutting down")
	case serveErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		if serveErr == nil {
			serveErr = err
		}
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	if serveErr == nil {
		logger.Info("service stopped")
	}
	return serveErr
}
