package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/clickcounter/internal/adapter/driven/database"
	httphandler "github.com/ericfisherdev/clickcounter/internal/adapter/driving/http"
	"github.com/ericfisherdev/clickcounter/internal/application"
	"github.com/ericfisherdev/clickcounter/internal/config"
	"github.com/ericfisherdev/clickcounter/internal/domain/port/driven"
	"github.com/ericfisherdev/clickcounter/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Logger first so config errors (e.g. unreadable password file) are structured.
	logger := logging.FromEnv(os.Stderr)
	slog.SetDefault(logger)

	// 2. Load configuration.
	cfg, err := config.Load(logger)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr(),
		"db_driver", cfg.DBDriver,
		"db_host", cfg.DBHost,
		"db_port", cfg.DBPort,
		"db_name", cfg.DBName,
		"db_max_conns", cfg.DBMaxConns,
	)

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Wire the HTTP adapter against an empty store provider.
	stores := application.NewStoreProvider()
	apiHandler := httphandler.NewHandler(stores, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           httphandler.NewServeMux(apiHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 5. Bind before initializing the database so routes answer 503 meanwhile.
	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return err
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 6. Database init runs in the background with a bounded retry policy.
	opts := database.Options{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Path:     cfg.DBPath,
		MaxConns: cfg.DBMaxConns,
	}
	policy := application.RetryPolicy{MaxAttempts: cfg.InitAttempts, Delay: cfg.InitDelay}
	initializer := application.NewStoreInitializer(stores, openStore(opts), policy, logger)

	initDone := make(chan struct{})
	go func() {
		defer close(initDone)
		if err := initializer.Run(ctx); err != nil {
			slog.Error("database unavailable, serving in degraded mode", "error", err)
		}
	}()

	slog.Info("clickcounter started", "listen_addr", cfg.ListenAddr())

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 8. Close the pool once the initializer can no longer publish a new one.
	<-initDone
	if closer, ok := stores.Get().(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// openStore returns the connect + ensureSchema step run on every attempt.
// A pool opened by a failed attempt is closed before the next one.
func openStore(opts database.Options) application.OpenFunc {
	return func(ctx context.Context) (driven.ClickStore, error) {
		db, err := database.Open(ctx, opts)
		if err != nil {
			return nil, err
		}

		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}

		return database.NewClickRepo(db), nil
	}
}
