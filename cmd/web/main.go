package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"saffron-order-desk/internal/catalog"
	"saffron-order-desk/internal/config"
	"saffron-order-desk/internal/metrics"
	"saffron-order-desk/internal/session"
	"saffron-order-desk/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("catalog load failed", "path", cfg.CatalogPath, "err", err)
		os.Exit(1)
	}

	sessions := session.NewStore(session.Options{
		Catalog: cat,
		IdleTTL: cfg.SessionIdleTTL,
	})

	m := metrics.New()
	m.RegisterSessionGauge(sessions.Len)

	s, err := web.New(web.Options{
		Sessions:     sessions,
		Metrics:      m,
		Logger:       logger,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		logger.Error("web init failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout,
		IdleTimeout:       90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("web started", "addr", cfg.WebAddr, "products", len(cat.Products))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return sessions.RunSweeper(gctx, cfg.SweepInterval, func(removed int) {
			if removed > 0 {
				logger.Info("idle sessions swept", "removed", removed, "remaining", sessions.Len())
			}
		})
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
