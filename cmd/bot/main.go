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
	"saffron-order-desk/internal/debounce"
	"saffron-order-desk/internal/handlers"
	"saffron-order-desk/internal/httpclient"
	"saffron-order-desk/internal/metrics"
	"saffron-order-desk/internal/session"
	"saffron-order-desk/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBot()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("catalog load failed", "path", cfg.CatalogPath, "err", err)
		os.Exit(1)
	}

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	sessions := session.NewStore(session.Options{
		Catalog: cat,
		IdleTTL: cfg.SessionIdleTTL,
	})

	m := metrics.New()
	m.RegisterSessionGauge(sessions.Len)

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Sessions: sessions,
		Metrics:  m,
		Logger:   logger,
	})

	commandOrder, commands := handlers.Commands()
	if err := tg.SetCommands(commands, commandOrder); err != nil {
		logger.Warn("set commands failed", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	onRenderFlush := func(req debounce.Request) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		go func() {
			defer func() { <-sem }()

			reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()

			handler.Render(reqCtx, req)
		}()
	}

	if cfg.RenderDebounce > 0 {
		debouncer := debounce.New(debounce.Options{
			Delay:   cfg.RenderDebounce,
			OnFlush: onRenderFlush,
		})
		defer debouncer.Stop()
		handler.SetDebouncer(debouncer)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sessions.RunSweeper(gctx, cfg.SweepInterval, func(removed int) {
			if removed > 0 {
				logger.Info("idle sessions swept", "removed", removed, "remaining", sessions.Len())
			}
		})
	})

	if cfg.MetricsAddr != "" {
		srv := metricsServer(cfg.MetricsAddr, m)
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("bot started", "username", tg.Username(), "products", len(cat.Products))

	g.Go(func() error {
		defer stop()

		updates := tg.Updates(telegram.UpdatesOptions{
			Timeout: 30 * time.Second,
		})
		defer tg.StopUpdates()

		for {
			select {
			case <-gctx.Done():
				logger.Info("shutting down")
				return nil
			case update, ok := <-updates:
				if !ok {
					logger.Info("updates channel closed")
					return nil
				}

				select {
				case sem <- struct{}{}:
				case <-gctx.Done():
					return nil
				}

				go func(update telegram.Update) {
					defer func() { <-sem }()

					reqCtx, cancel := context.WithTimeout(gctx, cfg.RequestTimeout)
					defer cancel()

					if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
						logger.Error("handle update failed", "err", err)
					}
				}(update)
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("bot stopped", "err", err)
		os.Exit(1)
	}
}

func metricsServer(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}
