package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/chi-demo/middleware"
	"github.com/tendant/simple-media/pkg/simplemedia/api"
	"github.com/tendant/simple-media/pkg/simplemedia/config"
	"github.com/tendant/simple-media/pkg/simplemedia/metrics"
)

func main() {
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder := metrics.New(prometheus.DefaultRegisterer)
	rt, err := cfg.Build(ctx, recorder, logger)
	if err != nil {
		slog.Error("Failed to build media runtime", "err", err)
		os.Exit(1)
	}
	defer rt.Close()

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	server.R.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))

	apiKeyMiddleware, err := middleware.ApiKeyMiddleware(middleware.ApiKeyConfig{
		APIKeys: map[string]string{
			"key1": cfg.APIKeySHA256,
		},
	})
	if err != nil {
		slog.Error("Failed initialize API Key middleware", "err", err)
		return
	}

	mediaHandler := api.NewMediaHandler(rt.Manager, logger)
	server.R.Route("/api/v1", func(r chi.Router) {
		r.Use(recorder.Middleware)
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			r.Mount("/media", mediaHandler.Routes())
		})
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           server.R,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Simple Media server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"storage", cfg.Storage.Type,
			"path_strategy", cfg.PathStrategy,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
	}
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
