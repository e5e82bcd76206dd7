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

	"github.com/promptboard/promptboard/internal/api"
	"github.com/promptboard/promptboard/internal/api/uistatic"
	"github.com/promptboard/promptboard/internal/auth"
	"github.com/promptboard/promptboard/internal/config"
	"github.com/promptboard/promptboard/internal/llm"
	"github.com/promptboard/promptboard/internal/observability"
	"github.com/promptboard/promptboard/internal/pipeline"
	"github.com/promptboard/promptboard/internal/warehouse"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("promptboard-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.ValidateRequired(); err != nil {
		slog.Error("invalid config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	openCtx, cancelOpen := context.WithTimeout(context.Background(), 10*time.Second)
	wh, err := warehouse.Open(openCtx, warehouse.Config{
		DSN:             cfg.Warehouse.DSN,
		MaxOpenConns:    cfg.Warehouse.MaxOpenConns,
		MaxIdleConns:    cfg.Warehouse.MaxIdleConns,
		ConnMaxIdleTime: cfg.Warehouse.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Warehouse.ConnMaxLifetime,
		QueryTimeout:    cfg.Warehouse.QueryTimeout,
	})
	cancelOpen()
	if err != nil {
		logger.Error("failed to open warehouse", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = wh.Close() }()

	completer, err := llm.NewChatClient(llm.ChatConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize chat client", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:          logger,
		Pipeline:        pipeline.NewService(completer, wh, logger),
		PreviewRowLimit: cfg.UI.PreviewRowLimit,
		UI:              uistatic.Handler(),
		Readiness: api.CombineReadinessChecks(
			api.CheckWarehouseDSN(cfg),
			api.CheckAIConfig(cfg),
			wh.Ping,
		),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
