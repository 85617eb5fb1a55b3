package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/url-shorter/internal/app"
	"github.com/vadimbarashkov/url-shorter/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	logger := httplog.NewLogger("url-shorter", httplog.Options{
		LogLevel: slog.LevelInfo,
		JSON:     cfg.Env == config.EnvProd,
		Concise:  cfg.Env == config.EnvDev,
	})

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("application stopped", slog.Any("err", err))
		os.Exit(1)
	}
}
