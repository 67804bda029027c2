package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/romanzzaa/price-notifier/internal/config"
	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/romanzzaa/price-notifier/internal/infrastructure/bybit"
	"github.com/romanzzaa/price-notifier/internal/metrics"
	"github.com/romanzzaa/price-notifier/internal/notify"
	"github.com/romanzzaa/price-notifier/internal/price"
	"github.com/romanzzaa/price-notifier/internal/server"
	"github.com/romanzzaa/price-notifier/internal/usecase"
	"github.com/romanzzaa/price-notifier/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).
			Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	asset := domain.Asset{
		ID:       cfg.Asset.ID,
		Name:     cfg.Asset.Name,
		Symbol:   cfg.Asset.Symbol,
		Currency: cfg.Asset.Currency,
	}
	m := metrics.New()

	provider, err := price.NewProviderFromConfig(cfg.Price, asset, logger)
	if err != nil {
		logger.Error("failed to create price provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	messenger, err := notify.NewMessengerFromConfig(cfg.Messenger)
	if err != nil {
		logger.Error("failed to create messenger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	source := price.NewSource(provider, asset, m, logger)
	notifier := notify.NewNotifier(messenger, m, logger)
	watcher := usecase.NewWatcher(source, notifier, m, logger)

	scheduler, err := worker.NewScheduler(cfg.Schedule, watcher, cfg.TickTimeout, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(cfg.ListenAddr(), watcher, scheduler, m, logger)
	if err := srv.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting price notifier...",
		slog.String("env", cfg.Env),
		slog.String("asset", asset.ID),
		slog.String("provider", provider.Name()),
		slog.String("messenger", messenger.Name()),
		slog.String("schedule", cfg.Schedule))

	if stream, ok := provider.(*bybit.MarketStream); ok {
		go stream.Run(ctx)
	}

	go func() {
		if err := srv.Serve(); err != nil {
			logger.Error("http server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(schedulerDone)
	}()

	<-ctx.Done()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.String("error", err.Error()))
	}
	<-schedulerDone

	logger.Info("Notifier stopped gracefully")
}
