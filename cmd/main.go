package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"k9log/internal/cleanup"
	"k9log/internal/config"
	"k9log/internal/discord"
	"k9log/internal/display"
	"k9log/internal/report"
	"k9log/internal/schedule"
	"k9log/internal/stats"
	"k9log/internal/storage"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewDatabase(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	logger.Info("database initialized", "path", cfg.DBPath)

	tracker := stats.NewTracker(store, logger)
	aggregator := report.New(store)
	workflow := cleanup.New(store, cfg.IsAdmin, logger)

	var disp *display.Manager
	if cfg.DisplayEnabled {
		disp = display.NewManager(&display.LogScreen{Log: logger}, tracker.Snapshot, cfg.DisplayInterval, logger)
	}

	bot, err := discord.NewBot(cfg, store, aggregator, workflow, tracker, disp, logger)
	if err != nil {
		logger.Error("failed to initialize the discord bot", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if disp != nil {
		g.Go(func() error { return disp.Run(ctx) })
	}

	weekly := schedule.NewWeekly(cfg.ReportWeekday, cfg.ReportHour, cfg.ReportMinute, logger)
	g.Go(func() error { return weekly.Run(ctx, bot.SendWeeklyReport) })
	logger.Info("weekly report scheduled",
		"weekday", cfg.ReportWeekday.String(),
		"hour", cfg.ReportHour,
		"minute", cfg.ReportMinute)

	if err := bot.Start(); err != nil {
		logger.Error("failed to start bot", "error", err)
		os.Exit(1)
	}
	logger.Info("bot is running")

	<-ctx.Done()

	bot.Stop()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("bot stopped")
}
