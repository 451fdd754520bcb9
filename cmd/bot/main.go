package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"attendance_bot/internal/bot"
	"attendance_bot/internal/browser"
	"attendance_bot/internal/config"
	"attendance_bot/internal/scheduler"
	"attendance_bot/internal/scraper"
	"attendance_bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	chrome := browser.NewChrome(ctx)
	defer func() { _ = chrome.Close() }()

	scr := scraper.New(chrome, cfg.PortalBaseURL, log)
	scr.SetTableTimeout(time.Duration(cfg.TableTimeoutSeconds) * time.Second)

	b, err := bot.New(cfg.TelegramBotToken, store, scr, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(store, scr, b, log)
	sched.SetInterval(time.Duration(cfg.PollIntervalMinutes) * time.Minute)
	sched.SetWindow(cfg.ActiveStartHour, cfg.ActiveEndHour)

	log.Info("starting bot")

	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
