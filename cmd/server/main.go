package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/okatkov/mailvault/internal/api"
	"github.com/okatkov/mailvault/internal/config"
	"github.com/okatkov/mailvault/internal/database"
	"github.com/okatkov/mailvault/internal/ingest"
	"github.com/okatkov/mailvault/internal/notify"
	"github.com/okatkov/mailvault/internal/parser"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting mailvault")

	// Connect to database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Bootstrap schema
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database schema ready")

	// Telegram notifications (optional)
	var notifier *notify.Notifier
	if cfg.TelegramEnabled() {
		notifier, err = notify.New(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Error("failed to create telegram notifier", "error", err)
			os.Exit(1)
		}
		logger.Info("telegram notifications enabled", "chat_id", cfg.TelegramChatID)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// IMAP ingest (optional)
	if cfg.IngestEnabled() {
		worker := ingest.NewWorker(ingest.Config{
			Client: ingest.ClientConfig{
				Email:       cfg.IMAPEmail,
				Password:    cfg.IMAPPassword,
				Server:      cfg.IMAPServer,
				DialTimeout: cfg.IMAPDialTimeout,
			},
			PollInterval: cfg.IMAPPollInterval,
		}, db, parser.NewHTMLParser(), parser.NewCodeDetector(), notifier, logger)

		go worker.Run(ctx)
		logger.Info("imap ingest enabled", "server", cfg.IMAPServer, "email", cfg.IMAPEmail)
	}

	server := api.New(api.Deps{
		Addr:     cfg.ListenAddr,
		DB:       db,
		Notifier: notifier,
		Logger:   logger,
	})

	// Setup graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		if err := server.Stop(context.Background()); err != nil {
			logger.Error("failed to stop api server", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		logger.Error("api server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
