package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"jobportal/internal/app"
	"jobportal/internal/audit"
	"jobportal/internal/config"
	"jobportal/internal/logger"
)

func main() {
	// Initialize structured logger
	slog.SetDefault(logger.New(os.Stdout, "info"))

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// 2. Database, migrations and NSQ
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer deps.Close()

	// 3. Completion provider
	completer, err := app.NewCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	if c, ok := completer.(io.Closer); ok {
		defer c.Close()
	}

	// 4. Audit log
	auditLog, closer, err := audit.NewFileLogger(cfg.AuditLogPath)
	if err != nil {
		log.Warn("failed to create audit logger, falling back to stdout", "error", err)
		auditLog = audit.NewLogger(os.Stdout)
	} else {
		defer closer.Close()
	}

	application, err := app.New(cfg, deps.DB, completer, deps.Publisher(), auditLog, deps.Schema)
	if err != nil {
		return err
	}

	log.Info("job portal ready", "provider", cfg.LLMProvider, "model", completer.Model(), "events", deps.NSQProducer != nil)

	// 5. Start Server
	return application.Run(ctx)
}
