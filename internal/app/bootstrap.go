package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"

	"jobportal/features/job"
	"jobportal/internal/adapter/gemini"
	"jobportal/internal/adapter/openrouter"
	"jobportal/internal/config"
	"jobportal/internal/schema"
)

type Dependencies struct {
	DB *sql.DB
	// NSQProducer is nil when NSQD_HOST is unset.
	NSQProducer *nsq.Producer
	Schema      *schema.Descriptor
}

// Close releases the database handle and stops the producer.
func (d *Dependencies) Close() {
	if d.NSQProducer != nil {
		d.NSQProducer.Stop()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}

// Publisher returns the producer as an event publisher, or nil when events
// are disabled.
func (d *Dependencies) Publisher() job.EventPublisher {
	if d.NSQProducer == nil {
		return nil
	}
	return d.NSQProducer
}

func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	desc := schema.Default()
	if cfg.SchemaPath != "" {
		loaded, err := schema.Load(cfg.SchemaPath)
		if err != nil {
			return nil, fmt.Errorf("schema error: %w", err)
		}
		desc = loaded
	}

	// Database
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// Retry loop
	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := db.PingContext(ctx); err == nil {
			break
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1, "max_attempts", cfg.BootstrapRetryAttempts)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Migrations
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration driver error: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration instance error: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		db.Close()
		return nil, fmt.Errorf("migration up error: %w", err)
	}
	slog.Info("migrations applied successfully")

	deps := &Dependencies{DB: db, Schema: desc}

	// NSQ Producer
	if cfg.NSQDHost != "" {
		producer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("nsq producer error: %w", err)
		}
		deps.NSQProducer = producer
	} else {
		slog.Info("NSQD_HOST not set, job events disabled")
	}

	return deps, nil
}

// NewCompleter builds the completion client for cfg.LLMProvider.
func NewCompleter(ctx context.Context, cfg *config.Config) (job.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenRouter, "":
		return openrouter.NewClient(openrouter.Config{
			APIKey:   cfg.OpenRouterAPIKey,
			Model:    cfg.OpenRouterModel,
			BaseURL:  cfg.OpenRouterBaseURL,
			AppURL:   cfg.AppURL,
			AppTitle: cfg.AppTitle,
			Timeout:  cfg.LLMTimeout(),
		}), nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini client error: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: LLM_PROVIDER %q", config.ErrInvalid, cfg.LLMProvider)
	}
}
