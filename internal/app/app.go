package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"jobportal/features/job"
	"jobportal/features/stats"
	"jobportal/internal/config"
	"jobportal/internal/middleware"
	"jobportal/internal/schema"
)

const bannerText = "Job Portal API is running..."

type App struct {
	Handler    http.Handler
	JobService *job.Service
	port       int
}

// New wires the job feature onto a mux. pub and auditLog may be nil; desc nil
// selects the built-in schema.
func New(
	cfg *config.Config,
	db *sql.DB,
	completer job.Completer,
	pub job.EventPublisher,
	auditLog job.AuditLogger,
	desc *schema.Descriptor,
) (*App, error) {
	if db == nil {
		return nil, fmt.Errorf("app: database is required")
	}
	if completer == nil {
		return nil, fmt.Errorf("app: completer is required")
	}

	// Feature: Job
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, completer, desc, pub, auditLog)
	jobHandler := job.NewHandler(jobService)
	jobHandler.SetMaxBodyBytes(cfg.MaxBodyBytes())

	// Feature: Stats
	statsHandler := stats.NewHandler(jobService)

	// Routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/jobs/process", jobHandler.Process)
	mux.HandleFunc("GET /api/jobs", jobHandler.List)
	mux.HandleFunc("GET /api/stats", statsHandler.GetStats)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(bannerText))
	})

	handler := middleware.CorrelationID(middleware.Recover(middleware.CORS(cfg.AllowedOrigins)(mux)))

	return &App{
		Handler:    handler,
		JobService: jobService,
		port:       cfg.ServerPort,
	}, nil
}

// Run serves until ctx is canceled, then shuts the server down.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "port", a.port)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
			return err
		}
		return nil
	})

	return g.Wait()
}
