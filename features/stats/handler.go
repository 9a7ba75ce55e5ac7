package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"jobportal/internal/middleware"
)

type JobCounter interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	jobs JobCounter
}

func NewHandler(j JobCounter) *Handler {
	return &Handler{jobs: j}
}

type StatsResponse struct {
	Jobs int `json:"jobs"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	slog.InfoContext(ctx, "getting stats")

	count, err := h.jobs.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err)
		h.writeError(ctx, w, "failed to count jobs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"success": true,
		"data":    StatsResponse{Jobs: count},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"success":       false,
		"message":       message,
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
