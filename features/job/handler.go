package job

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"jobportal/internal/apperr"
	"jobportal/internal/middleware"
)

// MaxBodyBytes caps the request body of POST /api/jobs/process.
const MaxBodyBytes = 50 << 20

const (
	msgDetailsRequired = "Job details are required"
	msgProcessed       = "Job processed and saved successfully"
	msgAIFailed        = "Failed to process with AI"
	msgParseFailed     = "Failed to parse AI response"
	msgSaveFailed      = "Failed to process and save job"
	msgListFailed      = "Failed to fetch jobs"
)

type processRequest struct {
	JobDetails string `json:"jobDetails" validate:"required"`
}

type Handler struct {
	service   *Service
	validator *validator.Validate
	maxBody   int64
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s, validator: validator.New(), maxBody: MaxBodyBytes}
}

// SetMaxBodyBytes overrides the request body limit of Process.
func (h *Handler) SetMaxBodyBytes(n int64) {
	if n > 0 {
		h.maxBody = n
	}
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(ctx, w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
			return
		}
		slog.WarnContext(ctx, "invalid process request body", "error", err)
		h.writeError(ctx, w, http.StatusBadRequest, msgDetailsRequired, nil)
		return
	}

	// validate a trimmed copy; the prompt gets the text as sent
	if err := h.validator.Struct(processRequest{JobDetails: strings.TrimSpace(req.JobDetails)}); err != nil {
		h.writeError(ctx, w, http.StatusBadRequest, msgDetailsRequired, nil)
		return
	}

	slog.InfoContext(ctx, "processing job details", "chars", len(req.JobDetails))

	posting, err := h.service.Process(ctx, req.JobDetails)
	if err != nil {
		h.writeProcessError(ctx, w, err)
		return
	}

	slog.InfoContext(ctx, "job posting saved", "id", posting.ID, "slug", posting.Slug)
	h.writeJSON(ctx, w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": msgProcessed,
		"job":     posting,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobs, err := h.service.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list jobs", "error", err)
		h.writeError(ctx, w, http.StatusInternalServerError, msgListFailed, errorMessage(err))
		return
	}

	if jobs == nil {
		jobs = []JobPosting{}
	}

	h.writeJSON(ctx, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(jobs),
		"jobs":    jobs,
	})
}

func (h *Handler) writeProcessError(ctx context.Context, w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status < http.StatusInternalServerError {
		h.writeError(ctx, w, status, msgDetailsRequired, nil)
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		slog.ErrorContext(ctx, "job processing failed", "kind", appErr.Kind, "error", err, "stack", string(appErr.StackTrace()))
	} else {
		slog.ErrorContext(ctx, "job processing failed", "error", err)
	}

	var message string
	switch apperr.KindOf(err) {
	case apperr.KindUpstream, apperr.KindNetwork:
		message = msgAIFailed
	case apperr.KindExtraction:
		message = msgParseFailed
	default:
		message = msgSaveFailed
	}

	var detail interface{} = errorMessage(err)
	if appErr != nil && appErr.Payload != nil {
		detail = appErr.Payload
	}
	h.writeError(ctx, w, status, message, detail)
}

func errorMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			return appErr.Message + ": " + appErr.Err.Error()
		}
		return appErr.Message
	}
	return err.Error()
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError emits {success:false, message, error?, correlationId}. detail is
// omitted when nil.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, status int, message string, detail interface{}) {
	resp := map[string]interface{}{
		"success":       false,
		"message":       message,
		"correlationId": middleware.GetCorrelationID(ctx),
	}
	if detail != nil {
		resp["error"] = detail
	}
	h.writeJSON(ctx, w, status, resp)
}
