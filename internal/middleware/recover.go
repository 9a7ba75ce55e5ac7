package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

// Recover turns a panic in next into a 500 JSON response and logs the stack.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err := goerrors.Wrap(rec, 2)
			slog.ErrorContext(r.Context(), "panic serving request", "error", err.Error(), "stack", string(err.Stack()))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			resp := map[string]interface{}{
				"success":       false,
				"message":       "Something went wrong!",
				"error":         "Server error",
				"correlationId": GetCorrelationID(r.Context()),
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				slog.Error("failed to encode error response", "error", err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
