package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(CorrelationKey).(string)
		if !ok || id == "" {
			t.Error("correlation id missing from context")
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("header missing")
	}
}

func TestCorrelationID_PropagatesIncoming(t *testing.T) {
	var seen string
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Correlation-ID", "from-client")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "from-client", seen)
	assert.Equal(t, "from-client", w.Header().Get("X-Correlation-ID"))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestGetCorrelationID_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "unknown", GetCorrelationID(req.Context()))
}
