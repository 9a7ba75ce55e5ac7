package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/apperr"
)

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Network("completion request failed", cause)

	assert.Equal(t, "NetworkError: completion request failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, err.StackTrace())
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	inner := apperr.Storage("failed to save job posting", errors.New("disk full"))
	wrapped := fmt.Errorf("process: %w", inner)

	assert.Equal(t, apperr.KindStorage, apperr.KindOf(wrapped))
	assert.True(t, apperr.Is(wrapped, apperr.KindStorage))
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(errors.New("plain")))
}

func TestExtraction_CarriesRawPayload(t *testing.T) {
	err := apperr.Extraction("I cannot help with that.", errors.New("invalid character 'I'"))

	detail, ok := err.Payload.(apperr.ExtractionDetail)
	require.True(t, ok)
	assert.Equal(t, "I cannot help with that.", detail.AIResponse)
	assert.Equal(t, "invalid character 'I'", detail.Message)
	assert.Equal(t, apperr.KindExtraction, err.Kind)
}

func TestMissingField(t *testing.T) {
	err := apperr.MissingField("title")
	assert.Equal(t, apperr.KindMissingField, err.Kind)
	assert.Contains(t, err.Error(), `"title"`)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", apperr.InvalidInput("Job details are required"), http.StatusBadRequest},
		{"upstream", apperr.Upstream("provider error", nil), http.StatusInternalServerError},
		{"network", apperr.Network("dial", errors.New("timeout")), http.StatusInternalServerError},
		{"extraction", apperr.Extraction("prose", errors.New("bad")), http.StatusInternalServerError},
		{"missing field", apperr.MissingField("title"), http.StatusInternalServerError},
		{"validation", apperr.Validation(nil), http.StatusInternalServerError},
		{"storage", apperr.Storage("write", errors.New("x")), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.HTTPStatus(tt.err))
		})
	}
}
