package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/config"
)

type fakeCompleter struct{}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (f *fakeCompleter) Model() string { return "fake" }

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:     5000,
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodySizeMB:  1,
	}
}

func TestNew(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	app, err := New(testConfig(), db, &fakeCompleter{}, nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, app.Handler)
	assert.NotNil(t, app.JobService)

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
	})

	t.Run("Banner", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Job Portal API is running...", w.Body.String())
	})

	t.Run("UnknownPath", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ListJobs", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, company, description, slug, fields, created_at, updated_at FROM job_postings ORDER BY created_at DESC")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "company", "description", "slug", "fields", "created_at", "updated_at"}))

		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/jobs", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"count":0,"jobs":[]}`, w.Body.String())
	})

	t.Run("Stats", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM job_postings")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/stats", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(7), body["data"].(map[string]interface{})["jobs"])
	})

	t.Run("ProcessBadInput", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/jobs/process", strings.NewReader(`{}`))
		app.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/jobs/process", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_RequiresDependencies(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(testConfig(), nil, &fakeCompleter{}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(testConfig(), db, nil, nil, nil, nil)
	assert.Error(t, err)
}
