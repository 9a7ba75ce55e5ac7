package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/apperr"
)

var may1 = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Senior Engineer", "senior-engineer-01-05-2024"},
		{"  Go   Developer\t(Remote) ", "go-developer-remote-01-05-2024"},
		{"C++ / Rust Engineer", "c-rust-engineer-01-05-2024"},
		{"Ünïcödé", "ncd-01-05-2024"},
		{"!!!", "01-05-2024"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveSlug(tt.title, may1))
		})
	}
}

func TestEnsureSlug(t *testing.T) {
	t.Run("DerivesWhenMissing", func(t *testing.T) {
		rec := map[string]any{"title": "Senior Engineer"}
		require.NoError(t, EnsureSlug(rec, may1))
		assert.Equal(t, "senior-engineer-01-05-2024", rec["slug"])
	})

	t.Run("DerivesWhenEmpty", func(t *testing.T) {
		rec := map[string]any{"title": "Senior Engineer", "slug": ""}
		require.NoError(t, EnsureSlug(rec, may1))
		assert.Equal(t, "senior-engineer-01-05-2024", rec["slug"])
	})

	t.Run("DerivesWhenNull", func(t *testing.T) {
		rec := map[string]any{"title": "Senior Engineer", "slug": nil}
		require.NoError(t, EnsureSlug(rec, may1))
		assert.Equal(t, "senior-engineer-01-05-2024", rec["slug"])
	})

	t.Run("KeepsSuppliedSlug", func(t *testing.T) {
		rec := map[string]any{"title": "Senior Engineer", "slug": "senior-engineer-acme-01-05-2024"}
		require.NoError(t, EnsureSlug(rec, may1))
		assert.Equal(t, "senior-engineer-acme-01-05-2024", rec["slug"])
	})

	t.Run("SanitisesSuppliedSlug", func(t *testing.T) {
		rec := map[string]any{"title": "x", "slug": "Senior Engineer @ Acme!"}
		require.NoError(t, EnsureSlug(rec, may1))
		assert.Equal(t, "senior-engineer-acme", rec["slug"])
	})

	t.Run("RederivesWhenSanitisedEmpty", func(t *testing.T) {
		rec := map[string]any{"title": "Go Dev", "slug": "???"}
		require.NoError(t, EnsureSlug(rec, may1))
		assert.Equal(t, "go-dev-01-05-2024", rec["slug"])
	})

	t.Run("LeavesNonStringSlug", func(t *testing.T) {
		rec := map[string]any{"title": "Go Dev", "slug": 42.0}
		require.NoError(t, EnsureSlug(rec, may1))
		assert.Equal(t, 42.0, rec["slug"])
	})

	missing := []map[string]any{
		{"company": "Acme"},
		{"title": ""},
		{"title": "   "},
		{"title": 12.0},
		{"title": nil, "slug": "already-there"},
	}
	for _, rec := range missing {
		err := EnsureSlug(rec, may1)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindMissingField))
	}
}

func TestFromRecordAndMarshal(t *testing.T) {
	rec := map[string]any{
		"title":       "Go Dev",
		"company":     "Acme",
		"description": "d",
		"slug":        "go-dev-01-05-2024",
		"location":    "Berlin",
		"skills":      []any{"Go"},
	}

	j := FromRecord(rec)
	assert.Equal(t, "Go Dev", j.Title)
	assert.Equal(t, "go-dev-01-05-2024", j.Slug)
	assert.Equal(t, map[string]any{"location": "Berlin", "skills": []any{"Go"}}, j.Fields)

	j.ID = "abc"
	j.CreatedAt = may1
	j.UpdatedAt = may1

	out, err := j.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"_id": "abc",
		"title": "Go Dev",
		"company": "Acme",
		"description": "d",
		"slug": "go-dev-01-05-2024",
		"location": "Berlin",
		"skills": ["Go"],
		"createdAt": "2024-05-01T12:00:00Z",
		"updatedAt": "2024-05-01T12:00:00Z"
	}`, string(out))
}

func TestStripManaged(t *testing.T) {
	rec := map[string]any{"_id": "x", "id": 1, "createdAt": "now", "updatedAt": "now", "__v": 0, "title": "t"}
	stripManaged(rec)
	assert.Equal(t, map[string]any{"title": "t"}, rec)
}
