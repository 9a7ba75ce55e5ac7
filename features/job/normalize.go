package job

import (
	"regexp"
	"strings"
	"time"

	"jobportal/internal/apperr"
	"jobportal/internal/llm"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

func sanitizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DeriveSlug builds "<title>-DD-MM-YYYY" from a title and a date.
func DeriveSlug(title string, now time.Time) string {
	date := now.Format(llm.SlugDateLayout)
	base := sanitizeSlug(title)
	if base == "" {
		return date
	}
	return base + "-" + date
}

// EnsureSlug makes sure record carries a URL-safe slug. A missing or empty
// slug is derived from the title; a supplied one is sanitised. A record
// without a usable title fails with MissingRequiredFieldError.
func EnsureSlug(record map[string]any, now time.Time) error {
	title, ok := record["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return apperr.MissingField("title")
	}

	switch v := record["slug"].(type) {
	case nil:
		record["slug"] = DeriveSlug(title, now)
	case string:
		if s := sanitizeSlug(v); s != "" {
			record["slug"] = s
		} else {
			record["slug"] = DeriveSlug(title, now)
		}
	}
	// any other type is left for schema validation to reject
	return nil
}
