package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"jobportal/internal/apperr"
)

var fencedJSON = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")

// ExtractJSON locates the JSON object in a model completion. Candidates are
// tried in order: a fenced ```json block, each balanced {...} span, then the
// whole trimmed text. The first candidate that decodes to an object wins.
// When none do, the error is an ExtractionError carrying the raw text and
// the parse failure of the most preferred candidate.
func ExtractJSON(raw string) (map[string]any, error) {
	candidates := make([]string, 0, 4)
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, braceSpans(raw)...)
	candidates = append(candidates, strings.TrimSpace(raw))

	var firstErr error
	for _, c := range candidates {
		obj, err := decodeObject(c)
		if err == nil {
			return obj, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, apperr.Extraction(raw, firstErr)
}

func decodeObject(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty response")
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return nil, fmt.Errorf("expected a JSON object, got %s", describe(v))
	}
	return obj, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// braceSpans returns every balanced top-level {...} span in s, in order of
// appearance. Braces inside JSON strings are ignored.
func braceSpans(s string) []string {
	var spans []string
	for start := strings.IndexByte(s, '{'); start >= 0; {
		resume := start + 1
		if end := matchBrace(s, start); end >= 0 {
			spans = append(spans, s[start:end+1])
			resume = end + 1
		}

		next := strings.IndexByte(s[resume:], '{')
		if next < 0 {
			break
		}
		start = resume + next
	}
	return spans
}

// matchBrace returns the index of the brace closing the one at open, or -1.
func matchBrace(s string, open int) int {
	depth := 0
	inString := false
	escaped := false

	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
