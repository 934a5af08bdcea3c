// Package llmjson recovers structured JSON from free-form language model
// output. Models frequently wrap valid JSON in prose or markdown fences, so
// extraction is a two-stage process: a direct parse, then a retry on the
// outermost brace-delimited span.
package llmjson

import (
	"encoding/json"
	"strings"
)

// Extract parses text as a JSON object. On failure it retries on the
// substring between the first '{' and the last '}'. It never fails: when no
// JSON object can be recovered it returns an empty, non-nil map.
func Extract(text string) map[string]any {
	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err == nil && result != nil {
		return result
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		result = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &result); err == nil && result != nil {
			return result
		}
	}

	return map[string]any{}
}

// StringField returns the string value at key, or "" when the key is absent
// or holds a non-string value.
func StringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// StringSlice returns the values at key as strings. A JSON array yields its
// string elements (non-strings are skipped); a bare string yields a
// single-element slice.
func StringSlice(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// BoolField returns the boolean value at key, or false when absent or
// non-boolean.
func BoolField(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// FloatField returns the numeric value at key, or 0 when absent or
// non-numeric.
func FloatField(m map[string]any, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}
