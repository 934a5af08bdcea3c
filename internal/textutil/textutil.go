// Package textutil provides the shared text normalization helpers used by
// the vision summarizer and the comment policy engine.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CollapseWhitespace collapses runs of whitespace to single spaces and trims
// leading/trailing whitespace.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateBytes truncates s to at most n bytes without splitting a rune.
func TruncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}

	// Back up to a rune boundary
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// TruncateChars truncates s to at most max runes, appending "..." when the
// text was cut.
func TruncateChars(s string, max int) string {
	if max <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	truncated := strings.TrimRight(string(runes[:max]), " ")
	return truncated + "..."
}

// Tokenize splits s into unique lowercase alphanumeric tokens, preserving
// first-seen order.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// CleanKeyword lowercases a keyword and strips characters outside letters,
// digits, whitespace and the social-media set (#, @, _, -).
func CleanKeyword(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '#' || r == '@' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}

	return CollapseWhitespace(b.String())
}

// DedupeCap drops empty strings, deduplicates case-insensitively preserving
// first-seen order, and caps the result at max entries. A max of zero or less
// means no cap.
func DedupeCap(items []string, max int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// Jaccard computes the Jaccard similarity between two token slices, treating
// each as a set. It returns 0 when either set is empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Overlap counts the number of tokens in a that also appear in b.
func Overlap(a, b []string) int {
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	count := 0
	for _, t := range a {
		if setB[t] {
			count++
		}
	}
	return count
}
