// Package policy is the deterministic content filter applied to candidate
// comments before they reach a human or an auto-reply path. Evaluation never
// fails: every outcome, including rejection, is a normal classification
// carrying machine-readable reasons.
package policy

import (
	"regexp"
	"strings"

	"github.com/pulsecraft/pulsecraft/internal/textutil"
)

// Rejection reasons. A rejected comment carries every reason that applied,
// not just the first.
const (
	ReasonBlockedTerm         = "blocked_term"
	ReasonSensitiveClaim      = "sensitive_claim"
	ReasonHistoryRepetition   = "history_repetition"
	ReasonGenericPhrase       = "generic_phrase"
	ReasonWeakVisualGrounding = "weak_visual_grounding"
)

const (
	// maxCommentBytes is the normalization byte budget per candidate.
	maxCommentBytes = 140

	defaultHistoryThreshold = 0.82
	defaultMaxSuggestions   = 8
	maxSuggestionsCeiling   = 20
)

// Engine evaluates candidate comments against the static policy tables.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	blockedTerms     []string
	historyThreshold float64
}

// Config holds configuration for the engine.
type Config struct {
	// AdditionalBlockedTerms extends the built-in denylist.
	AdditionalBlockedTerms []string

	// HistoryThreshold is the Jaccard similarity at or above which a
	// candidate counts as a repeat of a historical comment (default 0.82).
	HistoryThreshold float64
}

// New creates a new Engine.
func New(cfg Config) *Engine {
	terms := make([]string, 0, len(blockedTerms)+len(cfg.AdditionalBlockedTerms))
	terms = append(terms, blockedTerms...)
	terms = append(terms, cfg.AdditionalBlockedTerms...)
	for i, term := range terms {
		terms[i] = strings.ToLower(term)
	}

	threshold := cfg.HistoryThreshold
	if threshold == 0 {
		threshold = defaultHistoryThreshold
	}

	return &Engine{
		blockedTerms:     terms,
		historyThreshold: threshold,
	}
}

// Input is one evaluation request.
type Input struct {
	Candidates      []string
	History         []string
	ContextKeywords []string

	// MaxSuggestions caps the accepted list; zero means the default of 8,
	// and any value is clamped to [1, 20].
	MaxSuggestions int
}

// Rejection is a candidate that failed at least one check.
type Rejection struct {
	Comment string   `json:"comment"`
	Reasons []string `json:"reasons"`
}

// Verdict partitions the normalized candidates: each appears in exactly one
// of Accepted or Rejected, in first-seen input order.
type Verdict struct {
	Accepted []string    `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

// Evaluate classifies each candidate. It never fails; malformed input
// degrades to empty output.
func (e *Engine) Evaluate(in Input) Verdict {
	max := in.MaxSuggestions
	if max == 0 {
		max = defaultMaxSuggestions
	}
	if max < 1 {
		max = 1
	}
	if max > maxSuggestionsCeiling {
		max = maxSuggestionsCeiling
	}

	historyTokens := make([][]string, 0, len(in.History))
	for _, h := range in.History {
		historyTokens = append(historyTokens, textutil.Tokenize(h))
	}

	contextTokens := textutil.Tokenize(strings.Join(in.ContextKeywords, " "))
	groundingActive := len(contextTokens) > 0

	verdict := Verdict{Accepted: []string{}, Rejected: []Rejection{}}
	seen := make(map[string]bool)

	for _, candidate := range in.Candidates {
		comment := textutil.CollapseWhitespace(candidate)
		if comment == "" {
			continue
		}
		comment = textutil.TruncateBytes(comment, maxCommentBytes)

		key := strings.ToLower(comment)
		if seen[key] {
			continue
		}
		seen[key] = true

		reasons := e.checkAll(comment, historyTokens, contextTokens, groundingActive)
		if len(reasons) > 0 {
			verdict.Rejected = append(verdict.Rejected, Rejection{Comment: comment, Reasons: reasons})
			continue
		}

		if len(verdict.Accepted) < max {
			verdict.Accepted = append(verdict.Accepted, comment)
		}
	}

	return verdict
}

// checkAll runs every check and returns the full set of failing reasons.
// Checks are independent so rejection carries complete diagnostics.
func (e *Engine) checkAll(comment string, historyTokens [][]string, contextTokens []string, groundingActive bool) []string {
	var reasons []string
	tokens := textutil.Tokenize(comment)

	if e.hasBlockedTerm(comment) {
		reasons = append(reasons, ReasonBlockedTerm)
	}
	if matchesAny(sensitivePatterns, comment) {
		reasons = append(reasons, ReasonSensitiveClaim)
	}
	if e.repeatsHistory(tokens, historyTokens) {
		reasons = append(reasons, ReasonHistoryRepetition)
	}
	if matchesAny(genericPatterns, comment) {
		reasons = append(reasons, ReasonGenericPhrase)
	}
	if groundingActive && (len(tokens) == 0 || textutil.Overlap(tokens, contextTokens) == 0) {
		reasons = append(reasons, ReasonWeakVisualGrounding)
	}

	return reasons
}

func (e *Engine) hasBlockedTerm(comment string) bool {
	lower := strings.ToLower(comment)
	for _, term := range e.blockedTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (e *Engine) repeatsHistory(tokens []string, historyTokens [][]string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, past := range historyTokens {
		if textutil.Jaccard(tokens, past) >= e.historyThreshold {
			return true
		}
	}
	return false
}

func matchesAny(patterns []*regexp.Regexp, comment string) bool {
	for _, p := range patterns {
		if p.MatchString(comment) {
			return true
		}
	}
	return false
}
