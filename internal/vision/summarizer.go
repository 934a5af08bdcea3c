// Package vision turns image frames into a structured summary/keyword
// envelope by calling a multimodal chat model. Callers always receive a
// well-formed Summary: every failure past construction degrades to an
// unavailable envelope instead of an error.
package vision

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pulsecraft/pulsecraft/internal/llmjson"
	"github.com/pulsecraft/pulsecraft/internal/ollama"
	"github.com/pulsecraft/pulsecraft/internal/textutil"
	"github.com/pulsecraft/pulsecraft/internal/usage"
)

const (
	defaultMaxFrames     = 4
	defaultMaxFrameBytes = 5 * 1024 * 1024
	defaultSummaryChars  = 220
	defaultMaxKeywords   = 18

	// Structured replies are short; a small budget keeps vision calls cheap.
	replyTokenBudget = 256

	temperature = 0.2

	usageCategory = "vision_summary"
)

// Degraded-result reasons surfaced in Metadata.Reason.
const (
	ReasonDisabled      = "vision_disabled"
	ReasonImagesMissing = "vision_images_missing"
	ReasonModelError    = "vision_model_error"

	retryReasonSingleImage = "model_single_image_limit"
)

// Summarizer builds vision summaries from image frames.
type Summarizer struct {
	client        *ollama.Client
	tracker       usage.Tracker
	enabled       bool
	maxFrames     int
	maxFrameBytes int
	summaryChars  int
	maxKeywords   int
}

// Config holds configuration for the summarizer.
type Config struct {
	Client  *ollama.Client
	Tracker usage.Tracker

	// Enabled gates the whole feature; when false Summarize returns an
	// unavailable envelope without calling the model.
	Enabled bool

	MaxFrames     int // frames kept per call (default 4)
	MaxFrameBytes int // largest accepted frame (default 5 MiB)
	SummaryChars  int // summary character budget (default 220)
	MaxKeywords   int // cap per keyword set (default 18)
}

// New creates a new Summarizer.
func New(cfg Config) *Summarizer {
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = usage.Nop{}
	}

	maxFrames := cfg.MaxFrames
	if maxFrames == 0 {
		maxFrames = defaultMaxFrames
	}
	maxFrameBytes := cfg.MaxFrameBytes
	if maxFrameBytes == 0 {
		maxFrameBytes = defaultMaxFrameBytes
	}
	summaryChars := cfg.SummaryChars
	if summaryChars == 0 {
		summaryChars = defaultSummaryChars
	}
	maxKeywords := cfg.MaxKeywords
	if maxKeywords == 0 {
		maxKeywords = defaultMaxKeywords
	}

	return &Summarizer{
		client:        cfg.Client,
		tracker:       tracker,
		enabled:       cfg.Enabled,
		maxFrames:     maxFrames,
		maxFrameBytes: maxFrameBytes,
		summaryChars:  summaryChars,
		maxKeywords:   maxKeywords,
	}
}

// Input is one summarize request.
type Input struct {
	Frames          [][]byte
	Transcript      string
	CandidateTopics []string
	MediaType       string // "image", "video", "story"...
}

// Metadata carries provenance for a Summary.
type Metadata struct {
	Status           string `json:"status"`
	Source           string `json:"source"`
	Model            string `json:"model,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Error            string `json:"error,omitempty"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	DurationMs       int64  `json:"duration_ms,omitempty"`
	ImagesUsed       int    `json:"images_used"`
	SingleImageRetry bool   `json:"single_image_retry"`
	RetryReason      string `json:"retry_reason,omitempty"`
}

// Summary is the structured result of a vision call.
type Summary struct {
	OK       bool     `json:"ok"`
	Model    string   `json:"model,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Topics   []string `json:"topics"`
	Objects  []string `json:"objects"`
	Metadata Metadata `json:"metadata"`
}

// Summarize sends the accepted frames to the multimodal model and shapes the
// reply. It never returns an error: configuration, input, and transport
// problems all degrade to an unavailable envelope.
func (s *Summarizer) Summarize(ctx context.Context, in Input) *Summary {
	if !s.enabled {
		return unavailable(ReasonDisabled, "")
	}

	frames := s.acceptFrames(in.Frames)
	if len(frames) == 0 {
		return unavailable(ReasonImagesMissing, "")
	}

	hints := cleanKeywords(in.CandidateTopics, maxTopicHints)
	prompt := buildPrompt(in.MediaType, in.Transcript, hints)

	started := time.Now()
	rec := usage.Record{
		Provider:  "ollama",
		Operation: "chat_with_images",
		Category:  usageCategory,
		Model:     s.client.Model(),
		StartedAt: started,
	}

	resp, err := s.client.ChatWithImages(ctx, prompt, frames, temperature, replyTokenBudget)
	retried := false
	if err != nil && len(frames) > 1 && isSingleImageLimit(err) {
		slog.Debug("vision model rejected multiple frames, retrying with one",
			"frames", len(frames),
		)
		retried = true
		frames = frames[:1]
		resp, err = s.client.ChatWithImages(ctx, prompt, frames, temperature, replyTokenBudget)
	}
	if err != nil {
		s.tracker.TrackFailure(ctx, rec, err)
		return unavailable(ReasonModelError, err.Error())
	}

	rec.PromptTokens = resp.PromptEvalCount
	rec.CompletionTokens = resp.EvalCount
	s.tracker.TrackSuccess(ctx, rec)

	summary := s.shape(resp, hints, len(frames))
	summary.Metadata.DurationMs = time.Since(started).Milliseconds()
	if retried {
		summary.Metadata.SingleImageRetry = true
		summary.Metadata.RetryReason = retryReasonSingleImage
	}
	return summary
}

// acceptFrames drops empty and oversized frames and keeps the first
// maxFrames, order preserving.
func (s *Summarizer) acceptFrames(frames [][]byte) [][]byte {
	accepted := make([][]byte, 0, len(frames))
	for _, frame := range frames {
		if len(frame) == 0 || len(frame) > s.maxFrameBytes {
			continue
		}
		accepted = append(accepted, frame)
		if len(accepted) == s.maxFrames {
			break
		}
	}
	return accepted
}

// shape converts the model reply into the summary envelope.
func (s *Summarizer) shape(resp *ollama.ChatResponse, hints []string, imagesUsed int) *Summary {
	raw := resp.Message.Content
	parsed := llmjson.Extract(raw)

	text := strings.TrimSpace(llmjson.StringField(parsed, "summary"))
	if text == "" {
		text = strings.TrimSpace(raw)
	}
	text = textutil.TruncateChars(text, s.summaryChars)

	topics := cleanKeywords(llmjson.StringSlice(parsed, "topics"), s.maxKeywords)
	objects := cleanKeywords(llmjson.StringSlice(parsed, "objects"), s.maxKeywords)
	cues := cleanKeywords(llmjson.StringSlice(parsed, "visual_cues"), s.maxKeywords)

	// Candidate hints are merged ahead of model-derived keywords
	mergedTopics := textutil.DedupeCap(concat(hints, topics, objects, cues), s.maxKeywords)
	mergedObjects := textutil.DedupeCap(concat(objects, cues), s.maxKeywords)

	ok := text != "" || len(topics) > 0 || len(objects) > 0 || len(cues) > 0

	return &Summary{
		OK:      ok,
		Model:   resp.Model,
		Summary: text,
		Topics:  mergedTopics,
		Objects: mergedObjects,
		Metadata: Metadata{
			Status:           "ok",
			Source:           "ollama",
			Model:            resp.Model,
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			ImagesUsed:       imagesUsed,
		},
	}
}

// isSingleImageLimit reports whether a transport error is the provider's
// "single image only" rejection. The literal substrings are the provider's
// own error text and must be kept in sync with it.
func isSingleImageLimit(err error) bool {
	var apiErr *ollama.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	msg := strings.ToLower(apiErr.Body)
	switch {
	case strings.Contains(msg, "only supports one image"):
		return true
	case strings.Contains(msg, "one image") && strings.Contains(msg, "more than one image"):
		return true
	case strings.Contains(msg, "more than one image requested"):
		return true
	}
	return false
}

func unavailable(reason, errText string) *Summary {
	return &Summary{
		OK:      false,
		Topics:  []string{},
		Objects: []string{},
		Metadata: Metadata{
			Status: "unavailable",
			Source: "ollama",
			Reason: reason,
			Error:  errText,
		},
	}
}

func cleanKeywords(items []string, max int) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if kw := textutil.CleanKeyword(item); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	return textutil.DedupeCap(cleaned, max)
}

func concat(slices ...[]string) []string {
	var out []string
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}
