// Package analyzer turns a social post payload plus optional image into a
// structured engagement decision with comment suggestions.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pulsecraft/pulsecraft/internal/llmjson"
	"github.com/pulsecraft/pulsecraft/internal/ollama"
	"github.com/pulsecraft/pulsecraft/internal/tone"
	"github.com/pulsecraft/pulsecraft/internal/usage"
)

const (
	temperature   = 0.2
	usageCategory = "post_analysis"

	imageDataPrefix = "data:image/"
)

// Analyzer builds and sends post-analysis requests.
type Analyzer struct {
	client  *ollama.Client
	tracker usage.Tracker
}

// Config holds configuration for the analyzer.
type Config struct {
	Client  *ollama.Client
	Tracker usage.Tracker
}

// New creates a new Analyzer.
func New(cfg Config) *Analyzer {
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = usage.Nop{}
	}
	return &Analyzer{client: cfg.Client, tracker: tracker}
}

// PromptRecord preserves the exact prompt pair sent to the model.
type PromptRecord struct {
	System     string `json:"system"`
	User       string `json:"user"`
	ImageCount int    `json:"image_count"`
}

// Result is one analysis outcome. Analysis is either the parsed JSON object
// or {"parse_error": true, "raw_text": ...} when the reply could not be
// parsed; a parse failure is degraded, never fatal.
type Result struct {
	Model        string               `json:"model"`
	Prompt       PromptRecord         `json:"prompt"`
	ResponseText string               `json:"response_text"`
	ResponseRaw  *ollama.ChatResponse `json:"response_raw,omitempty"`
	Analysis     map[string]any       `json:"analysis"`
}

// Input is one analysis request. Channel selects the tone profile woven into
// the system prompt; empty or unknown values fall back to the post profile.
type Input struct {
	Post         map[string]any
	ImageDataURL string
	Channel      string
}

// Analyze sends the composed prompt pair to the chat model. Transport errors
// propagate to the caller; malformed model output does not.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	payload, err := json.MarshalIndent(in.Post, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal post payload: %w", err)
	}

	system := analysisSystemPrompt
	user := fmt.Sprintf(analysisUserTemplate, toneBlock(in.Channel), payload)

	userMsg := ollama.Message{Role: "user", Content: user}
	if img, ok := imagePayload(in.ImageDataURL); ok {
		userMsg.Images = []string{img}
	}

	rec := usage.Record{
		Provider:  "ollama",
		Operation: "chat",
		Category:  usageCategory,
		Model:     a.client.Model(),
		StartedAt: time.Now(),
	}

	resp, err := a.client.Chat(ctx, ollama.ChatParams{
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			userMsg,
		},
		Temperature: temperature,
	})
	if err != nil {
		a.tracker.TrackFailure(ctx, rec, err)
		return nil, fmt.Errorf("analyze post: %w", err)
	}

	rec.PromptTokens = resp.PromptEvalCount
	rec.CompletionTokens = resp.EvalCount
	a.tracker.TrackSuccess(ctx, rec)

	text := resp.Message.Content
	analysis := llmjson.Extract(text)
	if len(analysis) == 0 {
		analysis = map[string]any{
			"parse_error": true,
			"raw_text":    text,
		}
	}

	return &Result{
		Model:        resp.Model,
		Prompt:       PromptRecord{System: system, User: user, ImageCount: len(userMsg.Images)},
		ResponseText: text,
		ResponseRaw:  resp,
		Analysis:     analysis,
	}, nil
}

// toneBlock renders the channel's tone profile as a prompt preamble.
func toneBlock(channel string) string {
	p := tone.ForChannel(channel)

	var b strings.Builder
	fmt.Fprintf(&b, "Voice for this channel (%s): %s\n", p.Label, p.Guidance)
	for _, rule := range p.WritingRules {
		fmt.Fprintf(&b, "- %s\n", rule)
	}
	b.WriteString("\n")
	return b.String()
}

// imagePayload extracts the base64 body of an image data URI. Anything that
// is not an image data URI is ignored rather than rejected.
func imagePayload(dataURL string) (string, bool) {
	if !strings.HasPrefix(dataURL, imageDataPrefix) {
		return "", false
	}

	idx := strings.Index(dataURL, "base64,")
	if idx < 0 {
		return "", false
	}

	body := dataURL[idx+len("base64,"):]
	if body == "" {
		return "", false
	}
	return body, true
}
