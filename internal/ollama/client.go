// Package ollama is a client for the Ollama chat API, covering text-only and
// multimodal (image) completions.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 120 * time.Second

// Client calls an Ollama-compatible chat endpoint.
type Client struct {
	host       string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the client.
type Config struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// New creates a new Client. Host and model are required; a missing value is
// a configuration error reported at construction, never at call time.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		host:  cfg.Host,
		model: cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Message is a single chat message. Images holds base64-encoded frames for
// multimodal models.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ChatParams are the per-call knobs for Chat.
type ChatParams struct {
	Model         string // overrides the client default when set
	Messages      []Message
	Temperature   float64
	MaxTokens     int
	ContextWindow int
}

// chatRequest is the request body for /api/chat.
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// ChatResponse is the response from /api/chat.
type ChatResponse struct {
	Model           string  `json:"model"`
	CreatedAt       string  `json:"created_at"`
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	TotalDuration   int64   `json:"total_duration"`
	LoadDuration    int64   `json:"load_duration"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
	EvalDuration    int64   `json:"eval_duration"`
}

// APIError is a non-success response from the provider. The body is carried
// verbatim so callers can match provider-specific error text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama error (status %d): %s", e.StatusCode, e.Body)
}

// Chat sends a chat completion request.
func (c *Client) Chat(ctx context.Context, p ChatParams) (*ChatResponse, error) {
	model := p.Model
	if model == "" {
		model = c.model
	}

	options := map[string]any{
		"temperature": p.Temperature,
	}
	if p.MaxTokens > 0 {
		options["num_predict"] = p.MaxTokens
	}
	if p.ContextWindow > 0 {
		options["num_ctx"] = p.ContextWindow
	}

	req := chatRequest{
		Model:    model,
		Messages: p.Messages,
		Stream:   false,
		Options:  options,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", c.host)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &chatResp, nil
}

// ChatWithImages sends a single user message carrying one or more image
// frames to a multimodal model.
func (c *Client) ChatWithImages(ctx context.Context, prompt string, images [][]byte, temperature float64, maxTokens int) (*ChatResponse, error) {
	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img)
	}

	return c.Chat(ctx, ChatParams{
		Messages: []Message{
			{Role: "user", Content: prompt, Images: encoded},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
}

// Ping checks that the endpoint is reachable and the configured model is
// available.
func (c *Client) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/tags", c.host)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("connect to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	var tagsResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return fmt.Errorf("decode tags response: %w", err)
	}

	for _, model := range tagsResp.Models {
		if model.Name == c.model || model.Name == c.model+":latest" {
			return nil
		}
	}

	return fmt.Errorf("model %s not found in Ollama (run: ollama pull %s)", c.model, c.model)
}
