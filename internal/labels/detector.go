// Package labels is the boundary to the companion image-analysis
// microservice, a non-generative path that returns object labels with
// confidence scores.
package labels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pulsecraft/pulsecraft/internal/usage"
)

// Detector returns object labels with confidence scores for an image.
type Detector interface {
	DetectLabels(ctx context.Context, image []byte, maxLabels int) (map[string]float64, error)
}

// Client calls the companion microservice's /analyze/image endpoint.
type Client struct {
	baseURL    string
	tracker    usage.Tracker
	httpClient *http.Client
}

// Config holds configuration for the client.
type Config struct {
	BaseURL string
	Tracker usage.Tracker
	Timeout time.Duration
}

// NewClient creates a new Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("label service URL is required")
	}

	tracker := cfg.Tracker
	if tracker == nil {
		tracker = usage.Nop{}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		tracker: tracker,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// analyzeResponse is the microservice's success envelope.
type analyzeResponse struct {
	Success bool `json:"success"`
	Results struct {
		Labels []struct {
			Label      string  `json:"label"`
			Confidence float64 `json:"confidence"`
		} `json:"labels"`
	} `json:"results"`
}

// DetectLabels returns up to maxLabels labels mapped to their highest
// confidence. Labels arrive sorted by confidence, so the cap keeps the
// strongest detections.
func (c *Client) DetectLabels(ctx context.Context, image []byte, maxLabels int) (map[string]float64, error) {
	rec := usage.Record{
		Provider:  "local_ai",
		Operation: "detect_labels",
		StartedAt: time.Now(),
	}

	labels, err := c.detect(ctx, image, maxLabels)
	if err != nil {
		c.tracker.TrackFailure(ctx, rec, err)
		return nil, err
	}

	c.tracker.TrackSuccess(ctx, rec)
	return labels, nil
}

func (c *Client) detect(ctx context.Context, image []byte, maxLabels int) (map[string]float64, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	url := fmt.Sprintf("%s/analyze/image?features=labels", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

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
		return nil, fmt.Errorf("label service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("label service reported failure")
	}

	labels := make(map[string]float64)
	for _, l := range parsed.Results.Labels {
		if maxLabels > 0 && len(labels) >= maxLabels {
			break
		}
		if existing, ok := labels[l.Label]; !ok || l.Confidence > existing {
			labels[l.Label] = l.Confidence
		}
	}
	return labels, nil
}
