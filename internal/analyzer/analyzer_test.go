package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecraft/pulsecraft/internal/ollama"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string   `json:"role"`
		Content string   `json:"content"`
		Images  []string `json:"images"`
	} `json:"messages"`
	Options map[string]any `json:"options"`
}

func newTestAnalyzer(t *testing.T, reply string, status int) (*Analyzer, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error": "upstream failure"}`))
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3.2",
			"message":           map[string]string{"role": "assistant", "content": reply},
			"done":              true,
			"prompt_eval_count": 80,
			"eval_count":        40,
		})
	}))
	t.Cleanup(srv.Close)

	client, err := ollama.New(ollama.Config{Host: srv.URL, Model: "llama3.2"})
	require.NoError(t, err)

	return New(Config{Client: client}), captured
}

func samplePost() map[string]any {
	return map[string]any{
		"caption":  "Sunrise hike before work",
		"likes":    42,
		"location": "Mount Si",
	}
}

func TestAnalyze_Success(t *testing.T) {
	reply := `{"image_description": "A hiker at sunrise.", "relevant": true, "author_type": "friend", "sentiment": "positive", "comment_suggestions": ["a", "b", "c", "d", "e"]}`
	a, captured := newTestAnalyzer(t, reply, http.StatusOK)

	got, err := a.Analyze(context.Background(), Input{Post: samplePost()})
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", got.Model)
	assert.Equal(t, reply, got.ResponseText)
	assert.Equal(t, true, got.Analysis["relevant"])
	assert.Equal(t, "friend", got.Analysis["author_type"])

	// System + user message pair, temperature pinned low
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, 0.2, captured.Options["temperature"])

	// System prompt enforces the hard rules
	system := captured.Messages[0].Content
	assert.Contains(t, system, "NEVER infer or guess sensitive demographic attributes")
	assert.Contains(t, system, "image_description")

	// User prompt embeds payload and schema
	user := captured.Messages[1].Content
	assert.Contains(t, user, "Sunrise hike before work")
	assert.Contains(t, user, `"comment_suggestions"`)
	assert.Contains(t, user, `"engagement_score"`)

	assert.Equal(t, system, got.Prompt.System)
	assert.Equal(t, user, got.Prompt.User)
	assert.Equal(t, 0, got.Prompt.ImageCount)
}

func TestAnalyze_AttachesImageOnlyForImageDataURI(t *testing.T) {
	tests := []struct {
		name      string
		dataURL   string
		wantCount int
	}{
		{"image data uri", "data:image/jpeg;base64,aGVsbG8=", 1},
		{"non-image data uri", "data:text/plain;base64,aGVsbG8=", 0},
		{"plain url", "https://example.com/a.jpg", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, captured := newTestAnalyzer(t, `{"relevant": false}`, http.StatusOK)

			got, err := a.Analyze(context.Background(), Input{
				Post:         samplePost(),
				ImageDataURL: tt.dataURL,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantCount, got.Prompt.ImageCount)
			assert.Len(t, captured.Messages[1].Images, tt.wantCount)
			if tt.wantCount == 1 {
				assert.Equal(t, "aGVsbG8=", captured.Messages[1].Images[0])
			}
		})
	}
}

func TestAnalyze_ToneProfileInPrompt(t *testing.T) {
	a, captured := newTestAnalyzer(t, `{"relevant": true}`, http.StatusOK)

	_, err := a.Analyze(context.Background(), Input{Post: samplePost(), Channel: "dm"})
	require.NoError(t, err)

	user := captured.Messages[1].Content
	assert.Contains(t, user, "Direct message")

	// Unknown channel falls back to the post profile
	_, err = a.Analyze(context.Background(), Input{Post: samplePost(), Channel: "reel"})
	require.NoError(t, err)
	assert.Contains(t, captured.Messages[1].Content, "Feed post")
}

func TestAnalyze_ParseErrorDegrades(t *testing.T) {
	a, _ := newTestAnalyzer(t, "I could not produce JSON for this one.", http.StatusOK)

	got, err := a.Analyze(context.Background(), Input{Post: samplePost()})
	require.NoError(t, err)

	assert.Equal(t, true, got.Analysis["parse_error"])
	assert.Equal(t, "I could not produce JSON for this one.", got.Analysis["raw_text"])
}

func TestAnalyze_TransportErrorPropagates(t *testing.T) {
	a, _ := newTestAnalyzer(t, "", http.StatusBadGateway)

	_, err := a.Analyze(context.Background(), Input{Post: samplePost()})
	require.Error(t, err)

	var apiErr *ollama.APIError
	assert.ErrorAs(t, err, &apiErr)
}
