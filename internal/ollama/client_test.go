package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresHostAndModel(t *testing.T) {
	_, err := New(Config{Model: "llava"})
	assert.Error(t, err)

	_, err = New(Config{Host: "http://localhost:11434"})
	assert.Error(t, err)

	c, err := New(Config{Host: "http://localhost:11434", Model: "llava"})
	require.NoError(t, err)
	assert.Equal(t, "llava", c.Model())
}

func TestChat(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(ChatResponse{
			Model:           gotReq.Model,
			Message:         Message{Role: "assistant", Content: `{"relevant": true}`},
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       34,
		})
	}))
	defer srv.Close()

	c, err := New(Config{Host: srv.URL, Model: "llama3.2"})
	require.NoError(t, err)

	resp, err := c.Chat(context.Background(), ChatParams{
		Messages: []Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
		Temperature: 0.2,
		MaxTokens:   256,
	})
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", gotReq.Model)
	assert.False(t, gotReq.Stream)
	assert.Equal(t, 0.2, gotReq.Options["temperature"])
	assert.Equal(t, float64(256), gotReq.Options["num_predict"])

	assert.True(t, resp.Done)
	assert.Equal(t, `{"relevant": true}`, resp.Message.Content)
	assert.Equal(t, 12, resp.PromptEvalCount)
	assert.Equal(t, 34, resp.EvalCount)
}

func TestChatWithImages_EncodesFrames(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ChatResponse{Done: true})
	}))
	defer srv.Close()

	c, err := New(Config{Host: srv.URL, Model: "llava"})
	require.NoError(t, err)

	frames := [][]byte{[]byte("frame-one"), []byte("frame-two")}
	_, err = c.ChatWithImages(context.Background(), "describe", frames, 0.2, 256)
	require.NoError(t, err)

	require.Len(t, gotReq.Messages, 1)
	msg := gotReq.Messages[0]
	assert.Equal(t, "user", msg.Role)
	assert.Equal(t, "describe", msg.Content)
	require.Len(t, msg.Images, 2)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("frame-one")), msg.Images[0])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("frame-two")), msg.Images[1])
}

func TestChat_APIErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "model only supports one image, more than one image requested"}`))
	}))
	defer srv.Close()

	c, err := New(Config{Host: srv.URL, Model: "llava"})
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), ChatParams{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "only supports one image")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models": [{"name": "llava:latest"}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Host: srv.URL, Model: "llava"})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))

	missing, err := New(Config{Host: srv.URL, Model: "mistral"})
	require.NoError(t, err)
	assert.Error(t, missing.Ping(context.Background()))
}
