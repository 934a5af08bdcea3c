package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/pulsecraft.db", cfg.DatabasePath)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, "llama3.2", cfg.OllamaModel)
	assert.Equal(t, "llava", cfg.OllamaVisionModel)
	assert.True(t, cfg.VisionEnabled)
	assert.Equal(t, 4, cfg.VisionMaxFrames)
	assert.Equal(t, 220, cfg.VisionSummaryChars)
	assert.Equal(t, 18, cfg.VisionMaxKeywords)
	assert.Equal(t, 8, cfg.MaxSuggestions)
	assert.Equal(t, 0.6, cfg.MinTagConfidence)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("VISION_ENABLED", "false")
	t.Setenv("VISION_MAX_FRAMES", "2")
	t.Setenv("MAX_SUGGESTIONS", "3")
	t.Setenv("MIN_TAG_CONFIDENCE", "0.8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.OllamaModel)
	assert.False(t, cfg.VisionEnabled)
	assert.Equal(t, 2, cfg.VisionMaxFrames)
	assert.Equal(t, 3, cfg.MaxSuggestions)
	assert.Equal(t, 0.8, cfg.MinTagConfidence)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("VISION_MAX_FRAMES", "lots")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateForServe(t *testing.T) {
	cfg := &Config{
		DatabasePath:      "data/test.db",
		OllamaHost:        "http://localhost:11434",
		OllamaModel:       "llama3.2",
		OllamaVisionModel: "llava",
	}
	assert.NoError(t, cfg.ValidateForServe())

	cfg.OllamaVisionModel = ""
	assert.Error(t, cfg.ValidateForServe())

	cfg.OllamaVisionModel = "llava"
	cfg.OllamaModel = ""
	assert.Error(t, cfg.ValidateForServe())

	cfg.OllamaModel = "llama3.2"
	cfg.DatabasePath = ""
	assert.Error(t, cfg.ValidateForServe())
}

func TestNormalizeOllamaHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "http://localhost:11434"},
		{"0.0.0.0", "http://localhost:11434"},
		{"0.0.0.0:11434", "http://localhost:11434"},
		{"localhost:11434", "http://localhost:11434"},
		{"http://ollama:11434", "http://ollama:11434"},
		{"https://ollama.internal", "https://ollama.internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeOllamaHost(tt.in), tt.in)
	}
}
