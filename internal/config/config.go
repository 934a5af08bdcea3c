package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// Ollama
	OllamaHost        string
	OllamaModel       string // chat model for post analysis
	OllamaVisionModel string // multimodal model for vision summaries

	// Vision summarizer
	VisionEnabled       bool
	VisionMaxFrames     int
	VisionMaxFrameBytes int
	VisionSummaryChars  int
	VisionMaxKeywords   int

	// Companion label service (optional)
	LabelServiceURL string

	// Policy
	MaxSuggestions   int
	MinTagConfidence float64

	// HTTP server
	ListenAddr string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:      getEnv("DATABASE_PATH", "data/pulsecraft.db"),
		OllamaHost:        normalizeOllamaHost(getEnv("OLLAMA_HOST", "http://localhost:11434")),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3.2"),
		OllamaVisionModel: getEnv("OLLAMA_VISION_MODEL", "llava"),
		LabelServiceURL:   getEnv("LABEL_SERVICE_URL", ""),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.VisionEnabled, err = getEnvBool("VISION_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("invalid VISION_ENABLED: %w", err)
	}

	cfg.VisionMaxFrames, err = getEnvInt("VISION_MAX_FRAMES", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid VISION_MAX_FRAMES: %w", err)
	}

	cfg.VisionMaxFrameBytes, err = getEnvInt("VISION_MAX_FRAME_BYTES", 5*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("invalid VISION_MAX_FRAME_BYTES: %w", err)
	}

	cfg.VisionSummaryChars, err = getEnvInt("VISION_SUMMARY_CHARS", 220)
	if err != nil {
		return nil, fmt.Errorf("invalid VISION_SUMMARY_CHARS: %w", err)
	}

	cfg.VisionMaxKeywords, err = getEnvInt("VISION_MAX_KEYWORDS", 18)
	if err != nil {
		return nil, fmt.Errorf("invalid VISION_MAX_KEYWORDS: %w", err)
	}

	cfg.MaxSuggestions, err = getEnvInt("MAX_SUGGESTIONS", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_SUGGESTIONS: %w", err)
	}

	minConf := getEnv("MIN_TAG_CONFIDENCE", "0.6")
	cfg.MinTagConfidence, err = strconv.ParseFloat(minConf, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_TAG_CONFIDENCE: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForAnalysis checks configuration needed for post analysis.
func (c *Config) ValidateForAnalysis() error {
	if c.OllamaHost == "" {
		return fmt.Errorf("OLLAMA_HOST is required for analysis")
	}
	if c.OllamaModel == "" {
		return fmt.Errorf("OLLAMA_MODEL is required for analysis")
	}
	return nil
}

// ValidateForVision checks configuration needed for vision summaries.
func (c *Config) ValidateForVision() error {
	if c.OllamaHost == "" {
		return fmt.Errorf("OLLAMA_HOST is required for vision")
	}
	if c.OllamaVisionModel == "" {
		return fmt.Errorf("OLLAMA_VISION_MODEL is required for vision")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.ValidateForAnalysis(); err != nil {
		return err
	}
	return c.ValidateForVision()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(val)
}

// normalizeOllamaHost ensures the Ollama host has a proper URL scheme.
// This handles cases where OLLAMA_HOST is set to a bind address like "0.0.0.0"
// (used by Ollama server) instead of a client URL like "http://localhost:11434".
func normalizeOllamaHost(host string) string {
	if host == "" {
		return "http://localhost:11434"
	}

	// If it's just a bind address (0.0.0.0 or similar), use localhost instead
	if host == "0.0.0.0" || host == "0.0.0.0:11434" {
		return "http://localhost:11434"
	}

	// If it doesn't have a scheme, add http://
	if len(host) < 4 || host[:4] != "http" {
		return "http://" + host
	}

	return host
}
