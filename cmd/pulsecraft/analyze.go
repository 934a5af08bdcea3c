package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulsecraft/pulsecraft/internal/analyzer"
	"github.com/pulsecraft/pulsecraft/internal/config"
	"github.com/pulsecraft/pulsecraft/internal/ollama"
)

var (
	analyzeImagePath string
	analyzeChannel   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <post.json>",
	Short: "Analyze a post payload and draft comment suggestions",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeImagePath, "image", "", "path to an image attached to the post")
	analyzeCmd.Flags().StringVar(&analyzeChannel, "channel", "post", "channel tone (post, story, dm)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForAnalysis(); err != nil {
		return err
	}

	payload, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read post payload: %w", err)
	}

	var post map[string]any
	if err := json.Unmarshal(payload, &post); err != nil {
		return fmt.Errorf("parse post payload: %w", err)
	}

	imageDataURL := ""
	if analyzeImagePath != "" {
		imageDataURL, err = imageToDataURL(analyzeImagePath)
		if err != nil {
			return err
		}
	}

	client, err := ollama.New(ollama.Config{
		Host:  cfg.OllamaHost,
		Model: cfg.OllamaModel,
	})
	if err != nil {
		return err
	}

	a := analyzer.New(analyzer.Config{Client: client})

	result, err := a.Analyze(cmd.Context(), analyzer.Input{
		Post:         post,
		ImageDataURL: imageDataURL,
		Channel:      analyzeChannel,
	})
	if err != nil {
		return err
	}

	return printJSON(result)
}

func imageToDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mime := "image/jpeg"
	if strings.HasSuffix(strings.ToLower(path), ".png") {
		mime = "image/png"
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
