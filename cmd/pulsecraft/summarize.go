package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pulsecraft/pulsecraft/internal/config"
	"github.com/pulsecraft/pulsecraft/internal/ollama"
	"github.com/pulsecraft/pulsecraft/internal/vision"
)

var (
	summarizeTranscript string
	summarizeTopics     []string
	summarizeMediaType  string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <image>...",
	Short: "Summarize one or more image frames with the vision model",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeTranscript, "transcript", "", "audio transcript hint")
	summarizeCmd.Flags().StringSliceVar(&summarizeTopics, "topics", nil, "candidate topic hints")
	summarizeCmd.Flags().StringVar(&summarizeMediaType, "media-type", "image", "media type (image, video, story)")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateForVision(); err != nil {
		return err
	}

	frames := make([][]byte, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read frame %s: %w", path, err)
		}
		frames = append(frames, data)
	}

	client, err := ollama.New(ollama.Config{
		Host:  cfg.OllamaHost,
		Model: cfg.OllamaVisionModel,
	})
	if err != nil {
		return err
	}

	summarizer := vision.New(vision.Config{
		Client:        client,
		Enabled:       cfg.VisionEnabled,
		MaxFrames:     cfg.VisionMaxFrames,
		MaxFrameBytes: cfg.VisionMaxFrameBytes,
		SummaryChars:  cfg.VisionSummaryChars,
		MaxKeywords:   cfg.VisionMaxKeywords,
	})

	summary := summarizer.Summarize(cmd.Context(), vision.Input{
		Frames:          frames,
		Transcript:      summarizeTranscript,
		CandidateTopics: summarizeTopics,
		MediaType:       summarizeMediaType,
	})

	return printJSON(summary)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
