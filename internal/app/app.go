package app

import (
	"context"

	"github.com/pulsecraft/pulsecraft/internal/analyzer"
	"github.com/pulsecraft/pulsecraft/internal/config"
	"github.com/pulsecraft/pulsecraft/internal/db"
	"github.com/pulsecraft/pulsecraft/internal/labels"
	"github.com/pulsecraft/pulsecraft/internal/ollama"
	"github.com/pulsecraft/pulsecraft/internal/policy"
	"github.com/pulsecraft/pulsecraft/internal/profile"
	"github.com/pulsecraft/pulsecraft/internal/usage"
	"github.com/pulsecraft/pulsecraft/internal/vision"
)

// App is the main application container holding all dependencies.
type App struct {
	Config     *config.Config
	Store      *db.Store
	Tracker    usage.Tracker
	Chat       *ollama.Client
	VisionChat *ollama.Client
	Summarizer *vision.Summarizer
	Analyzer   *analyzer.Analyzer
	Policy     *policy.Engine
	Profiles   *profile.Syncer
	Labels     labels.Detector
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Create database connection
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	tracker := usage.NewRecorder(store)

	chat, err := ollama.New(ollama.Config{
		Host:  cfg.OllamaHost,
		Model: cfg.OllamaModel,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	visionChat, err := ollama.New(ollama.Config{
		Host:  cfg.OllamaHost,
		Model: cfg.OllamaVisionModel,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	summarizer := vision.New(vision.Config{
		Client:        visionChat,
		Tracker:       tracker,
		Enabled:       cfg.VisionEnabled,
		MaxFrames:     cfg.VisionMaxFrames,
		MaxFrameBytes: cfg.VisionMaxFrameBytes,
		SummaryChars:  cfg.VisionSummaryChars,
		MaxKeywords:   cfg.VisionMaxKeywords,
	})

	postAnalyzer := analyzer.New(analyzer.Config{
		Client:  chat,
		Tracker: tracker,
	})

	engine := policy.New(policy.Config{})

	profiles := profile.New(profile.Config{
		Store:         store,
		MinConfidence: cfg.MinTagConfidence,
	})

	app := &App{
		Config:     cfg,
		Store:      store,
		Tracker:    tracker,
		Chat:       chat,
		VisionChat: visionChat,
		Summarizer: summarizer,
		Analyzer:   postAnalyzer,
		Policy:     engine,
		Profiles:   profiles,
	}

	// Label service is optional
	if cfg.LabelServiceURL != "" {
		detector, err := labels.NewClient(labels.Config{
			BaseURL: cfg.LabelServiceURL,
			Tracker: tracker,
		})
		if err != nil {
			store.Close()
			return nil, err
		}
		app.Labels = detector
	}

	return app, nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
