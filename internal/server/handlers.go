package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pulsecraft/pulsecraft/internal/analyzer"
	"github.com/pulsecraft/pulsecraft/internal/llmjson"
	"github.com/pulsecraft/pulsecraft/internal/policy"
	"github.com/pulsecraft/pulsecraft/internal/profile"
	"github.com/pulsecraft/pulsecraft/internal/vision"
)

const historyReplayLimit = 50

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	components := map[string]bool{
		"database": s.app.Store.Ping() == nil,
		"chat":     s.app.Chat.Ping(ctx) == nil,
		"vision":   s.app.VisionChat.Ping(ctx) == nil,
	}

	healthy := true
	for _, up := range components {
		healthy = healthy && up
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, envelope{
		Success: healthy,
		Results: map[string]any{"services": components},
	})
}

type summarizeRequest struct {
	MediaType       string   `json:"media_type"`
	Transcript      string   `json:"transcript"`
	CandidateTopics []string `json:"candidate_topics"`
	Images          []string `json:"images"` // base64-encoded frames
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	frames := make([][]byte, 0, len(req.Images))
	for _, img := range req.Images {
		decoded, err := base64.StdEncoding.DecodeString(img)
		if err != nil {
			return fail(c, http.StatusBadRequest, "images must be base64 encoded")
		}
		frames = append(frames, decoded)
	}

	summary := s.app.Summarizer.Summarize(c.Request().Context(), vision.Input{
		Frames:          frames,
		Transcript:      req.Transcript,
		CandidateTopics: req.CandidateTopics,
		MediaType:       req.MediaType,
	})

	// The summarizer never fails; a degraded envelope is still a 200
	return ok(c, summary, map[string]any{"status": summary.Metadata.Status})
}

type analyzeRequest struct {
	Post         map[string]any `json:"post"`
	ImageDataURL string         `json:"image_data_url"`
	Channel      string         `json:"channel"`

	// Optional: sync the analysis outcome onto a stored profile
	ProfileID      string `json:"profile_id"`
	CanMessage     bool   `json:"can_message"`
	DeclaredGender string `json:"declared_gender"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if len(req.Post) == 0 {
		return fail(c, http.StatusBadRequest, "post payload is required")
	}

	result, err := s.app.Analyzer.Analyze(c.Request().Context(), analyzer.Input{
		Post:         req.Post,
		ImageDataURL: req.ImageDataURL,
		Channel:      req.Channel,
	})
	if err != nil {
		slog.Warn("post analysis failed", "error", err, "request_id", c.Get("request_id"))
		return fail(c, http.StatusBadGateway, "analysis backend unavailable")
	}

	if req.ProfileID != "" && !llmjson.BoolField(result.Analysis, "parse_error") {
		s.app.Profiles.SyncTags(c.Request().Context(), profile.Assessment{
			ProfileID:      req.ProfileID,
			AuthorType:     llmjson.StringField(result.Analysis, "author_type"),
			Relevant:       llmjson.BoolField(result.Analysis, "relevant"),
			Confidence:     llmjson.FloatField(result.Analysis, "confidence"),
			CanMessage:     req.CanMessage,
			DeclaredGender: req.DeclaredGender,
		})
	}

	return ok(c, result, map[string]any{"model": result.Model})
}

type filterRequest struct {
	Candidates      []string `json:"candidates"`
	History         []string `json:"history"`
	ContextKeywords []string `json:"context_keywords"`
	MaxSuggestions  int      `json:"max_suggestions"`

	// Optional: merge stored history for the profile and record accepted
	// comments back into it
	ProfileID      string `json:"profile_id"`
	RecordAccepted bool   `json:"record_accepted"`
}

func (s *Server) handleFilter(c echo.Context) error {
	var req filterRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	history := req.History
	if req.ProfileID != "" {
		stored, err := s.app.Store.RecentComments(ctx, req.ProfileID, historyReplayLimit)
		if err != nil {
			slog.Warn("loading comment history failed", "profile_id", req.ProfileID, "error", err)
		} else {
			history = append(history, stored...)
		}
	}

	verdict := s.app.Policy.Evaluate(policy.Input{
		Candidates:      req.Candidates,
		History:         history,
		ContextKeywords: req.ContextKeywords,
		MaxSuggestions:  req.MaxSuggestions,
	})

	if req.ProfileID != "" && req.RecordAccepted {
		for _, comment := range verdict.Accepted {
			if err := s.app.Store.AddComment(ctx, req.ProfileID, comment); err != nil {
				slog.Warn("recording comment failed", "profile_id", req.ProfileID, "error", err)
			}
		}
	}

	return ok(c, verdict, map[string]any{
		"accepted_count": len(verdict.Accepted),
		"rejected_count": len(verdict.Rejected),
	})
}
