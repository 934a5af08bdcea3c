// Package usage records model-call telemetry. Tracking is fire-and-forget:
// recorder failures are logged and swallowed so they can never affect the
// calling operation's result.
package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulsecraft/pulsecraft/internal/db"
)

// Record describes one model call for telemetry purposes.
type Record struct {
	RequestID        string
	Provider         string
	Operation        string
	Category         string
	Model            string
	StartedAt        time.Time
	PromptTokens     int
	CompletionTokens int
}

// Tracker records model-call outcomes.
type Tracker interface {
	TrackSuccess(ctx context.Context, rec Record)
	TrackFailure(ctx context.Context, rec Record, callErr error)
}

// Recorder persists usage records to the store.
type Recorder struct {
	store *db.Store
}

// NewRecorder creates a store-backed tracker.
func NewRecorder(store *db.Store) *Recorder {
	return &Recorder{store: store}
}

// TrackSuccess records a successful call.
func (r *Recorder) TrackSuccess(ctx context.Context, rec Record) {
	r.insert(ctx, rec, "success", "")
}

// TrackFailure records a failed call.
func (r *Recorder) TrackFailure(ctx context.Context, rec Record, callErr error) {
	errText := ""
	if callErr != nil {
		errText = callErr.Error()
	}
	r.insert(ctx, rec, "failure", errText)
}

func (r *Recorder) insert(ctx context.Context, rec Record, status, errText string) {
	var duration time.Duration
	if !rec.StartedAt.IsZero() {
		duration = time.Since(rec.StartedAt)
	}

	err := r.store.InsertUsageRecord(ctx, db.UsageRecord{
		RequestID:        rec.RequestID,
		Provider:         rec.Provider,
		Operation:        rec.Operation,
		Category:         rec.Category,
		Model:            rec.Model,
		Status:           status,
		PromptTokens:     rec.PromptTokens,
		CompletionTokens: rec.CompletionTokens,
		Duration:         duration,
		Error:            errText,
	})
	if err != nil {
		slog.Warn("usage tracking failed",
			"provider", rec.Provider,
			"operation", rec.Operation,
			"error", err,
		)
	}
}

// Nop is a Tracker that discards all records.
type Nop struct{}

// TrackSuccess implements Tracker.
func (Nop) TrackSuccess(context.Context, Record) {}

// TrackFailure implements Tracker.
func (Nop) TrackFailure(context.Context, Record, error) {}
