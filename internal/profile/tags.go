// Package profile syncs analysis outcomes onto stored profile tags. The sync
// is best-effort by contract: every failure is logged and swallowed so tag
// bookkeeping can never break the calling pipeline.
package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pulsecraft/pulsecraft/internal/db"
)

// Tag vocabulary. Tags outside this fixed set are never written.
const (
	TagPersonalUser   = "personal_user"
	TagFriend         = "friend"
	TagFemaleFriend   = "female_friend"
	TagMaleFriend     = "male_friend"
	TagRelative       = "relative"
	TagPage           = "page"
	TagExcluded       = "excluded"
	TagAutomaticReply = "automatic_reply"
)

const defaultMinConfidence = 0.6

// Assessment is the analysis outcome consumed by the tag sync.
type Assessment struct {
	ProfileID  string
	AuthorType string
	Relevant   bool
	Confidence float64
	CanMessage bool

	// DeclaredGender is only set when the profile self-declared it; it is
	// never inferred.
	DeclaredGender string
}

// Syncer writes tags for assessed profiles.
type Syncer struct {
	store         *db.Store
	minConfidence float64
}

// Config holds configuration for the syncer.
type Config struct {
	Store *db.Store

	// MinConfidence below which a profile is excluded (default 0.6).
	MinConfidence float64
}

// New creates a new Syncer.
func New(cfg Config) *Syncer {
	min := cfg.MinConfidence
	if min == 0 {
		min = defaultMinConfidence
	}
	return &Syncer{store: cfg.Store, minConfidence: min}
}

// SyncTags computes and persists the tag set for an assessment. It never
// returns an error; persistence failures are logged and swallowed.
func (s *Syncer) SyncTags(ctx context.Context, a Assessment) {
	if a.ProfileID == "" {
		slog.Debug("tag sync skipped, no profile id")
		return
	}

	tags := tagsFor(a, s.minConfidence)
	if err := s.store.ReplaceProfileTags(ctx, a.ProfileID, tags); err != nil {
		slog.Warn("profile tag sync failed",
			"profile_id", a.ProfileID,
			"error", err,
		)
		return
	}

	slog.Debug("profile tags synced", "profile_id", a.ProfileID, "tags", tags)
}

// tagsFor maps an assessment onto the fixed tag vocabulary.
func tagsFor(a Assessment, minConfidence float64) []string {
	var tags []string

	switch strings.ToLower(a.AuthorType) {
	case "personal_user":
		tags = append(tags, TagPersonalUser)
	case "friend":
		tags = append(tags, TagFriend)
		switch strings.ToLower(a.DeclaredGender) {
		case "female":
			tags = append(tags, TagFemaleFriend)
		case "male":
			tags = append(tags, TagMaleFriend)
		}
	case "relative":
		tags = append(tags, TagRelative)
	case "page":
		tags = append(tags, TagPage)
	}

	if !a.Relevant || a.Confidence < minConfidence {
		tags = append(tags, TagExcluded)
		return tags
	}

	if a.CanMessage {
		tags = append(tags, TagAutomaticReply)
	}

	return tags
}
