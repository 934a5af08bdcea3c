package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := newTestStore(t)

	// Running migrations again must be a no-op
	assert.NoError(t, store.Migrate(context.Background()))
}

func TestUsageRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.InsertUsageRecord(ctx, UsageRecord{
		RequestID:        "req-1",
		Provider:         "ollama",
		Operation:        "chat",
		Category:         "post_analysis",
		Model:            "llama3.2",
		Status:           "success",
		PromptTokens:     10,
		CompletionTokens: 20,
		Duration:         150 * time.Millisecond,
	})
	require.NoError(t, err)

	err = store.InsertUsageRecord(ctx, UsageRecord{
		Provider:  "ollama",
		Operation: "chat",
		Status:    "failure",
		Error:     "connection refused",
	})
	require.NoError(t, err)

	ok, err := store.CountUsageRecords(ctx, "success")
	require.NoError(t, err)
	assert.Equal(t, 1, ok)

	failed, err := store.CountUsageRecords(ctx, "failure")
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
}

func TestProfileTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceProfileTags(ctx, "p1", []string{"friend", "automatic_reply"}))

	tags, err := store.ProfileTags(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"automatic_reply", "friend"}, tags)

	// Replace drops the old set
	require.NoError(t, store.ReplaceProfileTags(ctx, "p1", []string{"excluded"}))

	tags, err = store.ProfileTags(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"excluded"}, tags)

	// Unknown profile has no tags
	tags, err = store.ProfileTags(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCommentHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddComment(ctx, "p1", "first"))
	require.NoError(t, store.AddComment(ctx, "p1", "second"))
	require.NoError(t, store.AddComment(ctx, "p2", "other profile"))

	comments, err := store.RecentComments(ctx, "p1", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, comments)

	comments, err = store.RecentComments(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, comments)
}
