package usage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecraft/pulsecraft/internal/db"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	rec := NewRecorder(store)

	rec.TrackSuccess(ctx, Record{
		Provider:  "ollama",
		Operation: "chat_with_images",
		Category:  "vision_summary",
		Model:     "llava",
		StartedAt: time.Now().Add(-100 * time.Millisecond),
	})
	rec.TrackFailure(ctx, Record{
		Provider:  "ollama",
		Operation: "chat",
	}, errors.New("boom"))

	ok, err := store.CountUsageRecords(ctx, "success")
	require.NoError(t, err)
	assert.Equal(t, 1, ok)

	failed, err := store.CountUsageRecords(ctx, "failure")
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
}

func TestRecorder_SwallowsStoreErrors(t *testing.T) {
	ctx := context.Background()
	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	rec := NewRecorder(store)
	store.Close()

	// Must not panic or surface the closed-store error
	rec.TrackSuccess(ctx, Record{Provider: "ollama", Operation: "chat"})
	rec.TrackFailure(ctx, Record{Provider: "ollama", Operation: "chat"}, errors.New("boom"))
}
