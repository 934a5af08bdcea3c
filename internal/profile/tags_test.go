package profile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecraft/pulsecraft/internal/db"
)

func TestTagsFor(t *testing.T) {
	tests := []struct {
		name string
		a    Assessment
		want []string
	}{
		{
			name: "relevant friend ready for auto reply",
			a:    Assessment{AuthorType: "friend", Relevant: true, Confidence: 0.9, CanMessage: true},
			want: []string{TagFriend, TagAutomaticReply},
		},
		{
			name: "friend with self-declared gender",
			a:    Assessment{AuthorType: "friend", DeclaredGender: "female", Relevant: true, Confidence: 0.9},
			want: []string{TagFriend, TagFemaleFriend},
		},
		{
			name: "male friend cannot message",
			a:    Assessment{AuthorType: "friend", DeclaredGender: "male", Relevant: true, Confidence: 0.8, CanMessage: false},
			want: []string{TagFriend, TagMaleFriend},
		},
		{
			name: "irrelevant profile excluded",
			a:    Assessment{AuthorType: "personal_user", Relevant: false, Confidence: 0.9, CanMessage: true},
			want: []string{TagPersonalUser, TagExcluded},
		},
		{
			name: "low confidence excluded even when relevant",
			a:    Assessment{AuthorType: "relative", Relevant: true, Confidence: 0.3, CanMessage: true},
			want: []string{TagRelative, TagExcluded},
		},
		{
			name: "page",
			a:    Assessment{AuthorType: "page", Relevant: true, Confidence: 0.9},
			want: []string{TagPage},
		},
		{
			name: "unknown author type gets no base tag",
			a:    Assessment{AuthorType: "unknown", Relevant: true, Confidence: 0.9, CanMessage: true},
			want: []string{TagAutomaticReply},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tagsFor(tt.a, defaultMinConfidence))
		})
	}
}

func TestSyncTags_Persists(t *testing.T) {
	ctx := context.Background()
	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	s := New(Config{Store: store})

	s.SyncTags(ctx, Assessment{
		ProfileID:  "p1",
		AuthorType: "friend",
		Relevant:   true,
		Confidence: 0.9,
		CanMessage: true,
	})

	tags, err := store.ProfileTags(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{TagAutomaticReply, TagFriend}, tags)
}

func TestSyncTags_SwallowsErrors(t *testing.T) {
	ctx := context.Background()
	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	s := New(Config{Store: store})
	store.Close()

	// Must not panic or return anything even though the store is gone
	s.SyncTags(ctx, Assessment{ProfileID: "p1", AuthorType: "friend", Relevant: true, Confidence: 0.9})

	// Missing profile id is a quiet no-op
	s.SyncTags(ctx, Assessment{AuthorType: "friend"})
}
