package tone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForChannel(t *testing.T) {
	assert.Equal(t, "Feed post", ForChannel("post").Label)
	assert.Equal(t, "Story reply", ForChannel("story").Label)
	assert.Equal(t, "Direct message", ForChannel("dm").Label)
}

func TestForChannel_NormalizesKey(t *testing.T) {
	assert.Equal(t, "Story reply", ForChannel(" STORY ").Label)
}

func TestForChannel_UnknownFallsBackToPost(t *testing.T) {
	assert.Equal(t, "Feed post", ForChannel("reel").Label)
	assert.Equal(t, "Feed post", ForChannel("").Label)
}

func TestProfiles_HaveRules(t *testing.T) {
	for _, key := range []string{"post", "story", "dm"} {
		p := ForChannel(key)
		assert.NotEmpty(t, p.Guidance, key)
		assert.NotEmpty(t, p.WritingRules, key)
	}
}
