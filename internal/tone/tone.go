// Package tone holds the per-channel voice guidance applied to generated
// comments. Profiles are built once and never mutated, so concurrent reads
// need no synchronization.
package tone

import "strings"

// Profile is the style guidance for one channel.
type Profile struct {
	Label        string
	Guidance     string
	WritingRules []string
}

// DefaultChannel is used for any unrecognized channel key.
const DefaultChannel = "post"

var profiles = map[string]Profile{
	"post": {
		Label:    "Feed post",
		Guidance: "Warm and conversational. React to what is actually visible in the post, like a friend leaving a quick note.",
		WritingRules: []string{
			"Keep it under two short sentences.",
			"Reference a concrete detail from the post or image.",
			"No emojis unless the post itself is playful.",
			"Never ask for a follow, like, or reply.",
		},
	},
	"story": {
		Label:    "Story reply",
		Guidance: "Casual and in-the-moment. Stories disappear, so the reply should feel spontaneous rather than composed.",
		WritingRules: []string{
			"One short sentence or fragment.",
			"React to the moment, not the person's profile.",
			"A single fitting emoji is fine.",
		},
	},
	"dm": {
		Label:    "Direct message",
		Guidance: "Respectful and low-pressure. A DM lands in a private space, so err on the side of restraint.",
		WritingRules: []string{
			"Open with context for why you are messaging.",
			"No compliments about appearance.",
			"Make it easy to not reply.",
		},
	},
}

// ForChannel returns the profile for a channel key. Unknown keys fall back
// to the post profile.
func ForChannel(key string) Profile {
	key = strings.ToLower(strings.TrimSpace(key))
	if p, ok := profiles[key]; ok {
		return p
	}
	return profiles[DefaultChannel]
}
