package vision

import (
	"fmt"
	"strings"
)

// summaryPromptTemplate demands strict JSON so the reply survives the
// extractor. Placeholders: media type, optional hint block.
const summaryPromptTemplate = `You are analyzing %s frames from a social media post.

Respond with STRICT JSON only. No prose, no markdown fences. The JSON object must have exactly these four keys:
{
  "summary": "one or two sentences describing what the frames show",
  "topics": ["short topic keywords"],
  "objects": ["concrete objects visible in the frames"],
  "visual_cues": ["mood, setting, lighting, or style cues"]
}

Keep every keyword short and lowercase. Only describe what is actually visible.%s`

const transcriptHintChars = 140

const maxTopicHints = 8

// buildPrompt assembles the vision instruction with transcript and
// candidate-topic hints.
func buildPrompt(mediaType, transcript string, candidateTopics []string) string {
	if mediaType == "" {
		mediaType = "image"
	}

	var hints strings.Builder

	if transcript = strings.TrimSpace(transcript); transcript != "" {
		if len([]rune(transcript)) > transcriptHintChars {
			transcript = string([]rune(transcript)[:transcriptHintChars])
		}
		fmt.Fprintf(&hints, "\n\nAudio transcript hint: %q", transcript)
	}

	if len(candidateTopics) > 0 {
		fmt.Fprintf(&hints, "\n\nCandidate topics to confirm or reject: %s",
			strings.Join(candidateTopics, ", "))
	}

	return fmt.Sprintf(summaryPromptTemplate, mediaType, hints.String())
}
