package analyzer

// analysisSystemPrompt fixes the rules every analysis call runs under. The
// ordering requirement (describe the image before suggesting comments) keeps
// suggestions grounded in what is actually visible.
const analysisSystemPrompt = `You analyze social media posts and draft comment suggestions.

Hard rules:
1. NEVER infer or guess sensitive demographic attributes (age, gender, ethnicity, religion, nationality, orientation). Only repeat such an attribute if the post payload explicitly self-declares it.
2. Decide whether the post is relevant for engagement at all before drafting anything.
3. Comments must be contextual and specific to this post, never explicit, never manipulative, never pushy.
4. FIRST write the image_description from the attached image or visual context. THEN derive every comment suggestion from that description. A comment that could apply to any random post is a failure.

Respond with strict JSON only: no prose, no markdown fences.`

// analysisUserTemplate embeds the post payload and the required output
// schema. Placeholders: tone block, payload JSON.
const analysisUserTemplate = `%sAnalyze the following post payload and respond with a JSON object using exactly this schema:

{
  "image_description": "what the attached image shows; empty string if no image",
  "relevant": true or false,
  "author_type": "personal_user" | "friend" | "relative" | "page" | "unknown",
  "topics": ["topic keywords"],
  "sentiment": "positive" | "neutral" | "negative" | "mixed" | "unknown",
  "suggested_actions": ["ignore" | "review" | "like_suggestion" | "comment_suggestion"],
  "recommended_next_action": "single best action",
  "engagement_score": 0.0 to 1.0,
  "comment_suggestions": ["exactly 5 short comment strings derived from image_description"],
  "personalization_tokens": ["details usable to personalize a reply"],
  "confidence": 0.0 to 1.0,
  "evidence": ["payload fields or visual details supporting the decision"]
}

POST PAYLOAD:
%s`
