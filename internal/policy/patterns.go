package policy

import "regexp"

// blockedTerms are matched as case-insensitive substrings. A comment
// containing any of them is rejected outright.
var blockedTerms = []string{
	// Self-harm
	"kill yourself", "suicide", "self-harm", "self harm",

	// Hate speech related
	"nazi", "white supremac", "racist", "hate crime", "slur",

	// Violence
	"terrorist", "massacre", "shoot up",

	// Explicit content
	"nsfw", "porn", "nude", "onlyfans", "sexy", "sexting",

	// Manipulation / spam tells
	"follow me", "follow back", "check my profile", "dm me", "click the link",
	"buy now", "free followers",
}

// sensitivePatterns match comments that assert a demographic attribute about
// the recipient. These attributes must never be inferred, only echoed when
// self-declared, so any claim of them in a generated comment is rejected.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\byou\s+(?:look|are|seem|must\s+be|sound)\s+(?:male|female|a\s+man|a\s+woman|a\s+girl|a\s+boy|a\s+guy|young|old|gay|straight|trans)\b`),
	regexp.MustCompile(`(?i)\byou(?:'re| are)\s+in\s+your\s+(?:teens|[1-9]0'?s)\b`),
	regexp.MustCompile(`(?i)\bhow\s+old\s+are\s+you\b`),
	regexp.MustCompile(`(?i)\byour\s+(?:age|gender|race|ethnicity|religion|nationality)\b`),
	regexp.MustCompile(`(?i)\b(?:gender|ethnicity|religion|nationality)\b`),
	regexp.MustCompile(`(?i)\byou\s+(?:look|are|seem)\s+(?:christian|muslim|jewish|hindu|buddhist|asian|black|white|latina|latino|european|african|american)\b`),
}

// genericPatterns match low-information stock phrases and AI-tell wording
// that would expose the comment as machine written.
var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:great|nice|awesome|amazing|cool|good)\s+(?:content|post|pic|picture|photo|shot|video|feed)\b`),
	regexp.MustCompile(`(?i)\bkeep\s+(?:it\s+up|posting|going)\b`),
	regexp.MustCompile(`(?i)\bthanks\s+for\s+sharing\b`),
	regexp.MustCompile(`(?i)^(?:love\s+(?:it|this)|so\s+true|well\s+said|nice|wow|amazing)[!. ]*$`),
	regexp.MustCompile(`(?i)\bfirst\b[!. ]*$`),

	// AI tells
	regexp.MustCompile(`(?i)\bvideo\s+analysis\s+is\b`),
	regexp.MustCompile(`(?i)\bimage\s+analysis\b`),
	regexp.MustCompile(`(?i)\bas\s+an\s+ai\b`),
	regexp.MustCompile(`(?i)\bbased\s+on\s+the\s+(?:image|photo|description)\s+provided\b`),
}
