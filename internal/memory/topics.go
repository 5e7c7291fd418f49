package memory

import (
	"regexp"
	"sort"
	"strings"
)

// topicKeywords is matched as case-insensitive substrings of a post.
var topicKeywords = []string{
	"gpt", "gemini", "claude", "llm", "vision", "multimodal",
	"ai", "ia", "machine learning", "neural", "transformer",
	"chatbot", "agent", "automation",
}

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractTopics returns the distinct topic tokens of a post: its hashtags
// (lower-cased, without '#') and every vocabulary keyword it mentions.
// The result is sorted for stable output; order carries no meaning.
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})

	for _, m := range hashtagRe.FindAllStringSubmatch(lower, -1) {
		seen[m[1]] = struct{}{}
	}
	for _, kw := range topicKeywords {
		if strings.Contains(lower, kw) {
			seen[kw] = struct{}{}
		}
	}

	topics := make([]string, 0, len(seen))
	for t := range seen {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}
