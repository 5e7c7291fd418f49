// Package learning derives performance statistics and adaptive generation
// parameters from the agent memory and the persisted posts.
package learning

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/memory"
)

const (
	imbalanceFactor   = 3
	minTopicVariety   = 5
	lowDiversityLimit = 0.5
	technicalShare    = 0.6
	topTopicCount     = 3
)

// Default generation parameters.
const (
	DefaultTone           = "professional-but-accessible"
	TechnicalTone         = "more technical and detailed"
	DefaultEmojiLevel     = "subtle(1-2)"
	DefaultHashtagCount   = "3-4"
	DefaultParagraphCount = "2-3"
	ShortParagraphCount   = "1 impactful paragraph"
	LongParagraphCount    = "4-5 detailed paragraphs"
)

var technicalTopics = map[string]bool{
	"llm":              true,
	"transformer":      true,
	"neural":           true,
	"machine learning": true,
}

// RecommendationCode identifies a recommendation rule.
type RecommendationCode string

const (
	RecSourceImbalance RecommendationCode = "source_imbalance"
	RecLowTopicVariety RecommendationCode = "low_topic_variety"
	RecLowDiversity    RecommendationCode = "low_diversity"
)

// Recommendation is a suggestion derived from the historical statistics.
type Recommendation struct {
	Code    RecommendationCode `json:"code"`
	Message string             `json:"message"`
}

// Report summarizes the agent's past output.
type Report struct {
	TotalPostsGenerated int              `json:"total_posts_generated"`
	SourcesBalance      map[string]int   `json:"sources_balance"`
	TopicCoverage       map[string]int   `json:"topic_coverage"`
	Recommendations     []Recommendation `json:"recommendations"`
}

// Params are the style knobs handed to the post generator.
type Params struct {
	Tone           string `json:"tone"`
	EmojiLevel     string `json:"emoji_level"`
	HashtagCount   string `json:"hashtag_count"`
	ParagraphCount string `json:"paragraph_count"`
}

// DefaultParams returns the parameters used before any adaptation.
func DefaultParams() Params {
	return Params{
		Tone:           DefaultTone,
		EmojiLevel:     DefaultEmojiLevel,
		HashtagCount:   DefaultHashtagCount,
		ParagraphCount: DefaultParagraphCount,
	}
}

// AnalyzePerformance builds a report from the memory document and the full
// posts collection. Every applicable recommendation is included.
func AnalyzePerformance(doc *memory.Document, posts []article.Post) Report {
	r := Report{
		TotalPostsGenerated: len(posts),
		SourcesBalance:      article.SourceCounts(posts),
		TopicCoverage:       maps.Clone(doc.TopicsCovered),
		Recommendations:     []Recommendation{},
	}
	if r.TopicCoverage == nil {
		r.TopicCoverage = map[string]int{}
	}

	if len(r.SourcesBalance) > 0 {
		counts := slices.Collect(maps.Values(r.SourcesBalance))
		if slices.Max(counts) > imbalanceFactor*slices.Min(counts) {
			r.Recommendations = append(r.Recommendations, Recommendation{
				Code:    RecSourceImbalance,
				Message: fmt.Sprintf("source imbalance: some sources have %dx more posts than others", imbalanceFactor),
			})
		}
	}

	if len(r.TopicCoverage) < minTopicVariety {
		r.Recommendations = append(r.Recommendations, Recommendation{
			Code:    RecLowTopicVariety,
			Message: "low topic variety, consider more varied sources",
		})
	}

	if diversity := doc.TopicDiversity(); diversity < lowDiversityLimit {
		r.Recommendations = append(r.Recommendations, Recommendation{
			Code:    RecLowDiversity,
			Message: fmt.Sprintf("low topic diversity (%.0f%%), look for new subjects", diversity*100),
		})
	}

	return r
}

// TopicCount is a topic with its number of occurrences.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// TopTopics returns the n most frequent topics. Ties are ordered by topic
// name so the result does not depend on map iteration.
func TopTopics(topics map[string]int, n int) []TopicCount {
	all := make([]TopicCount, 0, len(topics))
	for topic, count := range topics {
		all = append(all, TopicCount{Topic: topic, Count: count})
	}
	slices.SortFunc(all, func(a, b TopicCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Topic, b.Topic)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// AdaptiveParams adjusts the default parameters to the memory: a technical
// tone when technical topics dominate the top three, and a paragraph count
// that rotates with the number of generations.
func AdaptiveParams(doc *memory.Document) Params {
	p := DefaultParams()

	if top := TopTopics(doc.TopicsCovered, topTopicCount); len(top) > 0 {
		var total, technical int
		for _, tc := range top {
			total += tc.Count
			if technicalTopics[tc.Topic] {
				technical += tc.Count
			}
		}
		if total > 0 && float64(technical) > technicalShare*float64(total) {
			p.Tone = TechnicalTone
		}
	}

	switch doc.TotalGenerations % 3 {
	case 0:
		p.ParagraphCount = ShortParagraphCount
	case 1:
		p.ParagraphCount = LongParagraphCount
	}

	return p
}
