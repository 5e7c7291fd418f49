package decision

import (
	"fmt"
	"slices"

	"github.com/easeaico/ai-post-agent/internal/article"
	"github.com/easeaico/ai-post-agent/internal/memory"
)

// DefaultMaxArticles is the number of articles SelectBestArticles keeps by default.
const DefaultMaxArticles = 3

// Score weights. The best-case weights add up to MaxScore.
const (
	novelWeight          = 40
	seenWeight           = 5
	rareSourceWeight     = 30
	moderateSourceWeight = 15
	frequentSourceWeight = 5
	longDescWeight       = 15
	shortDescWeight      = 8
	longTitleWeight      = 15

	MaxScore = novelWeight + rareSourceWeight + longDescWeight + longTitleWeight

	longDescLen  = 100
	longTitleLen = 30
)

// Score is the relevance of one candidate article.
type Score struct {
	Value   float64  `json:"score"`
	Reasons []Reason `json:"reasons"`
}

// ScoredArticle is a candidate together with its score.
type ScoredArticle struct {
	Article article.Article `json:"article"`
	Score   Score           `json:"score"`
}

// ScoreArticle rates a candidate article between 0 and MaxScore using
// novelty, source balance, description length and title length. Missing
// fields simply contribute nothing.
func ScoreArticle(a article.Article, doc *memory.Document) Score {
	var s Score
	add := func(points float64, code ReasonCode, msg string) {
		s.Value += points
		s.Reasons = append(s.Reasons, Reason{Code: code, Message: msg})
	}

	if !doc.WasProcessed(a.URL) {
		add(novelWeight, ReasonNewArticle, "new article (never processed)")
	} else {
		add(seenWeight, ReasonSeenArticle, "article already processed before")
	}

	sourceCount := doc.SourcesUsed[a.Source]
	total := doc.TotalSourceUses()
	if total == 0 {
		add(rareSourceWeight, ReasonFirstSource, "first use of this source")
	} else {
		ratio := float64(sourceCount) / float64(total)
		switch {
		case ratio < 0.3:
			add(rareSourceWeight, ReasonRareSource,
				fmt.Sprintf("rarely used source (%d uses, %.0f%%)", sourceCount, ratio*100))
		case ratio < 0.5:
			add(moderateSourceWeight, ReasonModerateSource,
				fmt.Sprintf("moderately used source (%d uses)", sourceCount))
		default:
			add(frequentSourceWeight, ReasonFrequentSource,
				fmt.Sprintf("frequently used source (%d uses, %.0f%%)", sourceCount, ratio*100))
		}
	}

	switch n := len([]rune(a.Description)); {
	case n > longDescLen:
		add(longDescWeight, ReasonLongDescription, "detailed description available")
	case n > 0:
		add(shortDescWeight, ReasonShortDesc, "short description")
	}

	if len([]rune(a.Title)) > longTitleLen {
		add(longTitleWeight, ReasonLongTitle, "descriptive title")
	}

	return s
}

// RankArticles scores every candidate and returns them ordered by score,
// highest first. Candidates with equal scores keep their input order.
func RankArticles(articles []article.Article, doc *memory.Document) []ScoredArticle {
	ranked := make([]ScoredArticle, len(articles))
	for i, a := range articles {
		ranked[i] = ScoredArticle{Article: a, Score: ScoreArticle(a, doc)}
	}
	slices.SortStableFunc(ranked, func(x, y ScoredArticle) int {
		switch {
		case x.Score.Value > y.Score.Value:
			return -1
		case x.Score.Value < y.Score.Value:
			return 1
		}
		return 0
	})
	return ranked
}

// SelectBestArticles returns at most maxCount of the highest scoring
// articles. A non-positive maxCount means DefaultMaxArticles.
func SelectBestArticles(articles []article.Article, doc *memory.Document, maxCount int) []article.Article {
	if maxCount <= 0 {
		maxCount = DefaultMaxArticles
	}
	ranked := RankArticles(articles, doc)
	if len(ranked) > maxCount {
		ranked = ranked[:maxCount]
	}

	selected := make([]article.Article, len(ranked))
	for i, r := range ranked {
		selected[i] = r.Article
	}
	return selected
}
