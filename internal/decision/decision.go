// Package decision implements the agent's rule-based decision engine: when to
// run a generation cycle and which candidate articles deserve a post.
package decision

import (
	"fmt"
	"time"

	"github.com/easeaico/ai-post-agent/internal/memory"
)

const (
	// MaxWait is the age of the last generation after which a new cycle always runs.
	MaxWait = 24 * time.Hour
	// MinWait is the minimum age of the last generation before a new cycle may run.
	MinWait = 4 * time.Hour
	// DiversityThreshold is the topic diversity below which new content is needed.
	DiversityThreshold = 0.5
)

// ReasonCode identifies the rule behind a decision or a score contribution.
type ReasonCode string

const (
	ReasonFirstRun        ReasonCode = "first_run"
	ReasonWindowElapsed   ReasonCode = "window_elapsed"
	ReasonTooRecent       ReasonCode = "too_recent"
	ReasonLowDiversity    ReasonCode = "low_diversity"
	ReasonNormal          ReasonCode = "normal_conditions"
	ReasonNewArticle      ReasonCode = "new_article"
	ReasonSeenArticle     ReasonCode = "already_processed"
	ReasonFirstSource     ReasonCode = "first_source_use"
	ReasonRareSource      ReasonCode = "rarely_used_source"
	ReasonModerateSource  ReasonCode = "moderately_used_source"
	ReasonFrequentSource  ReasonCode = "frequently_used_source"
	ReasonLongDescription ReasonCode = "detailed_description"
	ReasonShortDesc       ReasonCode = "short_description"
	ReasonLongTitle       ReasonCode = "descriptive_title"
)

// Reason pairs a stable code with a human-readable message.
type Reason struct {
	Code    ReasonCode `json:"code"`
	Message string     `json:"message"`
}

func (r Reason) String() string {
	return r.Message
}

// Decision is the outcome of ShouldGenerateNow.
type Decision struct {
	Run    bool   `json:"should_generate_now"`
	Reason Reason `json:"reason"`
}

// ShouldGenerateNow applies the run rules in priority order; the first
// matching rule wins:
//  1. no previous generation: run
//  2. at least MaxWait since the last one: run
//  3. less than MinWait: wait
//  4. topic diversity below DiversityThreshold: run
//  5. otherwise wait for the next window
func ShouldGenerateNow(doc *memory.Document, now time.Time) Decision {
	if doc.LastGeneration == nil {
		return Decision{Run: true, Reason: Reason{ReasonFirstRun, "first run of the agent"}}
	}

	hours := now.Sub(doc.LastGeneration.Time).Hours()

	if hours >= MaxWait.Hours() {
		return Decision{Run: true, Reason: Reason{
			ReasonWindowElapsed,
			fmt.Sprintf("%.1f hours elapsed since the last generation", hours),
		}}
	}

	if hours < MinWait.Hours() {
		return Decision{Run: false, Reason: Reason{
			ReasonTooRecent,
			fmt.Sprintf("too recent (%.1f hours), wait at least %.0f hours", hours, MinWait.Hours()),
		}}
	}

	if diversity := doc.TopicDiversity(); diversity < DiversityThreshold {
		return Decision{Run: true, Reason: Reason{
			ReasonLowDiversity,
			fmt.Sprintf("low topic diversity (%.2f), new content needed", diversity),
		}}
	}

	return Decision{Run: false, Reason: Reason{
		ReasonNormal,
		fmt.Sprintf("normal conditions, next generation in %.1f hours", MaxWait.Hours()-hours),
	}}
}
