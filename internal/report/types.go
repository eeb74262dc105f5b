// Package report assembles ranked, prioritized working-context reports by
// combining semantic search over notes, scope-resolved guidance
// instructions, and urgency-scored task lists.
//
// The package splits data gathering from presentation: Build* methods
// return typed structures, Render* functions turn them into markdown.
// Ranking logic is therefore testable without string-matching assertions.
package report

import (
	"errors"
	"time"

	"github.com/dmreyes/minder/internal/guidance"
	"github.com/dmreyes/minder/internal/semantic"
	"github.com/dmreyes/minder/internal/store"
	"github.com/dmreyes/minder/internal/urgency"
)

// ErrInvalid indicates malformed report input, e.g. a missing topic.
// Like store.ErrNotFound it aborts the whole report; every other failure
// degrades the affected section instead.
var ErrInvalid = errors.New("invalid request")

// Level controls how much detail each report section includes.
type Level string

const (
	LevelBasic         Level = "basic" // no content previews
	LevelStandard      Level = "standard"
	LevelComprehensive Level = "comprehensive"
)

// ParseLevel maps a string to a Level, defaulting to standard.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelBasic, LevelStandard, LevelComprehensive:
		return Level(s)
	default:
		return LevelStandard
	}
}

// ─── Requests ────────────────────────────────────────────────────────────────

// ProjectContextRequest asks for a project's working context.
type ProjectContextRequest struct {
	Project          string
	Level            Level
	IncludeCompleted bool
	MaxItems         int
}

// TaskContextRequest asks for a task's working context.
type TaskContextRequest struct {
	TaskID         string
	Level          Level
	IncludeRelated bool
	SemanticSearch bool
}

// MemoryContextRequest asks for notes related to a topic.
type MemoryContextRequest struct {
	Topic         string
	Category      string
	Project       string
	MinPriority   int
	Limit         int
	MinSimilarity float64
}

// WorkPrioritiesRequest asks for an urgency-ranked listing of open tasks.
type WorkPrioritiesRequest struct {
	Horizon     string // store.HorizonToday | Week | Month | All
	Category    string
	Project     string
	MinPriority int
	Limit       int
}

// ─── Results ─────────────────────────────────────────────────────────────────

// ProjectStats summarizes a project context snapshot. Counts are computed
// from the same fetch as the listed items, so they never disagree with
// what the report shows.
type ProjectStats struct {
	NoteCount    int
	TaskCount    int
	OverdueCount int
}

// ProjectContext is the gathered context for one project.
type ProjectContext struct {
	Project      store.Project
	Instructions []guidance.Instruction
	Notes        []store.Note
	Tasks        []store.Task
	Stats        ProjectStats
}

// TaskContext is the gathered context for one task.
type TaskContext struct {
	Task         store.Task
	Instructions []guidance.Instruction
	Related      []store.Task
	RelatedNotes []semantic.Result
}

// MatchSource records which retrieval path produced a memory context.
// The two paths are mutually exclusive per request: keyword runs only
// when semantic yields nothing.
type MatchSource string

const (
	SourceSemantic MatchSource = "semantic"
	SourceKeyword  MatchSource = "keyword"
	SourceNone     MatchSource = "none"
)

// MemoryContext is the gathered result of a topic search.
type MemoryContext struct {
	Topic    string
	Source   MatchSource
	Semantic []semantic.Result
	Keyword  []store.Note
}

// ScoredTask pairs a task with its urgency at snapshot time.
type ScoredTask struct {
	Task  store.Task
	Score float64
	Level urgency.Level
}

// WorkSummary holds the counts for the work-priority summary line,
// computed from the same snapshot as the buckets.
type WorkSummary struct {
	Total       int
	Overdue     int
	DueToday    int
	DueThisWeek int
}

// WorkPriorities is an urgency-bucketed task listing.
type WorkPriorities struct {
	Horizon     string
	Buckets     map[urgency.Level][]ScoredTask
	Summary     WorkSummary
	GeneratedAt time.Time
}
