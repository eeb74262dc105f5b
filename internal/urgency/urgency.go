// Package urgency converts task priority and due-date proximity into a
// bounded 0–10 score used to rank and bucket outstanding work.
//
// Scores are derived values: they depend on the current wall clock and are
// recomputed on every request, never stored.
package urgency

import (
	"math"
	"time"
)

// Level buckets a score for the work-priority report. The ranges are strict
// half-open intervals so every task lands in exactly one bucket.
type Level string

const (
	Urgent Level = "urgent" // score >= 8
	High   Level = "high"   // 6 <= score < 8
	Medium Level = "medium" // 4 <= score < 6
	Low    Level = "low"    // score < 4
)

// Levels lists the buckets in display order, most urgent first.
var Levels = []Level{Urgent, High, Medium, Low}

// Input is the slice of a task the scorer looks at.
type Input struct {
	Priority   int // 1..5
	DueDate    *time.Time
	InProgress bool
}

// Scorer computes urgency scores. The day cutoffs for the due-date bonus
// are hand-tuned defaults carried over from long use; override them only
// if you have a reason to.
type Scorer struct {
	SoonDays int // "due within N days" bonus window, default 3
	WeekDays int // "due this week" bonus window, default 7
}

// NewScorer returns a Scorer with the default cutoffs.
func NewScorer() Scorer {
	return Scorer{SoonDays: 3, WeekDays: 7}
}

// Score returns the urgency of a task at the given instant, in [0,10].
//
// Base score is priority×2 (2–10 for priority 1–5), plus a due-date bonus:
// +5 overdue, +4 due today, +3 due tomorrow, +2 within SoonDays, +1 within
// WeekDays. Tasks in progress get +1. The total is clamped to 10.
func (s Scorer) Score(in Input, now time.Time) float64 {
	score := float64(in.Priority) * 2

	if in.DueDate != nil {
		switch days := DaysUntilDue(*in.DueDate, now); {
		case days < 0:
			score += 5
		case days == 0:
			score += 4
		case days == 1:
			score += 3
		case days <= s.SoonDays:
			score += 2
		case days <= s.WeekDays:
			score += 1
		}
	}

	if in.InProgress {
		score++
	}

	if score > 10 {
		score = 10
	}
	return score
}

// Bucket assigns a score to its urgency level.
func Bucket(score float64) Level {
	switch {
	case score >= 8:
		return Urgent
	case score >= 6:
		return High
	case score >= 4:
		return Medium
	default:
		return Low
	}
}

// DaysUntilDue returns the number of whole days until the due date, rounded
// up: negative when overdue, 0 when due today, 1 when due tomorrow.
func DaysUntilDue(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}
