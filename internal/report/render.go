package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmreyes/minder/internal/guidance"
	"github.com/dmreyes/minder/internal/semantic"
	"github.com/dmreyes/minder/internal/store"
	"github.com/dmreyes/minder/internal/urgency"
)

// previewLen is how much note content the standard detail level shows.
const previewLen = 200

// RenderProjectContext renders a gathered project context as markdown.
// Empty sections are omitted except statistics, which always appear so a
// reader can tell "no notes" apart from "notes not gathered".
func RenderProjectContext(pc *ProjectContext, level Level) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Project Context: %s\n\n", pc.Project.Name)
	if pc.Project.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", pc.Project.Description)
	}

	renderInstructions(&b, pc.Instructions)

	if len(pc.Notes) > 0 {
		fmt.Fprintf(&b, "## Recent Notes (%d)\n\n", len(pc.Notes))
		for _, n := range pc.Notes {
			renderNoteLine(&b, n, level)
		}
		b.WriteString("\n")
	}

	if len(pc.Tasks) > 0 {
		fmt.Fprintf(&b, "## Tasks (%d)\n\n", len(pc.Tasks))
		for _, t := range pc.Tasks {
			renderTaskLine(&b, t)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(&b, "- Notes: %d\n", pc.Stats.NoteCount)
	fmt.Fprintf(&b, "- Tasks: %d\n", pc.Stats.TaskCount)
	fmt.Fprintf(&b, "- Overdue: %d\n", pc.Stats.OverdueCount)

	return b.String()
}

// RenderTaskContext renders a gathered task context as markdown.
func RenderTaskContext(tc *TaskContext, level Level) string {
	var b strings.Builder

	t := tc.Task
	fmt.Fprintf(&b, "# Task: %s\n\n", t.Title)
	fmt.Fprintf(&b, "**Status:** %s\n", t.Status)
	fmt.Fprintf(&b, "**Priority:** %d/5\n", t.Priority)
	if t.Project != "" {
		fmt.Fprintf(&b, "**Project:** %s\n", t.Project)
	}
	if t.Category != "" {
		fmt.Fprintf(&b, "**Category:** %s\n", t.Category)
	}
	if t.DueDate != nil {
		fmt.Fprintf(&b, "**Due:** %s\n", t.DueDate.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Description)
	}

	renderInstructions(&b, tc.Instructions)

	if len(tc.Related) > 0 {
		fmt.Fprintf(&b, "## Other Tasks in %s (%d)\n\n", t.Project, len(tc.Related))
		for _, sib := range tc.Related {
			renderTaskLine(&b, sib)
		}
		b.WriteString("\n")
	}

	if len(tc.RelatedNotes) > 0 {
		fmt.Fprintf(&b, "## Related Notes (%d)\n\n", len(tc.RelatedNotes))
		for _, r := range tc.RelatedNotes {
			renderMatchLine(&b, r, level)
		}
	}

	return b.String()
}

// RenderMemoryContext renders the topic search result, naming which
// retrieval path produced the matches.
func RenderMemoryContext(mc *MemoryContext, level Level) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Memory Context: %q\n\n", mc.Topic)

	switch mc.Source {
	case SourceSemantic:
		fmt.Fprintf(&b, "Found %d semantically related note(s):\n\n", len(mc.Semantic))
		for _, r := range mc.Semantic {
			renderMatchLine(&b, r, level)
		}
	case SourceKeyword:
		fmt.Fprintf(&b, "Found %d note(s) by keyword match:\n\n", len(mc.Keyword))
		for _, n := range mc.Keyword {
			renderNoteLine(&b, n, level)
		}
	default:
		b.WriteString("No related notes found.\n")
	}

	return b.String()
}

// RenderWorkPriorities renders scored tasks grouped by urgency, most
// urgent bucket first, with the snapshot summary at the end.
func RenderWorkPriorities(wp *WorkPriorities) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Work Priorities (%s)\n\n", wp.Horizon)

	if wp.Summary.Total == 0 {
		b.WriteString("No matching tasks. Enjoy the calm.\n")
		return b.String()
	}

	for _, level := range urgency.Levels {
		bucket, ok := wp.Buckets[level]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s (%d)\n\n", levelHeading(level), len(bucket))
		for _, st := range bucket {
			fmt.Fprintf(&b, "- [%.0f] %s", st.Score, st.Task.Title)
			if st.Task.Project != "" {
				fmt.Fprintf(&b, " (%s)", st.Task.Project)
			}
			if st.Task.DueDate != nil {
				fmt.Fprintf(&b, " — due %s", st.Task.DueDate.Format("2006-01-02"))
			}
			if st.Task.Status == store.StatusInProgress {
				b.WriteString(" [in progress]")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Total: %d\n", wp.Summary.Total)
	fmt.Fprintf(&b, "- Overdue: %d\n", wp.Summary.Overdue)
	fmt.Fprintf(&b, "- Due today: %d\n", wp.Summary.DueToday)
	fmt.Fprintf(&b, "- Due this week: %d\n", wp.Summary.DueThisWeek)
	fmt.Fprintf(&b, "\n_Generated %s_\n", wp.GeneratedAt.UTC().Format(time.RFC3339))

	return b.String()
}

func levelHeading(l urgency.Level) string {
	switch l {
	case urgency.Urgent:
		return "🔥 Urgent"
	case urgency.High:
		return "High"
	case urgency.Medium:
		return "Medium"
	default:
		return "Low"
	}
}

// ─── Shared fragments ────────────────────────────────────────────────────────

func renderInstructions(b *strings.Builder, instructions []guidance.Instruction) {
	if len(instructions) == 0 {
		return
	}
	fmt.Fprintf(b, "## Active Instructions (%d)\n\n", len(instructions))
	for _, ins := range instructions {
		fmt.Fprintf(b, "- **%s** [%s]: %s\n", ins.Title, ins.Scope, ins.Body)
	}
	b.WriteString("\n")
}

func renderTaskLine(b *strings.Builder, t store.Task) {
	fmt.Fprintf(b, "- **%s** (%s, priority %d/5)", t.Title, t.Status, t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(b, " — due %s", t.DueDate.Format("2006-01-02"))
	}
	b.WriteString("\n")
}

func renderNoteLine(b *strings.Builder, n store.Note, level Level) {
	fmt.Fprintf(b, "- **%s**", n.Title)
	if n.Category != "" {
		fmt.Fprintf(b, " [%s]", n.Category)
	}
	if len(n.Tags) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(n.Tags, ", "))
	}
	b.WriteString("\n")
	if body := noteBody(n.Content, level); body != "" {
		fmt.Fprintf(b, "  %s\n", body)
	}
}

func renderMatchLine(b *strings.Builder, r semantic.Result, level Level) {
	fmt.Fprintf(b, "- **%s** (%.0f%% match)", r.Item.Title, r.Score*100)
	if r.Item.Project != "" {
		fmt.Fprintf(b, " [%s]", r.Item.Project)
	}
	b.WriteString("\n")
	if body := noteBody(r.Item.Text, level); body != "" {
		fmt.Fprintf(b, "  %s\n", body)
	}
}

// noteBody returns the content fragment for the given detail level: none
// for basic, a truncated preview for standard, everything for comprehensive.
func noteBody(content string, level Level) string {
	switch level {
	case LevelBasic:
		return ""
	case LevelComprehensive:
		return strings.TrimSpace(content)
	default:
		return Truncate(content, previewLen)
	}
}

// Truncate shortens s to at most n runes, appending an ellipsis when it cuts.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
