package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmreyes/minder/internal/embedding"
	"github.com/dmreyes/minder/internal/guidance"
	"github.com/dmreyes/minder/internal/semantic"
	"github.com/dmreyes/minder/internal/store"
	"github.com/dmreyes/minder/internal/urgency"
)

// Fixed parameters for the related-notes search in task contexts.
const (
	taskNotesLimit = 5
	taskNotesFloor = 0.2
)

const defaultMaxItems = 10

// ProjectSource fetches project metadata.
type ProjectSource interface {
	GetProjectByName(ctx context.Context, name string) (*store.Project, error)
}

// NoteSource fetches notes for listings, semantic candidates, and keyword
// fallback search.
type NoteSource interface {
	ListNotesByProject(ctx context.Context, project string, limit int) ([]store.Note, error)
	ListNotes(ctx context.Context, f store.NoteFilters) ([]store.Note, error)
	SearchNotes(ctx context.Context, f store.NoteFilters) ([]store.Note, error)
}

// TaskSource fetches tasks.
type TaskSource interface {
	GetTask(ctx context.Context, id string) (*store.Task, error)
	ListTasksByProject(ctx context.Context, project string, includeCompleted bool, limit int) ([]store.Task, error)
	ListTasks(ctx context.Context, f store.TaskFilters) ([]store.Task, error)
}

// Guide resolves applicable instructions per scope combination.
type Guide interface {
	Resolve(ctx context.Context, q guidance.Query) ([]guidance.Instruction, error)
}

// Builder gathers report data from its collaborators. It owns all fallback
// logic: a failed embed or instruction resolve degrades the affected
// section, only store.ErrNotFound and ErrInvalid abort a report.
type Builder struct {
	projects ProjectSource
	notes    NoteSource
	tasks    TaskSource
	guide    Guide
	embed    embedding.Provider
	scorer   urgency.Scorer

	// timeNow is swapped in tests to control urgency scoring.
	timeNow func() time.Time
}

// NewBuilder wires a Builder. All dependencies are required; the embedding
// provider may be a stub that always fails — every semantic path degrades.
func NewBuilder(projects ProjectSource, notes NoteSource, tasks TaskSource, guide Guide, embed embedding.Provider) *Builder {
	return &Builder{
		projects: projects,
		notes:    notes,
		tasks:    tasks,
		guide:    guide,
		embed:    embed,
		scorer:   urgency.NewScorer(),
		timeNow:  time.Now,
	}
}

// ─── Project context ─────────────────────────────────────────────────────────

// BuildProjectContext gathers a project's description, applicable
// instructions, recent notes and open tasks, plus summary statistics.
// Fails only when the project does not exist or the context is cancelled.
func (b *Builder) BuildProjectContext(ctx context.Context, req ProjectContextRequest) (*ProjectContext, error) {
	project, err := b.projects.GetProjectByName(ctx, req.Project)
	if err != nil {
		return nil, err
	}

	maxItems := req.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}

	pc := &ProjectContext{Project: *project}

	// Sections below degrade to absent on failure.
	pc.Instructions, _ = b.guide.Resolve(ctx, guidance.Query{
		IncludeGlobal: true,
		Project:       project.Name,
	})

	if notes, err := b.notes.ListNotesByProject(ctx, project.Name, maxItems); err == nil {
		pc.Notes = notes
	}
	if tasks, err := b.tasks.ListTasksByProject(ctx, project.Name, req.IncludeCompleted, maxItems); err == nil {
		pc.Tasks = tasks
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := b.timeNow()
	pc.Stats = ProjectStats{
		NoteCount: len(pc.Notes),
		TaskCount: len(pc.Tasks),
	}
	for _, t := range pc.Tasks {
		if t.DueDate != nil && t.Status != store.StatusDone && urgency.DaysUntilDue(*t.DueDate, now) < 0 {
			pc.Stats.OverdueCount++
		}
	}

	return pc, nil
}

// ─── Task context ────────────────────────────────────────────────────────────

// BuildTaskContext gathers one task's details, applicable instructions,
// sibling tasks, and semantically related notes. The semantic section is
// best-effort: if the embedding provider fails the section is omitted and
// the rest of the report still returns.
func (b *Builder) BuildTaskContext(ctx context.Context, req TaskContextRequest) (*TaskContext, error) {
	task, err := b.tasks.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	tc := &TaskContext{Task: *task}

	tc.Instructions, _ = b.guide.Resolve(ctx, guidance.Query{
		IncludeGlobal: true,
		Project:       task.Project,
		Category:      task.Category,
	})

	if req.IncludeRelated && task.Project != "" {
		if siblings, err := b.tasks.ListTasksByProject(ctx, task.Project, false, defaultMaxItems); err == nil {
			for _, sib := range siblings {
				if sib.ID != task.ID {
					tc.Related = append(tc.Related, sib)
				}
			}
		}
	}

	if req.SemanticSearch {
		query := strings.TrimSpace(task.Title + " " + task.Description)
		results, err := b.trySemanticSearch(ctx, query, store.NoteFilters{}, taskNotesLimit, taskNotesFloor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// Swallowed: the related-notes section is simply omitted.
		} else {
			tc.RelatedNotes = results
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tc, nil
}

// ─── Memory context ──────────────────────────────────────────────────────────

// BuildMemoryContext searches notes related to a topic. Semantic search
// runs first; if it yields nothing — embedding failed or no note cleared
// the similarity floor — a keyword search over title, content, category,
// project and tags runs instead, ranked by priority then recency. The two
// paths are mutually exclusive per request.
func (b *Builder) BuildMemoryContext(ctx context.Context, req MemoryContextRequest) (*MemoryContext, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalid)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultMaxItems
	}

	filters := store.NoteFilters{
		Category:    req.Category,
		Project:     req.Project,
		MinPriority: req.MinPriority,
	}

	mc := &MemoryContext{Topic: topic, Source: SourceNone}

	results, err := b.trySemanticSearch(ctx, topic, filters, limit, req.MinSimilarity)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(results) > 0 {
		mc.Source = SourceSemantic
		mc.Semantic = results
		return mc, nil
	}

	filters.Query = topic
	filters.Limit = limit
	if keyword, err := b.notes.SearchNotes(ctx, filters); err == nil && len(keyword) > 0 {
		mc.Source = SourceKeyword
		mc.Keyword = keyword
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mc, nil
}

// trySemanticSearch is the explicit first step of the two-step retrieval
// pipeline: embed the query, rank candidate notes, and return matches. A
// non-nil error means the semantic path was unavailable — the caller
// decides whether to fall back, it is never an implicit side effect.
func (b *Builder) trySemanticSearch(ctx context.Context, query string, filters store.NoteFilters, limit int, minSimilarity float64) ([]semantic.Result, error) {
	vector, err := b.embed.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	notes, err := b.notes.ListNotes(ctx, filters)
	if err != nil {
		return nil, err
	}

	candidates := make([]semantic.Item, 0, len(notes))
	for _, n := range notes {
		candidates = append(candidates, noteToItem(n))
	}

	return semantic.FindMostSimilar(vector, candidates, limit, minSimilarity), nil
}

func noteToItem(n store.Note) semantic.Item {
	return semantic.Item{
		ID:        n.ID,
		Kind:      semantic.KindNote,
		Title:     n.Title,
		Text:      n.Content,
		Project:   n.Project,
		Category:  n.Category,
		Tags:      n.Tags,
		Priority:  n.Priority,
		Vector:    n.Embedding,
		UpdatedAt: n.UpdatedAt,
	}
}

// ─── Work priorities ─────────────────────────────────────────────────────────

// BuildWorkPriorities fetches candidate tasks for a time horizon, scores
// each, and buckets them by urgency. Buckets and summary are computed from
// one snapshot so their counts always agree.
func (b *Builder) BuildWorkPriorities(ctx context.Context, req WorkPrioritiesRequest) (*WorkPriorities, error) {
	horizon := req.Horizon
	if horizon == "" {
		horizon = store.HorizonAll
	}

	tasks, err := b.tasks.ListTasks(ctx, store.TaskFilters{
		Horizon:     horizon,
		Category:    req.Category,
		Project:     req.Project,
		MinPriority: req.MinPriority,
		Limit:       req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := b.timeNow()
	wp := &WorkPriorities{
		Horizon:     horizon,
		Buckets:     make(map[urgency.Level][]ScoredTask),
		GeneratedAt: now,
	}

	for _, t := range tasks {
		score := b.scorer.Score(urgency.Input{
			Priority:   t.Priority,
			DueDate:    t.DueDate,
			InProgress: t.Status == store.StatusInProgress,
		}, now)
		level := urgency.Bucket(score)
		wp.Buckets[level] = append(wp.Buckets[level], ScoredTask{Task: t, Score: score, Level: level})

		wp.Summary.Total++
		if t.DueDate != nil {
			days := urgency.DaysUntilDue(*t.DueDate, now)
			switch {
			case days < 0:
				wp.Summary.Overdue++
			case days == 0:
				wp.Summary.DueToday++
			}
			if days >= 0 && days <= 7 {
				wp.Summary.DueThisWeek++
			}
		}
	}

	for level := range wp.Buckets {
		bucket := wp.Buckets[level]
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].Score != bucket[j].Score {
				return bucket[i].Score > bucket[j].Score
			}
			return earlierDue(bucket[i].Task, bucket[j].Task)
		})
	}

	return wp, nil
}

// earlierDue orders tasks with due dates before those without.
func earlierDue(a, b store.Task) bool {
	switch {
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	default:
		return a.DueDate.Before(*b.DueDate)
	}
}
