package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmreyes/minder/internal/guidance"
	"github.com/dmreyes/minder/internal/store"
	"github.com/dmreyes/minder/internal/urgency"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// stubData backs all three store-facing source interfaces for builder tests.
type stubData struct {
	projects map[string]*store.Project
	notes    []store.Note
	tasks    []store.Task

	listErr   error
	searchErr error

	searchCalls int
}

func (s *stubData) GetProjectByName(_ context.Context, name string) (*store.Project, error) {
	if p, ok := s.projects[name]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubData) ListNotesByProject(_ context.Context, project string, limit int) ([]store.Note, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []store.Note
	for _, n := range s.notes {
		if n.Project == project {
			out = append(out, n)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubData) ListNotes(_ context.Context, f store.NoteFilters) ([]store.Note, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []store.Note
	for _, n := range s.notes {
		if f.Project != "" && n.Project != f.Project {
			continue
		}
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		if n.Priority < f.MinPriority {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *stubData) SearchNotes(_ context.Context, f store.NoteFilters) ([]store.Note, error) {
	s.searchCalls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	var out []store.Note
	for _, n := range s.notes {
		text := strings.ToLower(n.Title + " " + n.Content)
		for _, term := range strings.Fields(strings.ToLower(f.Query)) {
			if strings.Contains(text, term) {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

func (s *stubData) GetTask(_ context.Context, id string) (*store.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *stubData) ListTasksByProject(_ context.Context, project string, includeCompleted bool, limit int) ([]store.Task, error) {
	var out []store.Task
	for _, t := range s.tasks {
		if t.Project != project {
			continue
		}
		if !includeCompleted && t.Status == store.StatusDone {
			continue
		}
		out = append(out, t)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubData) ListTasks(_ context.Context, f store.TaskFilters) ([]store.Task, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []store.Task
	for _, t := range s.tasks {
		if f.Project != "" && t.Project != f.Project {
			continue
		}
		if t.Priority < f.MinPriority {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type stubGuide struct {
	instructions []guidance.Instruction
	err          error
	lastQuery    guidance.Query
}

func (g *stubGuide) Resolve(_ context.Context, q guidance.Query) ([]guidance.Instruction, error) {
	g.lastQuery = q
	return g.instructions, g.err
}

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	return e.vector, e.err
}

func newTestBuilder(data *stubData, guide *stubGuide, embed *stubEmbedder) *Builder {
	b := NewBuilder(data, data, data, guide, embed)
	b.timeNow = func() time.Time { return now }
	return b
}

func dueIn(days int) *time.Time {
	d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return &d
}

// ─── Project context ─────────────────────────────────────────────────────────

func TestBuildProjectContext(t *testing.T) {
	data := &stubData{
		projects: map[string]*store.Project{
			"alpha": {ID: "p1", Name: "alpha", Description: "Alpha rewrite"},
		},
		notes: []store.Note{
			{ID: "n1", Title: "Design call", Project: "alpha", Priority: 3},
		},
		tasks: []store.Task{
			{ID: "t1", Title: "Ship it", Project: "alpha", Status: store.StatusTodo, DueDate: dueIn(-2)},
			{ID: "t2", Title: "Polish", Project: "alpha", Status: store.StatusTodo},
		},
	}
	guide := &stubGuide{instructions: []guidance.Instruction{
		{ID: "i1", Title: "Keep changelogs", Scope: guidance.GlobalScope()},
	}}
	b := newTestBuilder(data, guide, &stubEmbedder{})

	pc, err := b.BuildProjectContext(context.Background(), ProjectContextRequest{Project: "alpha"})
	if err != nil {
		t.Fatalf("BuildProjectContext: %v", err)
	}

	if pc.Project.Description != "Alpha rewrite" {
		t.Errorf("description = %q", pc.Project.Description)
	}
	if len(pc.Instructions) != 1 {
		t.Errorf("instructions = %d, want 1", len(pc.Instructions))
	}
	if !guide.lastQuery.IncludeGlobal || guide.lastQuery.Project != "alpha" {
		t.Errorf("resolved with query %+v", guide.lastQuery)
	}
	if pc.Stats.NoteCount != 1 || pc.Stats.TaskCount != 2 {
		t.Errorf("stats = %+v", pc.Stats)
	}
	if pc.Stats.OverdueCount != 1 {
		t.Errorf("overdue = %d, want 1", pc.Stats.OverdueCount)
	}
}

func TestBuildProjectContextUnknownProject(t *testing.T) {
	b := newTestBuilder(&stubData{projects: map[string]*store.Project{}}, &stubGuide{}, &stubEmbedder{})

	_, err := b.BuildProjectContext(context.Background(), ProjectContextRequest{Project: "ghost"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBuildProjectContextGuideFailureDegrades(t *testing.T) {
	data := &stubData{
		projects: map[string]*store.Project{"alpha": {ID: "p1", Name: "alpha"}},
		notes:    []store.Note{{ID: "n1", Title: "Note", Project: "alpha"}},
	}
	guide := &stubGuide{err: errors.New("db locked")}
	b := newTestBuilder(data, guide, &stubEmbedder{})

	pc, err := b.BuildProjectContext(context.Background(), ProjectContextRequest{Project: "alpha"})
	if err != nil {
		t.Fatalf("BuildProjectContext: %v", err)
	}
	if pc.Instructions != nil {
		t.Errorf("instructions = %v, want nil after resolve failure", pc.Instructions)
	}
	if len(pc.Notes) != 1 {
		t.Errorf("notes = %d, want 1", len(pc.Notes))
	}
}

// ─── Task context ────────────────────────────────────────────────────────────

func TestBuildTaskContext(t *testing.T) {
	data := &stubData{
		tasks: []store.Task{
			{ID: "t1", Title: "Fix auth timeout", Project: "alpha", Category: "work", Status: store.StatusInProgress},
			{ID: "t2", Title: "Sibling", Project: "alpha", Status: store.StatusTodo},
			{ID: "t3", Title: "Done already", Project: "alpha", Status: store.StatusDone},
		},
		notes: []store.Note{
			{ID: "n1", Title: "Auth notes", Content: "token refresh", Embedding: []float32{1, 0}, UpdatedAt: now},
		},
	}
	guide := &stubGuide{}
	embed := &stubEmbedder{vector: []float32{1, 0}}
	b := newTestBuilder(data, guide, embed)

	tc, err := b.BuildTaskContext(context.Background(), TaskContextRequest{
		TaskID:         "t1",
		IncludeRelated: true,
		SemanticSearch: true,
	})
	if err != nil {
		t.Fatalf("BuildTaskContext: %v", err)
	}

	if guide.lastQuery.Project != "alpha" || guide.lastQuery.Category != "work" {
		t.Errorf("resolved with query %+v", guide.lastQuery)
	}
	if len(tc.Related) != 1 || tc.Related[0].ID != "t2" {
		t.Errorf("related = %+v, want only t2", tc.Related)
	}
	if len(tc.RelatedNotes) != 1 || tc.RelatedNotes[0].Item.ID != "n1" {
		t.Errorf("related notes = %+v", tc.RelatedNotes)
	}
}

func TestBuildTaskContextEmbeddingFailureOmitsNotes(t *testing.T) {
	data := &stubData{
		tasks: []store.Task{{ID: "t1", Title: "Fix auth", Project: "alpha", Status: store.StatusTodo}},
		notes: []store.Note{{ID: "n1", Title: "Auth notes", Embedding: []float32{1, 0}}},
	}
	embed := &stubEmbedder{err: errors.New("ollama down")}
	b := newTestBuilder(data, &stubGuide{}, embed)

	tc, err := b.BuildTaskContext(context.Background(), TaskContextRequest{TaskID: "t1", SemanticSearch: true})
	if err != nil {
		t.Fatalf("BuildTaskContext: %v", err)
	}
	if tc.RelatedNotes != nil {
		t.Errorf("related notes = %+v, want nil when embedding fails", tc.RelatedNotes)
	}
}

func TestBuildTaskContextCancellation(t *testing.T) {
	data := &stubData{
		tasks: []store.Task{{ID: "t1", Title: "Fix auth", Status: store.StatusTodo}},
	}
	b := newTestBuilder(data, &stubGuide{}, &stubEmbedder{err: context.Canceled})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.BuildTaskContext(ctx, TaskContextRequest{TaskID: "t1", SemanticSearch: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// ─── Memory context ──────────────────────────────────────────────────────────

func TestBuildMemoryContextEmptyTopic(t *testing.T) {
	b := newTestBuilder(&stubData{}, &stubGuide{}, &stubEmbedder{})

	_, err := b.BuildMemoryContext(context.Background(), MemoryContextRequest{Topic: "   "})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestBuildMemoryContextSemanticWins(t *testing.T) {
	data := &stubData{
		notes: []store.Note{
			{ID: "n1", Title: "Auth design", Content: "jwt rotation", Embedding: []float32{1, 0}, UpdatedAt: now},
		},
	}
	b := newTestBuilder(data, &stubGuide{}, &stubEmbedder{vector: []float32{1, 0}})

	mc, err := b.BuildMemoryContext(context.Background(), MemoryContextRequest{Topic: "authentication"})
	if err != nil {
		t.Fatalf("BuildMemoryContext: %v", err)
	}
	if mc.Source != SourceSemantic {
		t.Fatalf("source = %q, want semantic", mc.Source)
	}
	if len(mc.Semantic) != 1 || mc.Semantic[0].Item.ID != "n1" {
		t.Errorf("semantic = %+v", mc.Semantic)
	}
	if data.searchCalls != 0 {
		t.Errorf("keyword search ran %d time(s) despite semantic matches", data.searchCalls)
	}
}

func TestBuildMemoryContextKeywordFallbackOnEmbedFailure(t *testing.T) {
	data := &stubData{
		notes: []store.Note{
			{ID: "n1", Title: "Authentication bug", Content: "timeout on login"},
		},
	}
	b := newTestBuilder(data, &stubGuide{}, &stubEmbedder{err: errors.New("ollama down")})

	mc, err := b.BuildMemoryContext(context.Background(), MemoryContextRequest{Topic: "authentication"})
	if err != nil {
		t.Fatalf("BuildMemoryContext: %v", err)
	}
	if mc.Source != SourceKeyword {
		t.Fatalf("source = %q, want keyword", mc.Source)
	}
	if len(mc.Keyword) != 1 {
		t.Errorf("keyword = %+v", mc.Keyword)
	}
}

func TestBuildMemoryContextKeywordFallbackBelowFloor(t *testing.T) {
	// The only note is orthogonal to the query vector, so semantic
	// search returns nothing and keyword takes over.
	data := &stubData{
		notes: []store.Note{
			{ID: "n1", Title: "Authentication flow", Content: "session notes", Embedding: []float32{0, 1}},
		},
	}
	b := newTestBuilder(data, &stubGuide{}, &stubEmbedder{vector: []float32{1, 0}})

	mc, err := b.BuildMemoryContext(context.Background(), MemoryContextRequest{
		Topic:         "authentication",
		MinSimilarity: 0.5,
	})
	if err != nil {
		t.Fatalf("BuildMemoryContext: %v", err)
	}
	if mc.Source != SourceKeyword {
		t.Fatalf("source = %q, want keyword", mc.Source)
	}
}

func TestBuildMemoryContextNoMatches(t *testing.T) {
	b := newTestBuilder(&stubData{}, &stubGuide{}, &stubEmbedder{err: errors.New("down")})

	mc, err := b.BuildMemoryContext(context.Background(), MemoryContextRequest{Topic: "quantum llamas"})
	if err != nil {
		t.Fatalf("BuildMemoryContext: %v", err)
	}
	if mc.Source != SourceNone {
		t.Errorf("source = %q, want none", mc.Source)
	}
}

func TestBuildMemoryContextCancellation(t *testing.T) {
	b := newTestBuilder(&stubData{}, &stubGuide{}, &stubEmbedder{err: context.Canceled})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.BuildMemoryContext(ctx, MemoryContextRequest{Topic: "anything"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// ─── Work priorities ─────────────────────────────────────────────────────────

func TestBuildWorkPriorities(t *testing.T) {
	data := &stubData{
		tasks: []store.Task{
			{ID: "t1", Title: "Overdue crunch", Priority: 3, DueDate: dueIn(-1), Status: store.StatusInProgress},
			{ID: "t2", Title: "Due today", Priority: 2, DueDate: dueIn(0), Status: store.StatusTodo},
			{ID: "t3", Title: "Next week", Priority: 1, DueDate: dueIn(6), Status: store.StatusTodo},
			{ID: "t4", Title: "Someday", Priority: 1, Status: store.StatusTodo},
		},
	}
	b := newTestBuilder(data, &stubGuide{}, &stubEmbedder{})

	wp, err := b.BuildWorkPriorities(context.Background(), WorkPrioritiesRequest{})
	if err != nil {
		t.Fatalf("BuildWorkPriorities: %v", err)
	}

	if wp.Horizon != store.HorizonAll {
		t.Errorf("horizon = %q, want default all", wp.Horizon)
	}
	if got := wp.Summary; got.Total != 4 || got.Overdue != 1 || got.DueToday != 1 || got.DueThisWeek != 2 {
		t.Errorf("summary = %+v", got)
	}

	// t1: 3*2 + 5 + 1 = 12 → clamped 10, urgent. t2: 2*2 + 4 = 8, urgent.
	urgent := wp.Buckets[urgency.Urgent]
	if len(urgent) != 2 {
		t.Fatalf("urgent bucket = %+v", urgent)
	}
	if urgent[0].Task.ID != "t1" || urgent[0].Score != 10 {
		t.Errorf("top urgent = %s score %.0f", urgent[0].Task.ID, urgent[0].Score)
	}

	bucketed := 0
	for _, tasks := range wp.Buckets {
		bucketed += len(tasks)
	}
	if bucketed != wp.Summary.Total {
		t.Errorf("bucketed %d tasks, summary says %d", bucketed, wp.Summary.Total)
	}
}

func TestBuildWorkPrioritiesStoreFailure(t *testing.T) {
	data := &stubData{listErr: errors.New("disk gone")}
	b := newTestBuilder(data, &stubGuide{}, &stubEmbedder{})

	if _, err := b.BuildWorkPriorities(context.Background(), WorkPrioritiesRequest{}); err == nil {
		t.Fatal("want error when task listing fails")
	}
}
