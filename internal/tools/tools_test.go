package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmreyes/minder/internal/guidance"
	"github.com/dmreyes/minder/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return e.vector, e.err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestResolver(t *testing.T, st *store.Store) *guidance.Resolver {
	t.Helper()
	r, err := guidance.NewResolver(st, guidance.Config{})
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}
	return r
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func mustNotError(t *testing.T, result *mcp.CallToolResult, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("tool returned error result: %s", resultText(result))
	}
}

// ─── Projects ────────────────────────────────────────────────────────────────

func TestCreateProjectTool(t *testing.T) {
	st := newTestStore(t)
	tool := NewCreateProjectTool(st)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name":        "alpha",
		"description": "The alpha rewrite",
	}))
	mustNotError(t, result, err)

	p, err := st.GetProjectByName(context.Background(), "Alpha")
	if err != nil {
		t.Fatalf("project not stored: %v", err)
	}
	if p.Description != "The alpha rewrite" {
		t.Errorf("description = %q", p.Description)
	}
}

func TestCreateProjectTool_MissingName(t *testing.T) {
	tool := NewCreateProjectTool(newTestStore(t))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("want tool error for missing 'name'")
	}
}

func TestListProjectsTool(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.CreateProject(context.Background(), "alpha", "first"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tool := NewListProjectsTool(st)

	result, err := tool.Handle(context.Background(), makeReq(nil))
	mustNotError(t, result, err)
	if !strings.Contains(resultText(result), "alpha") {
		t.Errorf("listing missing project:\n%s", resultText(result))
	}
}

// ─── Notes ───────────────────────────────────────────────────────────────────

func TestSaveNoteTool_WithEmbedding(t *testing.T) {
	st := newTestStore(t)
	tool := NewSaveNoteTool(st, &fakeEmbedder{vector: []float32{0.1, 0.2}})

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"title":   "Auth decision",
		"content": "We rotate JWTs hourly.",
		"tags":    "auth, security",
	}))
	mustNotError(t, result, err)

	notes, err := st.ListNotes(context.Background(), store.NoteFilters{})
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(notes))
	}
	if len(notes[0].Embedding) != 2 {
		t.Errorf("embedding not stored: %v", notes[0].Embedding)
	}
	if len(notes[0].Tags) != 2 || notes[0].Tags[0] != "auth" {
		t.Errorf("tags = %v", notes[0].Tags)
	}
}

func TestSaveNoteTool_EmbeddingFailureDegrades(t *testing.T) {
	st := newTestStore(t)
	tool := NewSaveNoteTool(st, &fakeEmbedder{err: errors.New("ollama down")})

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"title":   "Offline note",
		"content": "saved without a vector",
	}))
	mustNotError(t, result, err)

	if !strings.Contains(resultText(result), "keyword-searchable only") {
		t.Errorf("degraded save not reported:\n%s", resultText(result))
	}

	notes, err := st.ListNotes(context.Background(), store.NoteFilters{})
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || len(notes[0].Embedding) != 0 {
		t.Errorf("note should be stored vectorless: %+v", notes)
	}
}

func TestDeleteNoteTool(t *testing.T) {
	st := newTestStore(t)
	n, err := st.SaveNote(context.Background(), store.SaveNoteParams{Title: "gone soon", Content: "x"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	tool := NewDeleteNoteTool(st)

	result, herr := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"note_id": n.ID,
	}))
	mustNotError(t, result, herr)

	notes, err := st.ListNotes(context.Background(), store.NoteFilters{})
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("note still present: %+v", notes)
	}
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

func TestSaveTaskTool(t *testing.T) {
	st := newTestStore(t)
	tool := NewSaveTaskTool(st)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"title":    "Ship the fix",
		"due_date": "2026-09-15",
		"priority": float64(4),
	}))
	mustNotError(t, result, err)

	tasks, err := st.ListTasks(context.Background(), store.TaskFilters{Horizon: store.HorizonAll})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].DueDate == nil || tasks[0].DueDate.Format("2006-01-02") != "2026-09-15" {
		t.Errorf("due date = %v", tasks[0].DueDate)
	}
	if tasks[0].Status != store.StatusTodo {
		t.Errorf("status = %q, want default todo", tasks[0].Status)
	}
}

func TestSaveTaskTool_BadDueDate(t *testing.T) {
	tool := NewSaveTaskTool(newTestStore(t))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"title":    "Ship it",
		"due_date": "next tuesday",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("want tool error for unparseable due date")
	}
}

func TestUpdateTaskStatusTool(t *testing.T) {
	st := newTestStore(t)
	task, err := st.SaveTask(context.Background(), store.SaveTaskParams{Title: "wip"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	tool := NewUpdateTaskStatusTool(st)

	result, herr := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"task_id": task.ID,
		"status":  "in_progress",
	}))
	mustNotError(t, result, herr)

	got, err := st.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != store.StatusInProgress {
		t.Errorf("status = %q", got.Status)
	}
}

func TestUpdateTaskStatusTool_BadStatus(t *testing.T) {
	tool := NewUpdateTaskStatusTool(newTestStore(t))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"task_id": "t1",
		"status":  "paused",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("want tool error for unknown status")
	}
}

// ─── Instructions ────────────────────────────────────────────────────────────

func TestSaveInstructionTool_InvalidatesCache(t *testing.T) {
	st := newTestStore(t)
	resolver := newTestResolver(t, st)
	tool := NewSaveInstructionTool(st, resolver)
	ctx := context.Background()

	// Warm the cache with an empty global resolve.
	if _, err := resolver.Resolve(ctx, guidance.Query{IncludeGlobal: true}); err != nil {
		t.Fatalf("warm resolve: %v", err)
	}

	result, err := tool.Handle(ctx, makeReq(map[string]interface{}{
		"title": "Keep changelogs",
		"body":  "Every merge updates CHANGELOG.md",
	}))
	mustNotError(t, result, err)

	// The cache was invalidated, so the resolve sees the new instruction.
	got, err := resolver.Resolve(ctx, guidance.Query{IncludeGlobal: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Keep changelogs" {
		t.Errorf("resolved = %+v, want the new instruction", got)
	}
}

func TestSaveInstructionTool_ScopeNeedsTarget(t *testing.T) {
	st := newTestStore(t)
	tool := NewSaveInstructionTool(st, newTestResolver(t, st))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"title": "Project rule",
		"body":  "x",
		"scope": "project",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("want tool error for project scope without target")
	}
}

func TestDeleteInstructionTool_InvalidatesScope(t *testing.T) {
	st := newTestStore(t)
	resolver := newTestResolver(t, st)
	ctx := context.Background()

	in, err := st.SaveInstruction(ctx, store.SaveInstructionParams{
		Title: "Alpha rule",
		Body:  "x",
		Scope: guidance.ProjectScope("alpha"),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Cache the project resolve, then delete through the tool.
	if _, err := resolver.Resolve(ctx, guidance.Query{Project: "alpha"}); err != nil {
		t.Fatalf("warm resolve: %v", err)
	}

	tool := NewDeleteInstructionTool(st, resolver)
	result, herr := tool.Handle(ctx, makeReq(map[string]interface{}{
		"instruction_id": in.ID,
	}))
	mustNotError(t, result, herr)

	got, err := resolver.Resolve(ctx, guidance.Query{Project: "alpha"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("resolved = %+v, want empty after delete", got)
	}
}
