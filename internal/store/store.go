// Package store implements the persistent entity store for Minder.
//
// It uses SQLite with an FTS5 index over notes for keyword search. The
// store holds projects, notes, tasks and instructions; note and task
// embedding vectors are stored alongside the rows as JSON so the semantic
// layer can rank without a separate index.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dmreyes/minder/internal/guidance"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ─── Types ───────────────────────────────────────────────────────────────────

// Project groups notes and tasks under a name.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Note is a stored knowledge entry, optionally carrying an embedding
// vector computed at save time.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Project   string    `json:"project,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Priority  int       `json:"priority"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task is a stored work item.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status"`
	Project     string     `json:"project,omitempty"`
	Category    string     `json:"category,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SaveNoteParams holds the input for creating a note.
type SaveNoteParams struct {
	Title     string
	Content   string
	Category  string
	Project   string
	Tags      []string
	Priority  int
	Embedding []float32
}

// SaveTaskParams holds the input for creating a task.
type SaveTaskParams struct {
	Title       string
	Description string
	Priority    int
	DueDate     *time.Time
	Status      string
	Project     string
	Category    string
}

// SaveInstructionParams holds the input for creating a guidance instruction.
type SaveInstructionParams struct {
	Title    string
	Body     string
	Scope    guidance.Scope
	Priority int
}

// NoteFilters narrows note listings and keyword searches.
type NoteFilters struct {
	Query       string // keyword terms; only used by SearchNotes
	Category    string
	Project     string
	MinPriority int
	Limit       int
}

// Time horizons for task listings.
const (
	HorizonToday = "today"
	HorizonWeek  = "week"
	HorizonMonth = "month"
	HorizonAll   = "all"
)

// TaskFilters narrows task listings.
type TaskFilters struct {
	Horizon          string // today | week | month | all
	Category         string
	Project          string
	MinPriority      int
	IncludeCompleted bool
	Limit            int
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".minder")}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed entity store.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a Store: it creates the data directory if needed, opens
// SQLite with WAL mode, and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "minder.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE COLLATE NOCASE,
			description TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notes (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			category   TEXT NOT NULL DEFAULT '',
			project    TEXT NOT NULL DEFAULT '',
			tags       TEXT NOT NULL DEFAULT '',
			priority   INTEGER NOT NULL DEFAULT 3,
			embedding  TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_notes_project  ON notes(project);
		CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category);
		CREATE INDEX IF NOT EXISTS idx_notes_updated  ON notes(updated_at DESC);

		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority    INTEGER NOT NULL DEFAULT 3,
			due_date    TEXT,
			status      TEXT NOT NULL DEFAULT 'todo',
			project     TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project);
		CREATE INDEX IF NOT EXISTS idx_tasks_status  ON tasks(status);
		CREATE INDEX IF NOT EXISTS idx_tasks_due     ON tasks(due_date);

		CREATE TABLE IF NOT EXISTS instructions (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			scope      TEXT NOT NULL DEFAULT 'global',
			target     TEXT NOT NULL DEFAULT '',
			priority   INTEGER NOT NULL DEFAULT 3,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_instr_scope ON instructions(scope, target);

		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			note_id UNINDEXED,
			title,
			content,
			category,
			project,
			tags
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS triggers (idempotent)
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='notes_fts_insert'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER notes_fts_insert AFTER INSERT ON notes BEGIN
				INSERT INTO notes_fts(note_id, title, content, category, project, tags)
				VALUES (new.id, new.title, new.content, new.category, new.project, new.tags);
			END;

			CREATE TRIGGER notes_fts_delete AFTER DELETE ON notes BEGIN
				DELETE FROM notes_fts WHERE note_id = old.id;
			END;

			CREATE TRIGGER notes_fts_update AFTER UPDATE ON notes BEGIN
				DELETE FROM notes_fts WHERE note_id = old.id;
				INSERT INTO notes_fts(note_id, title, content, category, project, tags)
				VALUES (new.id, new.title, new.content, new.category, new.project, new.tags);
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	}

	return nil
}

// ─── Projects ────────────────────────────────────────────────────────────────

// CreateProject registers a new project.
func (s *Store) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	p := &Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   timeNow().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, formatTime(p.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// GetProjectByName retrieves a project by name (case-insensitive).
// Returns ErrNotFound if it does not exist.
func (s *Store) GetProjectByName(ctx context.Context, name string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM projects WHERE name = ? COLLATE NOCASE`,
		strings.TrimSpace(name),
	)
	var p Project
	var created string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	p.CreatedAt = parseTime(created)
	return &p, nil
}

// ListProjects returns all projects, most recent first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM projects ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []Project
	for rows.Next() {
		var p Project
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &created); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(created)
		results = append(results, p)
	}
	return results, rows.Err()
}

// ─── Notes ───────────────────────────────────────────────────────────────────

// SaveNote creates a new note. The embedding is optional — notes without a
// vector stay visible to keyword search.
func (s *Store) SaveNote(ctx context.Context, p SaveNoteParams) (*Note, error) {
	now := timeNow().UTC()
	n := &Note{
		ID:        uuid.NewString(),
		Title:     p.Title,
		Content:   p.Content,
		Category:  p.Category,
		Project:   p.Project,
		Tags:      p.Tags,
		Priority:  clampPriority(p.Priority),
		Embedding: p.Embedding,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, category, project, tags, priority, embedding, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Content, n.Category, n.Project,
		joinTags(n.Tags), n.Priority, encodeVector(n.Embedding),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}
	return n, nil
}

// DeleteNote removes a note by ID.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("note %q: %w", id, ErrNotFound)
	}
	return nil
}

// ListNotesByProject returns the most recently updated notes of a project.
func (s *Store) ListNotesByProject(ctx context.Context, project string, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryNotes(ctx,
		noteSelect+` WHERE project = ? COLLATE NOCASE ORDER BY updated_at DESC LIMIT ?`,
		project, limit,
	)
}

// ListNotes returns notes matching the filters, most recently updated
// first. This is the candidate set for semantic search; Query is ignored.
func (s *Store) ListNotes(ctx context.Context, f NoteFilters) ([]Note, error) {
	query := noteSelect + ` WHERE 1=1`
	var args []any

	if f.Category != "" {
		query += " AND category = ? COLLATE NOCASE"
		args = append(args, f.Category)
	}
	if f.Project != "" {
		query += " AND project = ? COLLATE NOCASE"
		args = append(args, f.Project)
	}
	if f.MinPriority > 0 {
		query += " AND priority >= ?"
		args = append(args, f.MinPriority)
	}

	query += " ORDER BY updated_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return s.queryNotes(ctx, query, args...)
}

// SearchNotes performs a keyword search over title, content, category,
// project and tags using FTS5 with OR semantics across terms, ranked by
// priority descending then recency. This is the fallback path when
// semantic search yields nothing.
func (s *Store) SearchNotes(ctx context.Context, f NoteFilters) ([]Note, error) {
	match := ftsQuery(f.Query)
	if match == "" {
		return s.ListNotes(ctx, f)
	}

	query := `
		SELECT n.id, n.title, n.content, n.category, n.project, n.tags, n.priority, n.embedding, n.created_at, n.updated_at
		FROM notes_fts fts
		JOIN notes n ON n.id = fts.note_id
		WHERE notes_fts MATCH ?
	`
	args := []any{match}

	if f.Category != "" {
		query += " AND n.category = ? COLLATE NOCASE"
		args = append(args, f.Category)
	}
	if f.Project != "" {
		query += " AND n.project = ? COLLATE NOCASE"
		args = append(args, f.Project)
	}
	if f.MinPriority > 0 {
		query += " AND n.priority >= ?"
		args = append(args, f.MinPriority)
	}

	query += " ORDER BY n.priority DESC, n.updated_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return s.queryNotes(ctx, query, args...)
}

const noteSelect = `SELECT id, title, content, category, project, tags, priority, embedding, created_at, updated_at FROM notes`

func (s *Store) queryNotes(ctx context.Context, query string, args ...any) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Note
	for rows.Next() {
		var n Note
		var tags, created, updated string
		var embedding sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Category, &n.Project,
			&tags, &n.Priority, &embedding, &created, &updated); err != nil {
			return nil, err
		}
		n.Tags = splitTags(tags)
		n.Embedding = decodeVector(embedding.String)
		n.CreatedAt = parseTime(created)
		n.UpdatedAt = parseTime(updated)
		results = append(results, n)
	}
	return results, rows.Err()
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

// SaveTask creates a new task.
func (s *Store) SaveTask(ctx context.Context, p SaveTaskParams) (*Task, error) {
	now := timeNow().UTC()
	status := p.Status
	if status == "" {
		status = StatusTodo
	}
	t := &Task{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Description: p.Description,
		Priority:    clampPriority(p.Priority),
		DueDate:     p.DueDate,
		Status:      status,
		Project:     p.Project,
		Category:    p.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, priority, due_date, status, project, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Priority, formatNullableTime(t.DueDate),
		t.Status, t.Project, t.Category, formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	return t, nil
}

// GetTask retrieves a task by ID. Returns ErrNotFound if it does not exist.
func (s *Store) GetTask(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}

// UpdateTaskStatus sets a task's status and returns the updated task.
func (s *Store) UpdateTaskStatus(ctx context.Context, id, status string) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, formatTime(timeNow().UTC()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return nil
}

// ListTasksByProject returns a project's tasks, most recently updated
// first. Completed tasks are excluded unless includeCompleted is set.
func (s *Store) ListTasksByProject(ctx context.Context, project string, includeCompleted bool, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 10
	}
	query := taskSelect + ` WHERE project = ? COLLATE NOCASE`
	args := []any{project}
	if !includeCompleted {
		query += " AND status != ?"
		args = append(args, StatusDone)
	}
	query += " ORDER BY updated_at DESC LIMIT ?"
	args = append(args, limit)
	return s.queryTasks(ctx, query, args...)
}

// ListTasks returns tasks matching the filters. The time horizon bounds
// the due date: overdue tasks are always included for today/week/month,
// tasks without a due date only appear under "all".
func (s *Store) ListTasks(ctx context.Context, f TaskFilters) ([]Task, error) {
	query := taskSelect + ` WHERE 1=1`
	var args []any

	if !f.IncludeCompleted {
		query += " AND status != ?"
		args = append(args, StatusDone)
	}
	if f.Category != "" {
		query += " AND category = ? COLLATE NOCASE"
		args = append(args, f.Category)
	}
	if f.Project != "" {
		query += " AND project = ? COLLATE NOCASE"
		args = append(args, f.Project)
	}
	if f.MinPriority > 0 {
		query += " AND priority >= ?"
		args = append(args, f.MinPriority)
	}

	if days, bounded := horizonDays(f.Horizon); bounded {
		cutoff := timeNow().UTC().AddDate(0, 0, days)
		query += " AND due_date IS NOT NULL AND due_date <= ?"
		args = append(args, formatTime(endOfDay(cutoff)))
	}

	query += " ORDER BY due_date IS NULL, due_date ASC, priority DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return s.queryTasks(ctx, query, args...)
}

const taskSelect = `SELECT id, title, description, priority, due_date, status, project, category, created_at, updated_at FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var due sql.NullString
	var created, updated string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &due,
		&t.Status, &t.Project, &t.Category, &created, &updated); err != nil {
		return nil, err
	}
	if due.Valid && due.String != "" {
		d := parseTime(due.String)
		t.DueDate = &d
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *t)
	}
	return results, rows.Err()
}

// ─── Instructions ────────────────────────────────────────────────────────────

// SaveInstruction creates a new guidance instruction.
func (s *Store) SaveInstruction(ctx context.Context, p SaveInstructionParams) (*guidance.Instruction, error) {
	in := &guidance.Instruction{
		ID:        uuid.NewString(),
		Title:     p.Title,
		Body:      p.Body,
		Scope:     p.Scope,
		Priority:  clampPriority(p.Priority),
		CreatedAt: timeNow().UTC(),
	}

	kind, target := encodeScope(p.Scope)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO instructions (id, title, body, scope, target, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Body, kind, target, in.Priority, formatTime(in.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("save instruction: %w", err)
	}
	return in, nil
}

// DeleteInstruction removes an instruction and returns its scope so the
// caller can invalidate the matching cache entries.
func (s *Store) DeleteInstruction(ctx context.Context, id string) (guidance.Scope, error) {
	row := s.db.QueryRowContext(ctx, `SELECT scope, target FROM instructions WHERE id = ?`, id)
	var kind, target string
	if err := row.Scan(&kind, &target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return guidance.Scope{}, fmt.Errorf("instruction %q: %w", id, ErrNotFound)
		}
		return guidance.Scope{}, err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM instructions WHERE id = ?`, id); err != nil {
		return guidance.Scope{}, fmt.Errorf("delete instruction: %w", err)
	}
	return decodeScope(kind, target), nil
}

// QueryInstructions returns the union of instructions matching the filter.
// It satisfies guidance.Source.
func (s *Store) QueryInstructions(ctx context.Context, f guidance.Filter) ([]guidance.Instruction, error) {
	var clauses []string
	var args []any

	if f.Global {
		clauses = append(clauses, "scope = 'global'")
	}
	if f.Project != "" {
		clauses = append(clauses, "(scope = 'project' AND target = ? COLLATE NOCASE)")
		args = append(args, f.Project)
	}
	if f.Category != "" {
		clauses = append(clauses, "(scope = 'category' AND target = ? COLLATE NOCASE)")
		args = append(args, f.Category)
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	query := `SELECT id, title, body, scope, target, priority, created_at FROM instructions
		WHERE ` + strings.Join(clauses, " OR ") + `
		ORDER BY priority DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query instructions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []guidance.Instruction
	for rows.Next() {
		var in guidance.Instruction
		var kind, target, created string
		if err := rows.Scan(&in.ID, &in.Title, &in.Body, &kind, &target, &in.Priority, &created); err != nil {
			return nil, err
		}
		in.Scope = decodeScope(kind, target)
		in.CreatedAt = parseTime(created)
		results = append(results, in)
	}
	return results, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// timeNow is a package-level variable for testability.
var timeNow = time.Now

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// horizonDays maps a horizon to its due-date window in days. The second
// return is false for "all" (no bound).
func horizonDays(horizon string) (int, bool) {
	switch horizon {
	case HorizonToday:
		return 0, true
	case HorizonWeek:
		return 7, true
	case HorizonMonth:
		return 30, true
	default:
		return 0, false
	}
}

func clampPriority(p int) int {
	if p < 1 {
		return 3
	}
	if p > 5 {
		return 5
	}
	return p
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func encodeVector(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(data)
}

func decodeVector(s string) []float32 {
	if s == "" {
		return nil
	}
	var v []float32
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}

func encodeScope(s guidance.Scope) (kind, target string) {
	switch s.Kind {
	case guidance.ScopeProject:
		return "project", s.Name
	case guidance.ScopeCategory:
		return "category", s.Name
	default:
		return "global", ""
	}
}

func decodeScope(kind, target string) guidance.Scope {
	switch kind {
	case "project":
		return guidance.ProjectScope(target)
	case "category":
		return guidance.CategoryScope(target)
	default:
		return guidance.GlobalScope()
	}
}

// ftsQuery wraps each term in quotes and joins with OR so any matching
// term qualifies a note: "auth bug" → `"auth" OR "bug"`.
func ftsQuery(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		w = strings.Trim(w, `"`)
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " OR ")
}
