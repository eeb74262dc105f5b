// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools that depend on abstractions. No business
// logic lives here — only wiring.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dmreyes/minder/internal/config"
	"github.com/dmreyes/minder/internal/ctxtools"
	"github.com/dmreyes/minder/internal/embedding"
	"github.com/dmreyes/minder/internal/guidance"
	"github.com/dmreyes/minder/internal/report"
	"github.com/dmreyes/minder/internal/store"
	"github.com/dmreyes/minder/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function closes the store's database connection and
// must be called on shutdown (typically via defer). It is always non-nil.
//
// An unreachable embedding provider is not fatal: notes save without
// vectors and every semantic path falls back to keyword search.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	st, err := store.New(store.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Printf("WARNING: store close: %v", err)
		}
	}

	provider := embedding.NewOllamaProvider(cfg.OllamaHost, cfg.EmbedModel)
	healthCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if !provider.IsHealthy(healthCtx) {
		log.Printf("WARNING: Ollama not reachable at %s: semantic search degrades to keyword matching", cfg.OllamaHost)
	}

	resolver, err := guidance.NewResolver(st, guidance.Config{
		TTL:       cfg.CacheTTL,
		CacheSize: cfg.CacheSize,
	})
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("creating instruction resolver: %w", err)
	}

	builder := report.NewBuilder(st, st, st, resolver, provider)

	s := server.NewMCPServer(
		"minder",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register context tools ---

	projectCtx := ctxtools.NewProjectContextTool(builder)
	s.AddTool(projectCtx.Definition(), projectCtx.Handle)

	taskCtx := ctxtools.NewTaskContextTool(builder)
	s.AddTool(taskCtx.Definition(), taskCtx.Handle)

	memoryCtx := ctxtools.NewMemoryContextTool(builder)
	s.AddTool(memoryCtx.Definition(), memoryCtx.Handle)

	workPriorities := ctxtools.NewWorkPrioritiesTool(builder)
	s.AddTool(workPriorities.Definition(), workPriorities.Handle)

	// --- Register storage tools ---

	createProject := tools.NewCreateProjectTool(st)
	s.AddTool(createProject.Definition(), createProject.Handle)

	listProjects := tools.NewListProjectsTool(st)
	s.AddTool(listProjects.Definition(), listProjects.Handle)

	saveNote := tools.NewSaveNoteTool(st, provider)
	s.AddTool(saveNote.Definition(), saveNote.Handle)

	deleteNote := tools.NewDeleteNoteTool(st)
	s.AddTool(deleteNote.Definition(), deleteNote.Handle)

	saveTask := tools.NewSaveTaskTool(st)
	s.AddTool(saveTask.Definition(), saveTask.Handle)

	updateTaskStatus := tools.NewUpdateTaskStatusTool(st)
	s.AddTool(updateTaskStatus.Definition(), updateTaskStatus.Handle)

	deleteTask := tools.NewDeleteTaskTool(st)
	s.AddTool(deleteTask.Definition(), deleteTask.Handle)

	saveInstruction := tools.NewSaveInstructionTool(st, resolver)
	s.AddTool(saveInstruction.Definition(), saveInstruction.Handle)

	deleteInstruction := tools.NewDeleteInstructionTool(st, resolver)
	s.AddTool(deleteInstruction.Definition(), deleteInstruction.Handle)

	return s, cleanup, nil
}

// noop is the default cleanup when initialization fails early.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use Minder effectively.
func serverInstructions() string {
	return `You have access to Minder, a personal knowledge and task MCP server.

## What Minder stores
- Notes: knowledge worth keeping — decisions, discoveries, references
- Tasks: things to do, with priority, due date, and status
- Instructions: standing guidance scoped globally, per project, or per category
- Projects: named groupings for all of the above

## Retrieval tools (call these PROACTIVELY)
- get_project_context: call before starting work on a project — loads its
  description, active instructions, recent notes, open tasks, and statistics
- get_task_context: call before working on a specific task — loads its
  details, applicable instructions, sibling tasks, and related notes
- get_memory_context: call when the user references past knowledge —
  semantic search with automatic keyword fallback
- get_work_priorities: call when the user asks "what should I work on?" —
  tasks ranked by urgency (priority, due date, in-progress status)

## Storage tools
- save_note: persist knowledge as it comes up. Short searchable titles.
- save_task / update_task_status / delete_task: manage the task list
- save_instruction: record standing preferences ("always write tests first")
  with the narrowest scope that fits
- create_project / list_projects: organize work into projects

## Conventions
- Priorities run 1-5; 3 is neutral
- Due dates are YYYY-MM-DD
- Categories are free-form (work, personal, research, ...)
- Instructions with higher priority are listed first in context reports

Save observations as notes when the user makes a decision, fixes a bug, or
states a preference. Retrieve context before acting rather than guessing.`
}
