package tools

import (
	"context"
	"fmt"

	"github.com/dmreyes/minder/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// SaveTaskTool handles the save_task MCP tool.
type SaveTaskTool struct {
	store *store.Store
}

// NewSaveTaskTool creates a SaveTaskTool.
func NewSaveTaskTool(st *store.Store) *SaveTaskTool {
	return &SaveTaskTool{store: st}
}

// Definition returns the MCP tool definition for save_task.
func (t *SaveTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("save_task",
		mcp.WithDescription(
			"Create a task. Tasks surface in get_work_priorities ranked by urgency, "+
				"computed from priority, due date, and status.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("What needs doing"),
		),
		mcp.WithString("description",
			mcp.Description("Details, acceptance criteria, links"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority 1-5 (default: 3)"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date as YYYY-MM-DD"),
		),
		mcp.WithString("status",
			mcp.Description("todo (default), in_progress, or done"),
		),
		mcp.WithString("project",
			mcp.Description("Project this task belongs to"),
		),
		mcp.WithString("category",
			mcp.Description("Category, e.g. work, personal"),
		),
	)
}

// Handle processes the save_task tool call.
func (t *SaveTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	due, err := parseDue(req.GetString("due_date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := req.GetString("status", "")
	switch status {
	case "", store.StatusTodo, store.StatusInProgress, store.StatusDone:
	default:
		return mcp.NewToolResultError("'status' must be todo, in_progress, or done"), nil
	}

	task, err := t.store.SaveTask(ctx, store.SaveTaskParams{
		Title:       title,
		Description: req.GetString("description", ""),
		Priority:    intArg(req, "priority", 0),
		DueDate:     due,
		Status:      status,
		Project:     req.GetString("project", ""),
		Category:    req.GetString("category", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save task: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved task %q (id: %s)", task.Title, task.ID)), nil
}

// UpdateTaskStatusTool handles the update_task_status MCP tool.
type UpdateTaskStatusTool struct {
	store *store.Store
}

// NewUpdateTaskStatusTool creates an UpdateTaskStatusTool.
func NewUpdateTaskStatusTool(st *store.Store) *UpdateTaskStatusTool {
	return &UpdateTaskStatusTool{store: st}
}

// Definition returns the MCP tool definition for update_task_status.
func (t *UpdateTaskStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task_status",
		mcp.WithDescription("Move a task between todo, in_progress, and done."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task ID"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New status: todo, in_progress, or done"),
		),
	)
}

// Handle processes the update_task_status tool call.
func (t *UpdateTaskStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("task_id", "")
	if id == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	status := req.GetString("status", "")
	switch status {
	case store.StatusTodo, store.StatusInProgress, store.StatusDone:
	default:
		return mcp.NewToolResultError("'status' must be todo, in_progress, or done"), nil
	}

	task, err := t.store.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update task: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Task %q is now %s", task.Title, task.Status)), nil
}

// DeleteTaskTool handles the delete_task MCP tool.
type DeleteTaskTool struct {
	store *store.Store
}

// NewDeleteTaskTool creates a DeleteTaskTool.
func NewDeleteTaskTool(st *store.Store) *DeleteTaskTool {
	return &DeleteTaskTool{store: st}
}

// Definition returns the MCP tool definition for delete_task.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Permanently delete a task by ID."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task ID"),
		),
	)
}

// Handle processes the delete_task tool call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("task_id", "")
	if id == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	if err := t.store.DeleteTask(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete task: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted task %s", id)), nil
}
