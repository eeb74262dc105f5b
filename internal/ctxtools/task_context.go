package ctxtools

import (
	"context"
	"fmt"

	"github.com/dmreyes/minder/internal/report"
	"github.com/mark3labs/mcp-go/mcp"
)

// TaskContextTool handles the get_task_context MCP tool.
type TaskContextTool struct {
	builder *report.Builder
}

// NewTaskContextTool creates a TaskContextTool.
func NewTaskContextTool(builder *report.Builder) *TaskContextTool {
	return &TaskContextTool{builder: builder}
}

// Definition returns the MCP tool definition for get_task_context.
func (t *TaskContextTool) Definition() mcp.Tool {
	return mcp.NewTool("get_task_context",
		mcp.WithDescription(
			"Get the working context for a single task: its details, applicable instructions, "+
				"other open tasks in the same project, and notes semantically related to it.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task ID"),
		),
		mcp.WithString("detail_level",
			mcp.Description("How much detail to include: basic, standard (default), or comprehensive"),
		),
		mcp.WithBoolean("include_related",
			mcp.Description("Include other open tasks from the same project (default: true)"),
		),
		mcp.WithBoolean("semantic_search",
			mcp.Description("Find notes related to the task via semantic search (default: true)"),
		),
	)
}

// Handle processes the get_task_context tool call.
func (t *TaskContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := req.GetString("task_id", "")
	if taskID == "" {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	level := report.ParseLevel(req.GetString("detail_level", ""))

	tc, err := t.builder.BuildTaskContext(ctx, report.TaskContextRequest{
		TaskID:         taskID,
		Level:          level,
		IncludeRelated: boolArg(req, "include_related", true),
		SemanticSearch: boolArg(req, "semantic_search", true),
	})
	if err != nil {
		return reportError(ctx, fmt.Errorf("task %q: %w", taskID, err))
	}

	return mcp.NewToolResultText(report.RenderTaskContext(tc, level)), nil
}
