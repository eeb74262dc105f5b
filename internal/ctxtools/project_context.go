package ctxtools

import (
	"context"
	"fmt"

	"github.com/dmreyes/minder/internal/report"
	"github.com/mark3labs/mcp-go/mcp"
)

// ProjectContextTool handles the get_project_context MCP tool.
type ProjectContextTool struct {
	builder *report.Builder
}

// NewProjectContextTool creates a ProjectContextTool.
func NewProjectContextTool(builder *report.Builder) *ProjectContextTool {
	return &ProjectContextTool{builder: builder}
}

// Definition returns the MCP tool definition for get_project_context.
func (t *ProjectContextTool) Definition() mcp.Tool {
	return mcp.NewTool("get_project_context",
		mcp.WithDescription(
			"Get the full working context for a project: description, active instructions, "+
				"recent notes, open tasks, and summary statistics. Call this before starting "+
				"work on a project to load relevant background.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name (case-insensitive)"),
		),
		mcp.WithString("detail_level",
			mcp.Description("How much detail to include: basic, standard (default), or comprehensive"),
		),
		mcp.WithBoolean("include_completed",
			mcp.Description("Include completed tasks in the task list (default: false)"),
		),
		mcp.WithNumber("max_items",
			mcp.Description("Max notes and tasks per section (default: 10)"),
		),
	)
}

// Handle processes the get_project_context tool call.
func (t *ProjectContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	if project == "" {
		return mcp.NewToolResultError("'project' is required"), nil
	}

	level := report.ParseLevel(req.GetString("detail_level", ""))

	pc, err := t.builder.BuildProjectContext(ctx, report.ProjectContextRequest{
		Project:          project,
		Level:            level,
		IncludeCompleted: boolArg(req, "include_completed", false),
		MaxItems:         intArg(req, "max_items", 0),
	})
	if err != nil {
		return reportError(ctx, fmt.Errorf("project %q: %w", project, err))
	}

	return mcp.NewToolResultText(report.RenderProjectContext(pc, level)), nil
}
