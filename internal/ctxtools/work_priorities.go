package ctxtools

import (
	"context"

	"github.com/dmreyes/minder/internal/report"
	"github.com/dmreyes/minder/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// WorkPrioritiesTool handles the get_work_priorities MCP tool.
type WorkPrioritiesTool struct {
	builder *report.Builder
}

// NewWorkPrioritiesTool creates a WorkPrioritiesTool.
func NewWorkPrioritiesTool(builder *report.Builder) *WorkPrioritiesTool {
	return &WorkPrioritiesTool{builder: builder}
}

// Definition returns the MCP tool definition for get_work_priorities.
func (t *WorkPrioritiesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_work_priorities",
		mcp.WithDescription(
			"Get open tasks ranked by urgency for a time horizon, grouped into urgent, high, "+
				"medium, and low buckets with a summary of overdue and upcoming work.",
		),
		mcp.WithString("horizon",
			mcp.Description("Time horizon: today, week, month, or all (default: all)"),
		),
		mcp.WithString("category",
			mcp.Description("Restrict to one category"),
		),
		mcp.WithString("project",
			mcp.Description("Restrict to one project"),
		),
		mcp.WithNumber("min_priority",
			mcp.Description("Only tasks at or above this priority (1-5)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max tasks to consider (default: no limit)"),
		),
	)
}

// Handle processes the get_work_priorities tool call.
func (t *WorkPrioritiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	horizon := req.GetString("horizon", store.HorizonAll)
	switch horizon {
	case store.HorizonToday, store.HorizonWeek, store.HorizonMonth, store.HorizonAll:
	default:
		return mcp.NewToolResultError("'horizon' must be one of: today, week, month, all"), nil
	}

	wp, err := t.builder.BuildWorkPriorities(ctx, report.WorkPrioritiesRequest{
		Horizon:     horizon,
		Category:    req.GetString("category", ""),
		Project:     req.GetString("project", ""),
		MinPriority: intArg(req, "min_priority", 0),
		Limit:       intArg(req, "limit", 0),
	})
	if err != nil {
		return reportError(ctx, err)
	}

	return mcp.NewToolResultText(report.RenderWorkPriorities(wp)), nil
}
