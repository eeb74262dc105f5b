package ctxtools

import (
	"context"

	"github.com/dmreyes/minder/internal/report"
	"github.com/mark3labs/mcp-go/mcp"
)

// MemoryContextTool handles the get_memory_context MCP tool.
type MemoryContextTool struct {
	builder *report.Builder
}

// NewMemoryContextTool creates a MemoryContextTool.
func NewMemoryContextTool(builder *report.Builder) *MemoryContextTool {
	return &MemoryContextTool{builder: builder}
}

// Definition returns the MCP tool definition for get_memory_context.
func (t *MemoryContextTool) Definition() mcp.Tool {
	return mcp.NewTool("get_memory_context",
		mcp.WithDescription(
			"Search stored notes related to a topic. Tries semantic search first and falls "+
				"back to keyword matching over titles, content, categories, projects, and tags "+
				"when no embedding is available or nothing clears the similarity floor.",
		),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("The topic to search for — natural language works best"),
		),
		mcp.WithString("category",
			mcp.Description("Restrict to one category"),
		),
		mcp.WithString("project",
			mcp.Description("Restrict to one project"),
		),
		mcp.WithNumber("min_priority",
			mcp.Description("Only notes at or above this priority (1-5)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10)"),
		),
		mcp.WithNumber("min_similarity",
			mcp.Description("Similarity floor for semantic matches, 0.0-1.0 (default: 0)"),
		),
		mcp.WithString("detail_level",
			mcp.Description("How much detail to include: basic, standard (default), or comprehensive"),
		),
	)
}

// Handle processes the get_memory_context tool call.
func (t *MemoryContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := req.GetString("topic", "")
	if topic == "" {
		return mcp.NewToolResultError("'topic' is required"), nil
	}

	level := report.ParseLevel(req.GetString("detail_level", ""))

	mc, err := t.builder.BuildMemoryContext(ctx, report.MemoryContextRequest{
		Topic:         topic,
		Category:      req.GetString("category", ""),
		Project:       req.GetString("project", ""),
		MinPriority:   intArg(req, "min_priority", 0),
		Limit:         intArg(req, "limit", 0),
		MinSimilarity: floatArg(req, "min_similarity", 0),
	})
	if err != nil {
		return reportError(ctx, err)
	}

	return mcp.NewToolResultText(report.RenderMemoryContext(mc, level)), nil
}
