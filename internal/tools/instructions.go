package tools

import (
	"context"
	"fmt"

	"github.com/dmreyes/minder/internal/guidance"
	"github.com/dmreyes/minder/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// SaveInstructionTool handles the save_instruction MCP tool. Saving an
// instruction invalidates the resolver cache for its scope so the change
// is visible on the next context request.
type SaveInstructionTool struct {
	store    *store.Store
	resolver *guidance.Resolver
}

// NewSaveInstructionTool creates a SaveInstructionTool.
func NewSaveInstructionTool(st *store.Store, resolver *guidance.Resolver) *SaveInstructionTool {
	return &SaveInstructionTool{store: st, resolver: resolver}
}

// Definition returns the MCP tool definition for save_instruction.
func (t *SaveInstructionTool) Definition() mcp.Tool {
	return mcp.NewTool("save_instruction",
		mcp.WithDescription(
			"Save a standing instruction that shapes future context reports. "+
				"Scope it globally, to a project, or to a category.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short instruction title"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("The instruction itself"),
		),
		mcp.WithString("scope",
			mcp.Description("Scope kind: global (default), project, or category"),
		),
		mcp.WithString("target",
			mcp.Description("Project or category name; required unless scope is global"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority 1-5, higher sorts first (default: 3)"),
		),
	)
}

// Handle processes the save_instruction tool call.
func (t *SaveInstructionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	body := req.GetString("body", "")
	if body == "" {
		return mcp.NewToolResultError("'body' is required"), nil
	}

	scope, err := parseScope(req.GetString("scope", ""), req.GetString("target", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in, err := t.store.SaveInstruction(ctx, store.SaveInstructionParams{
		Title:    title,
		Body:     body,
		Scope:    scope,
		Priority: intArg(req, "priority", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save instruction: %v", err)), nil
	}

	t.resolver.InvalidateScope(scope)

	return mcp.NewToolResultText(fmt.Sprintf("Saved instruction %q [%s] (id: %s)", in.Title, in.Scope, in.ID)), nil
}

// DeleteInstructionTool handles the delete_instruction MCP tool.
type DeleteInstructionTool struct {
	store    *store.Store
	resolver *guidance.Resolver
}

// NewDeleteInstructionTool creates a DeleteInstructionTool.
func NewDeleteInstructionTool(st *store.Store, resolver *guidance.Resolver) *DeleteInstructionTool {
	return &DeleteInstructionTool{store: st, resolver: resolver}
}

// Definition returns the MCP tool definition for delete_instruction.
func (t *DeleteInstructionTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_instruction",
		mcp.WithDescription("Permanently delete a standing instruction by ID."),
		mcp.WithString("instruction_id",
			mcp.Required(),
			mcp.Description("The instruction ID"),
		),
	)
}

// Handle processes the delete_instruction tool call.
func (t *DeleteInstructionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("instruction_id", "")
	if id == "" {
		return mcp.NewToolResultError("'instruction_id' is required"), nil
	}

	scope, err := t.store.DeleteInstruction(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete instruction: %v", err)), nil
	}

	t.resolver.InvalidateScope(scope)

	return mcp.NewToolResultText(fmt.Sprintf("Deleted instruction %s", id)), nil
}
