package tools

import (
	"context"
	"fmt"
	"log"

	"github.com/dmreyes/minder/internal/embedding"
	"github.com/dmreyes/minder/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// SaveNoteTool handles the save_note MCP tool. Embeddings are computed at
// save time on a best-effort basis: if the provider is down the note is
// stored without a vector and remains findable via keyword search.
type SaveNoteTool struct {
	store *store.Store
	embed embedding.Provider
}

// NewSaveNoteTool creates a SaveNoteTool.
func NewSaveNoteTool(st *store.Store, embed embedding.Provider) *SaveNoteTool {
	return &SaveNoteTool{store: st, embed: embed}
}

// Definition returns the MCP tool definition for save_note.
func (t *SaveNoteTool) Definition() mcp.Tool {
	return mcp.NewTool("save_note",
		mcp.WithDescription(
			"Save a knowledge note. Notes are embedded for semantic retrieval and "+
				"surface later through get_memory_context and get_task_context.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short, searchable title"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The note body"),
		),
		mcp.WithString("category",
			mcp.Description("Category, e.g. work, personal, research"),
		),
		mcp.WithString("project",
			mcp.Description("Project this note belongs to"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority 1-5 (default: 3)"),
		),
	)
}

// Handle processes the save_note tool call.
func (t *SaveNoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	vector, err := t.embed.Embed(ctx, title+" "+content)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("WARNING: embedding skipped for note %q: %v", title, err)
		vector = nil
	}

	n, err := t.store.SaveNote(ctx, store.SaveNoteParams{
		Title:     title,
		Content:   content,
		Category:  req.GetString("category", ""),
		Project:   req.GetString("project", ""),
		Tags:      splitTags(req.GetString("tags", "")),
		Priority:  intArg(req, "priority", 0),
		Embedding: vector,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save note: %v", err)), nil
	}

	msg := fmt.Sprintf("Saved note %q (id: %s)", n.Title, n.ID)
	if len(n.Embedding) == 0 {
		msg += " — embedding unavailable, note is keyword-searchable only"
	}
	return mcp.NewToolResultText(msg), nil
}

// DeleteNoteTool handles the delete_note MCP tool.
type DeleteNoteTool struct {
	store *store.Store
}

// NewDeleteNoteTool creates a DeleteNoteTool.
func NewDeleteNoteTool(st *store.Store) *DeleteNoteTool {
	return &DeleteNoteTool{store: st}
}

// Definition returns the MCP tool definition for delete_note.
func (t *DeleteNoteTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_note",
		mcp.WithDescription("Permanently delete a note by ID."),
		mcp.WithString("note_id",
			mcp.Required(),
			mcp.Description("The note ID"),
		),
	)
}

// Handle processes the delete_note tool call.
func (t *DeleteNoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("note_id", "")
	if id == "" {
		return mcp.NewToolResultError("'note_id' is required"), nil
	}

	if err := t.store.DeleteNote(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted note %s", id)), nil
}
