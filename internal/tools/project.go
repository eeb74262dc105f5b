package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmreyes/minder/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateProjectTool handles the create_project MCP tool.
type CreateProjectTool struct {
	store *store.Store
}

// NewCreateProjectTool creates a CreateProjectTool.
func NewCreateProjectTool(st *store.Store) *CreateProjectTool {
	return &CreateProjectTool{store: st}
}

// Definition returns the MCP tool definition for create_project.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription(
			"Create a project to group notes, tasks, and instructions under. "+
				"Project names are case-insensitive and must be unique.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about"),
		),
	)
}

// Handle processes the create_project tool call.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	p, err := t.store.CreateProject(ctx, name, req.GetString("description", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create project: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created project %q (id: %s)", p.Name, p.ID)), nil
}

// ListProjectsTool handles the list_projects MCP tool.
type ListProjectsTool struct {
	store *store.Store
}

// NewListProjectsTool creates a ListProjectsTool.
func NewListProjectsTool(st *store.Store) *ListProjectsTool {
	return &ListProjectsTool{store: st}
}

// Definition returns the MCP tool definition for list_projects.
func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects with their descriptions."),
	)
}

// Handle processes the list_projects tool call.
func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := t.store.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list projects: %v", err)), nil
	}

	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects yet. Use create_project to add one."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d project(s):\n\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(&b, "- **%s**", p.Name)
		if p.Description != "" {
			fmt.Fprintf(&b, ": %s", p.Description)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}
