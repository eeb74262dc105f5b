// Package tools provides the MCP tool handlers that write to the store.
//
// Each tool handler follows the same pattern as internal/ctxtools:
// - A struct with dependencies injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Tools are storage tools: they receive AI-generated content and persist it.
// Mutations that touch guidance instructions invalidate the resolver cache
// for the affected scope.
package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmreyes/minder/internal/guidance"
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// parseDue parses a due date argument. Accepts YYYY-MM-DD or RFC3339.
func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: use YYYY-MM-DD or RFC3339", s)
	}
	return &t, nil
}

// parseScope maps the scope/target argument pair to a guidance.Scope.
func parseScope(kind, target string) (guidance.Scope, error) {
	switch kind {
	case "", "global":
		return guidance.GlobalScope(), nil
	case "project":
		if target == "" {
			return guidance.Scope{}, fmt.Errorf("'target' is required for project scope")
		}
		return guidance.ProjectScope(target), nil
	case "category":
		if target == "" {
			return guidance.Scope{}, fmt.Errorf("'target' is required for category scope")
		}
		return guidance.CategoryScope(target), nil
	default:
		return guidance.Scope{}, fmt.Errorf("invalid scope %q: use global, project, or category", kind)
	}
}

// splitTags turns a comma-separated tag argument into a clean slice.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
