// Package ctxtools provides the MCP tool handlers for context retrieval.
//
// Each tool follows the same pattern as internal/tools:
// - A struct with dependencies (report.Builder) injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Tools are read-only: they gather stored knowledge into markdown reports
// for the calling agent. Validation failures come back as tool errors;
// cancellation propagates as a Go error so the server can abandon the call.
package ctxtools

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmreyes/minder/internal/report"
	"github.com/dmreyes/minder/internal/store"
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

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// floatArg extracts a float argument from a tool request.
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}

// reportError maps a report build failure to a tool result. Cancellation
// is returned as a Go error so no partial report reaches the client.
func reportError(ctx context.Context, err error) (*mcp.CallToolResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return mcp.NewToolResultError(err.Error()), nil
	case errors.Is(err, report.ErrInvalid):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("failed to build report: %v", err)), nil
	}
}
