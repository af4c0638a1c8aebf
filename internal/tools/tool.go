package tools

import (
	"context"
	"encoding/json"
)

// Tool is the interface all file tools must implement
type Tool interface {
	// Name returns the tool identifier (e.g., "Edit", "Read")
	Name() string

	// Description returns a human-readable description
	Description() string

	// JSONSchema returns the OpenAI-compatible parameter schema
	JSONSchema() map[string]any

	// Check validates arguments and permissions before execution
	// Returns error if the tool should not be executed
	Check(ctx context.Context, args json.RawMessage) error

	// Call executes the tool with the given arguments
	// Check should be called before Call
	Call(ctx context.Context, args json.RawMessage) (any, error)
}

// pathArgs is the argument shape shared by tools that take a single path
type pathArgs struct {
	Path string `json:"path"`
}

func parsePathArgs(args json.RawMessage) (pathArgs, error) {
	var params pathArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return params, SemanticErrorf("invalid arguments: %v", err)
	}
	if params.Path == "" {
		return params, SemanticError("path is required")
	}
	return params, nil
}

func pathSchema(description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{"path"},
	}
}
