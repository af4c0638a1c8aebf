package tools

import (
	"context"
	"encoding/json"
	"sort"
	"time"
)

// ToolSpec is an OpenAI-compatible function tool description
type ToolSpec struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

// ExecLogger receives one record per executed tool call
type ExecLogger interface {
	ToolExecuted(toolName string, duration time.Duration, err error)
}

// Registry manages enabled tools
type Registry struct {
	tools  map[string]Tool
	logger ExecLogger
}

func NewRegistry(logger ExecLogger) *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Enable adds a tool to the registry (makes it available for use)
func (r *Registry) Enable(t Tool) {
	r.tools[t.Name()] = t
}

// ListTools returns a sorted list of all enabled tool names
func (r *Registry) ListTools() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns tool specs for all registered tools in name order
func (r *Registry) Specs() []ToolSpec {
	names := r.ListTools()
	specs := make([]ToolSpec, 0, len(names))
	for _, name := range names {
		tool := r.tools[name]
		spec := ToolSpec{Type: "function"}
		spec.Function.Name = tool.Name()
		spec.Function.Description = tool.Description()
		spec.Function.Parameters = tool.JSONSchema()
		specs = append(specs, spec)
	}
	return specs
}

// Execute runs Check and then Call for the named tool.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool := r.tools[name]
	if tool == nil {
		return nil, SemanticErrorf("unknown tool: %s (available: %v)", name, r.ListTools())
	}

	start := time.Now()
	result, err := r.execute(ctx, tool, args)
	if r.logger != nil {
		r.logger.ToolExecuted(name, time.Since(start), err)
	}
	return result, err
}

func (r *Registry) execute(ctx context.Context, tool Tool, args json.RawMessage) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapAsRuntime(err)
	}
	if err := tool.Check(ctx, args); err != nil {
		return nil, err
	}
	return tool.Call(ctx, args)
}
