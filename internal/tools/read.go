package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kvit-s/kvit-patch/internal/config"
	"github.com/kvit-s/kvit-patch/internal/vfs"
)

// ReadTool returns file content from the store with line numbers, so hunk
// headers can be written against it
type ReadTool struct {
	BaseEditTool
}

func NewReadTool(base BaseEditTool) *ReadTool {
	return &ReadTool{BaseEditTool: base}
}

func (t *ReadTool) Name() string { return "Read" }

func (t *ReadTool) Description() string {
	return "Read a file with 1-based line numbers."
}

func (t *ReadTool) JSONSchema() map[string]any {
	return pathSchema("File to read, relative to the workspace root")
}

func (t *ReadTool) Check(ctx context.Context, args json.RawMessage) error {
	params, err := parsePathArgs(args)
	if err != nil {
		return err
	}
	_, err = t.ValidatePath(params.Path, config.AccessRead)
	return err
}

func (t *ReadTool) Call(ctx context.Context, args json.RawMessage) (any, error) {
	params, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	key, err := t.ValidatePath(params.Path, config.AccessRead)
	if err != nil {
		return nil, err
	}

	content, err := t.Store.Read(key)
	if errors.Is(err, vfs.ErrNotFound) {
		return nil, SemanticErrorf("file does not exist: %s", key)
	}
	if err != nil {
		return nil, WrapAsRuntime(err)
	}

	return map[string]any{
		"path":    key,
		"lines":   countLines(content),
		"content": numberLines(content),
	}, nil
}

// numberLines prefixes each line with its 1-based number
func numberLines(content string) string {
	if content == "" {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	width := len(fmt.Sprint(len(lines)))
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%*d\t%s\n", width, i+1, line)
	}
	return sb.String()
}
