package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kvit-s/kvit-patch/internal/config"
	"github.com/kvit-s/kvit-patch/internal/vfs"
)

// UndoTool reverts the most recent change to a file in the store
type UndoTool struct {
	BaseEditTool
}

func NewUndoTool(base BaseEditTool) *UndoTool {
	return &UndoTool{BaseEditTool: base}
}

func (t *UndoTool) Name() string { return "Undo" }

func (t *UndoTool) Description() string {
	return "Revert the most recent edit to a file."
}

func (t *UndoTool) JSONSchema() map[string]any {
	return pathSchema("File to revert, relative to the workspace root")
}

func (t *UndoTool) Check(ctx context.Context, args json.RawMessage) error {
	params, err := parsePathArgs(args)
	if err != nil {
		return err
	}
	_, err = t.ValidatePath(params.Path, config.AccessWrite)
	return err
}

func (t *UndoTool) Call(ctx context.Context, args json.RawMessage) (any, error) {
	params, err := parsePathArgs(args)
	if err != nil {
		return nil, err
	}
	key, err := t.ValidatePath(params.Path, config.AccessWrite)
	if err != nil {
		return nil, err
	}

	content, err := t.Store.Undo(key)
	if errors.Is(err, vfs.ErrNoHistory) {
		return nil, SemanticErrorf("nothing to undo for %s", key)
	}
	if err != nil {
		return nil, WrapAsRuntime(err)
	}

	return map[string]any{
		"success":   true,
		"path":      key,
		"exists":    t.Store.Exists(key),
		"lines":     countLines(content),
		"remaining": t.Store.HistoryLen(key),
	}, nil
}
