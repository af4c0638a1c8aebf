package tools

import (
	"context"
	"encoding/json"
	"time"
)

// EditConfirmTool writes the edit parked by Edit in preview mode
type EditConfirmTool struct {
	BaseEditTool
	pending *PendingEdits
}

func NewEditConfirmTool(base BaseEditTool, pending *PendingEdits) *EditConfirmTool {
	return &EditConfirmTool{BaseEditTool: base, pending: pending}
}

func (t *EditConfirmTool) Name() string { return "Edit.confirm" }

func (t *EditConfirmTool) Description() string {
	return "Write the pending edit shown by Edit in preview mode."
}

func (t *EditConfirmTool) JSONSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *EditConfirmTool) Check(ctx context.Context, args json.RawMessage) error {
	if !t.pending.Has() {
		return SemanticError("no edit is pending confirmation")
	}
	return nil
}

func (t *EditConfirmTool) Call(ctx context.Context, args json.RawMessage) (any, error) {
	edit, ok := t.pending.Take()
	if !ok {
		return nil, SemanticError("no edit is pending confirmation")
	}

	start := time.Now()
	err := t.Store.Update(edit.path, func(current string, exists bool) (string, error) {
		if current != edit.before || exists != edit.existed {
			return "", SemanticErrorWithDetails("file changed since the edit was previewed", map[string]any{
				"path":      edit.path,
				"next_step": "run Edit again against the current content",
			})
		}
		return edit.after, nil
	})
	if err != nil {
		t.logger().PatchRejected(edit.path, err)
		return nil, WrapAsRuntime(err)
	}

	t.logger().PatchApplied(edit.path, countLines(edit.before), countLines(edit.after), time.Since(start))
	return map[string]any{
		"success": true,
		"path":    edit.path,
		"status":  "applied",
	}, nil
}

// EditCancelTool discards the pending edit
type EditCancelTool struct {
	pending *PendingEdits
}

func NewEditCancelTool(pending *PendingEdits) *EditCancelTool {
	return &EditCancelTool{pending: pending}
}

func (t *EditCancelTool) Name() string { return "Edit.cancel" }

func (t *EditCancelTool) Description() string {
	return "Discard the pending edit shown by Edit in preview mode."
}

func (t *EditCancelTool) JSONSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *EditCancelTool) Check(ctx context.Context, args json.RawMessage) error {
	return nil
}

func (t *EditCancelTool) Call(ctx context.Context, args json.RawMessage) (any, error) {
	edit, ok := t.pending.Take()
	if !ok {
		return map[string]any{"success": true, "status": "nothing_pending"}, nil
	}
	return map[string]any{
		"success": true,
		"path":    edit.path,
		"status":  "cancelled",
	}, nil
}
