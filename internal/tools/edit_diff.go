package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kvit-s/kvit-patch/internal/config"
	"github.com/kvit-s/kvit-patch/internal/patch"
	"github.com/kvit-s/kvit-patch/internal/vfs"
)

// DiffEditTool applies a unified diff to one file in the store
type DiffEditTool struct {
	BaseEditTool
	pending *PendingEdits
}

// NewDiffEditTool creates the Edit tool. pending is shared with the
// confirm/cancel tools and may be nil when preview mode is off.
func NewDiffEditTool(base BaseEditTool, pending *PendingEdits) *DiffEditTool {
	return &DiffEditTool{BaseEditTool: base, pending: pending}
}

func (t *DiffEditTool) Name() string {
	return "Edit"
}

func (t *DiffEditTool) Description() string {
	return "Apply a unified diff (@@ -a,b +c,d @@ hunks) to a file. All hunks apply or none do."
}

func (t *DiffEditTool) JSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File to edit, relative to the workspace root",
			},
			"diff": map[string]any{
				"type":        "string",
				"description": "Unified diff hunks. Context and '-' lines must match the file at the header's line numbers.",
			},
		},
		"required": []string{"path", "diff"},
	}
}

type editArgs struct {
	Path string `json:"path"`
	Diff string `json:"diff"`
}

func (t *DiffEditTool) parseArgs(args json.RawMessage) (editArgs, error) {
	var params editArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return params, SemanticErrorf("invalid arguments: %v", err)
	}
	if params.Path == "" {
		return params, SemanticError("path is required")
	}
	if strings.TrimSpace(params.Diff) == "" {
		return params, SemanticError("diff cannot be empty")
	}
	return params, nil
}

func (t *DiffEditTool) Check(ctx context.Context, args json.RawMessage) error {
	params, err := t.parseArgs(args)
	if err != nil {
		return err
	}
	if _, err := t.ValidatePath(params.Path, config.AccessWrite); err != nil {
		return err
	}
	if t.pending != nil && t.pending.Has() {
		return SemanticErrorWithDetails("an edit is already pending confirmation", map[string]any{
			"pending_path": t.pending.Path(),
			"next_step":    EditPendingNextStep,
		})
	}
	return nil
}

func (t *DiffEditTool) Call(ctx context.Context, args json.RawMessage) (any, error) {
	params, err := t.parseArgs(args)
	if err != nil {
		return nil, err
	}
	key, err := t.ValidatePath(params.Path, config.AccessWrite)
	if err != nil {
		return nil, err
	}

	if t.Config.Edit.PreviewMode && t.pending != nil {
		return t.preview(key, params.Diff)
	}

	start := time.Now()
	var before, after string
	var created bool
	err = t.Store.Update(key, func(current string, exists bool) (string, error) {
		next, err := patch.Apply(current, params.Diff)
		if err != nil {
			return "", err
		}
		before, after, created = current, next, !exists
		return next, nil
	})
	if err != nil {
		t.logger().PatchRejected(key, err)
		return nil, t.wrapError(key, err)
	}

	t.logger().PatchApplied(key, countLines(before), countLines(after), time.Since(start))
	return t.buildResult(key, before, after, created), nil
}

// preview computes the result without writing it and parks it for Edit.confirm
func (t *DiffEditTool) preview(key, diff string) (any, error) {
	current, err := t.Store.Read(key)
	exists := err == nil
	if err != nil && !errors.Is(err, vfs.ErrNotFound) {
		return nil, WrapAsRuntime(err)
	}

	next, err := patch.Apply(current, diff)
	if err != nil {
		t.logger().PatchRejected(key, err)
		return nil, t.wrapError(key, err)
	}

	t.pending.Set(pendingEdit{path: key, before: current, after: next, existed: exists})

	result := t.buildResult(key, current, next, !exists)
	result["status"] = "pending_confirmation"
	result["next_step"] = EditPendingNextStep
	return result, nil
}

func (t *DiffEditTool) wrapError(key string, err error) error {
	var pe *patch.Error
	if errors.As(err, &pe) {
		return FromPatchError(key, err)
	}
	return WrapAsRuntime(err)
}

func (t *DiffEditTool) buildResult(key, before, after string, created bool) map[string]any {
	action := "updated"
	switch {
	case created:
		action = "created"
	case before == after:
		action = "unchanged"
	}
	diff, _ := generateUnifiedDiff(before, after, key, t.Config.Edit.DiffContext)
	diff, truncated := truncateMiddle(diff, maxPreviewLines, maxPreviewBytes, keptPerSide)

	result := map[string]any{
		"success":      true,
		"path":         key,
		"action":       action,
		"lines_before": countLines(before),
		"lines_after":  countLines(after),
		"diff":         diff,
	}
	if truncated {
		result["diff_truncated"] = true
	}
	if t.Config.Edit.GetReportCRLF() && strings.Contains(before, "\r\n") {
		result["crlf_normalized"] = true
	}
	return result
}

type pendingEdit struct {
	path    string
	before  string
	after   string
	existed bool
}

// PendingEdits holds at most one previewed edit awaiting confirmation
type PendingEdits struct {
	mu   sync.Mutex
	edit *pendingEdit
}

func NewPendingEdits() *PendingEdits {
	return &PendingEdits{}
}

// Has reports whether an edit is waiting
func (p *PendingEdits) Has() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edit != nil
}

// Path returns the path of the waiting edit, or ""
func (p *PendingEdits) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit == nil {
		return ""
	}
	return p.edit.path
}

func (p *PendingEdits) Set(e pendingEdit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edit = &e
}

// Take removes and returns the waiting edit
func (p *PendingEdits) Take() (pendingEdit, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.edit == nil {
		return pendingEdit{}, false
	}
	e := *p.edit
	p.edit = nil
	return e, true
}
