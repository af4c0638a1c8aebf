package tools

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kvit-s/kvit-patch/internal/config"
	"github.com/kvit-s/kvit-patch/internal/logging"
	"github.com/kvit-s/kvit-patch/internal/vfs"
)

// EditPendingNextStep is the message shown when an edit is pending confirmation
const EditPendingNextStep = "Call Edit.confirm to write the change or Edit.cancel to discard it."

// BaseEditTool provides common functionality for tools working on the file store
type BaseEditTool struct {
	Config *config.Config
	Store  *vfs.Store
	Logger *logging.Logger
}

// ValidatePath checks workspace permissions and returns the store key for path
func (b *BaseEditTool) ValidatePath(path string, access config.AccessType) (string, error) {
	result, err := b.Config.CheckPathPermission(path, access)
	switch result {
	case config.PermissionDenied:
		return "", SemanticErrorf("access denied: %v", err)
	case config.PermissionReadOnly:
		return "", SemanticErrorf("%v", err)
	}
	return b.Store.Key(b.Config.ResolvePath(path)), nil
}

// logger returns the configured logger or a no-op one
func (b *BaseEditTool) logger() *logging.Logger {
	if b.Logger == nil {
		return logging.Nop()
	}
	return b.Logger
}

// generateUnifiedDiff renders a preview diff between two versions of a file
func generateUnifiedDiff(oldContent, newContent, filename string, context int) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// countLines counts lines the way the patch engine splits them
func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
