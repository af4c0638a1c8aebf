package tools

import (
	"github.com/kvit-s/kvit-patch/internal/config"
	"github.com/kvit-s/kvit-patch/internal/logging"
	"github.com/kvit-s/kvit-patch/internal/vfs"
)

// SetupConfig contains all dependencies needed to set up the tool registry
type SetupConfig struct {
	Cfg    *config.Config
	Store  *vfs.Store
	Logger *logging.Logger // optional
}

// SetupRegistry creates the registry with Read, Edit, and Undo, plus
// Edit.confirm and Edit.cancel when preview mode is on.
func SetupRegistry(sc SetupConfig) *Registry {
	logger := sc.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	registry := NewRegistry(logger)
	base := BaseEditTool{Config: sc.Cfg, Store: sc.Store, Logger: logger}

	var pending *PendingEdits
	if sc.Cfg.Edit.PreviewMode {
		pending = NewPendingEdits()
		registry.Enable(NewEditConfirmTool(base, pending))
		registry.Enable(NewEditCancelTool(pending))
	}

	registry.Enable(NewReadTool(base))
	registry.Enable(NewDiffEditTool(base, pending))
	registry.Enable(NewUndoTool(base))
	return registry
}
