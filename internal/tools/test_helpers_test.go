package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kvit-s/kvit-patch/internal/config"
	"github.com/kvit-s/kvit-patch/internal/vfs"
)

// newTestConfig creates a minimal config rooted at dir.
func newTestConfig(dir string) *config.Config {
	cfg := &config.Config{}
	cfg.Workspace.Root = dir
	cfg.Edit.DiffContext = 3
	cfg.Edit.MaxFileSizeKB = 128
	return cfg
}

type testEnv struct {
	cfg      *config.Config
	store    *vfs.Store
	registry *Registry
}

func newTestEnv(t *testing.T, preview bool) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := newTestConfig(dir)
	cfg.Edit.PreviewMode = preview
	store := vfs.New(vfs.Options{Root: dir, UndoDepth: 10})
	return &testEnv{
		cfg:      cfg,
		store:    store,
		registry: SetupRegistry(SetupConfig{Cfg: cfg, Store: store}),
	}
}

func (e *testEnv) writeFile(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(e.cfg.Workspace.Root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) run(t *testing.T, tool string, args map[string]any) (map[string]any, error) {
	t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatal(err)
	}
	result, err := e.registry.Execute(context.Background(), tool, raw)
	if err != nil {
		return nil, err
	}
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result is %T, want map", result)
	}
	return m, nil
}
