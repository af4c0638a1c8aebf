package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WorkspaceEnv overrides workspace.root when set.
const WorkspaceEnv = "KVIT_PATCH_WORKSPACE"

type Config struct {
	Workspace struct {
		Root          string   `yaml:"root"`
		DeniedPaths   []string `yaml:"denied_paths"`
		ReadOnlyPaths []string `yaml:"read_only_paths"`
	} `yaml:"workspace"`

	Log struct {
		File        string `yaml:"file"`        // empty disables logging
		Development bool   `yaml:"development"` // readable encoder config
	} `yaml:"log"`

	Edit EditConfig `yaml:"edit"`

	UI struct {
		NoColor bool `yaml:"no_color"`
		Verbose int  `yaml:"verbose"` // >0 prints debug lines and preview diffs
	} `yaml:"ui"`
}

// EditConfig configures the Edit tool and the virtual file store behind it
type EditConfig struct {
	MaxFileSizeKB int   `yaml:"max_file_size_kb"`
	PreviewMode   bool  `yaml:"preview_mode"` // show diff and ask before writing
	DiffContext   int   `yaml:"diff_context"` // context lines in preview diffs (default: 3)
	UndoDepth     int   `yaml:"undo_depth"`   // undo entries kept per file (default: 20)
	ReportCRLF    *bool `yaml:"report_crlf"`  // nil = default true
}

// GetReportCRLF returns whether edit results flag CRLF originals.
// Defaults to true.
func (e *EditConfig) GetReportCRLF() bool {
	if e.ReportCRLF == nil {
		return true
	}
	return *e.ReportCRLF
}

// Default returns a config with every default applied and the current
// directory as workspace.
func Default() *Config {
	var cfg Config
	if err := cfg.finalize(); err != nil {
		// Only fails when the working directory cannot be resolved.
		cfg.Workspace.Root = "."
	}
	return &cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) finalize() error {
	// Apply environment overrides
	if root := os.Getenv(WorkspaceEnv); root != "" {
		c.Workspace.Root = root
	}
	if c.Workspace.Root == "" {
		c.Workspace.Root = "."
	}

	// Convert workspace root to absolute path
	absRoot, err := filepath.Abs(expandPath(c.Workspace.Root))
	if err != nil {
		return fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	c.Workspace.Root = absRoot

	if c.Edit.MaxFileSizeKB == 0 {
		c.Edit.MaxFileSizeKB = 1024
	}
	if c.Edit.DiffContext == 0 {
		c.Edit.DiffContext = 3
	}
	if c.Edit.UndoDepth == 0 {
		c.Edit.UndoDepth = 20
	}
	return nil
}

// SetWorkspaceRoot replaces the workspace root, e.g. from a command-line flag.
func (c *Config) SetWorkspaceRoot(root string) error {
	absRoot, err := filepath.Abs(expandPath(root))
	if err != nil {
		return fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	c.Workspace.Root = absRoot
	return nil
}
