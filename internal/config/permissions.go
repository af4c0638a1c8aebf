package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AccessType defines the type of file access being requested
type AccessType int

const (
	AccessRead AccessType = iota
	AccessWrite
)

// PermissionResult indicates the result of a permission check
type PermissionResult int

const (
	PermissionGranted PermissionResult = iota
	PermissionReadOnly
	PermissionDenied
)

// ResolvePath resolves path against the workspace root.
func (c *Config) ResolvePath(path string) string {
	path = expandPath(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(c.Workspace.Root, path))
}

// CheckPathPermission validates if a path can be accessed based on workspace config
func (c *Config) CheckPathPermission(path string, accessType AccessType) (PermissionResult, error) {
	absPath := c.ResolvePath(path)

	// Check denied paths first (highest priority)
	for _, denied := range c.Workspace.DeniedPaths {
		if withinDir(absPath, c.ResolvePath(denied)) {
			return PermissionDenied, fmt.Errorf("path is in denied_paths: %s", path)
		}
	}

	if !withinDir(absPath, c.Workspace.Root) {
		return PermissionDenied, fmt.Errorf("path outside workspace: %s", path)
	}

	if accessType == AccessWrite {
		for _, ro := range c.Workspace.ReadOnlyPaths {
			if withinDir(absPath, c.ResolvePath(ro)) {
				return PermissionReadOnly, fmt.Errorf("path is read-only: %s", path)
			}
		}
	}

	return PermissionGranted, nil
}

// withinDir reports whether path is dir or below it.
func withinDir(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
