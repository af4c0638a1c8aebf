// Package vfs is an in-memory file store with per-file undo history.
//
// A Store may be backed by a directory: files are loaded from disk on first
// access and written back by Flush. Without a root it is purely in-memory.
package vfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound  = errors.New("file not found")
	ErrNoHistory = errors.New("no undo history")
	ErrTooLarge  = errors.New("file too large")
)

// Options configures a Store.
type Options struct {
	Root        string // backing directory; empty for memory-only
	UndoDepth   int    // snapshots kept per file (0 = unlimited)
	MaxFileSize int64  // bytes; 0 = unlimited
}

type snapshot struct {
	content string
	exists  bool
}

type entry struct {
	content string
	exists  bool
	dirty   bool
	history []snapshot
}

// Store holds file contents keyed by slash-separated relative path.
// All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	opts  Options
	files map[string]*entry
}

// New creates a Store.
func New(opts Options) *Store {
	return &Store{
		opts:  opts,
		files: make(map[string]*entry),
	}
}

// Root returns the backing directory, or "" for a memory-only store.
func (s *Store) Root() string {
	return s.opts.Root
}

// Key normalizes path to the store's key form. Absolute paths under the
// root are made relative to it.
func (s *Store) Key(path string) string {
	if s.opts.Root != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(s.opts.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// Put seeds content without recording history or marking the file dirty.
func (s *Store) Put(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[s.Key(path)] = &entry{content: content, exists: true}
}

// Read returns the content of path.
func (s *Store) Read(path string) (string, error) {
	key := s.Key(path)

	s.mu.RLock()
	if e, ok := s.files[key]; ok {
		content, exists := e.content, e.exists
		s.mu.RUnlock()
		if !exists {
			return "", fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return content, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.load(key)
	if err != nil {
		return "", err
	}
	if !e.exists {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return e.content, nil
}

// Exists reports whether path currently has content.
func (s *Store) Exists(path string) bool {
	_, err := s.Read(path)
	return err == nil
}

// Write replaces the content of path, recording the previous state for Undo.
func (s *Store) Write(path, content string) error {
	return s.Update(path, func(string, bool) (string, error) {
		return content, nil
	})
}

// Update runs fn with the current content of path and stores its result.
// The store is locked for the duration of fn, so concurrent updates of the
// same store are serialized. If fn returns an error nothing is changed.
func (s *Store) Update(path string, fn func(current string, exists bool) (string, error)) error {
	key := s.Key(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.load(key)
	if err != nil {
		return err
	}

	next, err := fn(e.content, e.exists)
	if err != nil {
		return err
	}
	if e.exists && next == e.content {
		return nil
	}

	s.pushHistory(e)
	e.content = next
	e.exists = true
	e.dirty = true
	return nil
}

// Undo restores the state of path before its most recent change and
// returns the restored content.
func (s *Store) Undo(path string) (string, error) {
	key := s.Key(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.files[key]
	if !ok || len(e.history) == 0 {
		return "", fmt.Errorf("%s: %w", key, ErrNoHistory)
	}

	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.content = last.content
	e.exists = last.exists
	e.dirty = true
	return e.content, nil
}

// HistoryLen returns the number of undo steps available for path.
func (s *Store) HistoryLen(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.files[s.Key(path)]; ok {
		return len(e.history)
	}
	return 0
}

// Dirty returns the paths changed since the last Flush, sorted.
func (s *Store) Dirty() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var paths []string
	for key, e := range s.files {
		if e.dirty {
			paths = append(paths, key)
		}
	}
	sort.Strings(paths)
	return paths
}

// Flush writes every dirty file to the backing directory. Files whose
// latest state is "does not exist" are removed. A memory-only store only
// clears its dirty flags.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.files))
	for key, e := range s.files {
		if e.dirty {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		e := s.files[key]
		if s.opts.Root != "" {
			fullPath := filepath.Join(s.opts.Root, filepath.FromSlash(key))
			if e.exists {
				if err := writeFileAtomic(fullPath, e.content); err != nil {
					return fmt.Errorf("flush %s: %w", key, err)
				}
			} else if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("flush %s: %w", key, err)
			}
		}
		e.dirty = false
	}
	return nil
}

// load returns the entry for key, reading it from disk on first access.
// Callers must hold the write lock.
func (s *Store) load(key string) (*entry, error) {
	if e, ok := s.files[key]; ok {
		return e, nil
	}

	e := &entry{}
	if s.opts.Root != "" {
		fullPath := filepath.Join(s.opts.Root, filepath.FromSlash(key))
		info, err := os.Stat(fullPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("stat %s: %w", key, err)
		case info.IsDir():
			return nil, fmt.Errorf("%s is a directory", key)
		case s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize:
			return nil, fmt.Errorf("%s (%d bytes, limit %d): %w", key, info.Size(), s.opts.MaxFileSize, ErrTooLarge)
		default:
			data, err := os.ReadFile(fullPath)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", key, err)
			}
			e.content = string(data)
			e.exists = true
		}
	}

	s.files[key] = e
	return e, nil
}

func (s *Store) pushHistory(e *entry) {
	e.history = append(e.history, snapshot{content: e.content, exists: e.exists})
	if depth := s.opts.UndoDepth; depth > 0 && len(e.history) > depth {
		e.history = append([]snapshot(nil), e.history[len(e.history)-depth:]...)
	}
}
