// Package workspace provides the workspace lock that serializes patch runs.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

const lockFileName = ".kvit-patch.lock"

// ErrLocked is returned when another process holds the workspace lock.
var ErrLocked = errors.New("workspace is locked")

// Lock represents an acquired workspace lock.
type Lock struct {
	mu       sync.Mutex
	file     *os.File
	lockPath string
}

// AcquireLock takes an exclusive, non-blocking flock on a lock file in
// workspaceRoot, so two patch runs never flush into the same tree at once.
// The returned Lock must be released with Release.
func AcquireLock(workspaceRoot string) (*Lock, error) {
	lockPath := filepath.Join(workspaceRoot, lockFileName)

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace lock file: %w", err)
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		holder := readHolder(lockFile)
		lockFile.Close()
		if holder != "" {
			return nil, fmt.Errorf("%w: %s is in use by pid %s", ErrLocked, workspaceRoot, holder)
		}
		return nil, fmt.Errorf("%w: %s", ErrLocked, workspaceRoot)
	}

	// PID for the error message of the next contender
	lockFile.Truncate(0)
	lockFile.Seek(0, 0)
	fmt.Fprintf(lockFile, "%d\n", os.Getpid())

	return &Lock{file: lockFile, lockPath: lockPath}, nil
}

func readHolder(f *os.File) string {
	buf := make([]byte, 32)
	n, _ := f.ReadAt(buf, 0)
	return strings.TrimSpace(string(buf[:n]))
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.lockPath
}

// Release unlocks and removes the lock file. It is safe to call more than once.
func (l *Lock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	os.Remove(l.lockPath)
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	l.file = nil
}
