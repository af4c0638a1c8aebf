// Package source reads the patch input from a file, stdin, or the clipboard.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// ErrEmpty is returned when the selected source holds no text.
var ErrEmpty = errors.New("input is empty")

// Provider retrieves the input text.
type Provider struct {
	stdin         io.Reader
	readClipboard func() (string, error)
}

// New creates a Provider reading standard input from stdin.
func New(stdin io.Reader) *Provider {
	return &Provider{stdin: stdin, readClipboard: clipboard.ReadAll}
}

// Read returns the text at path, standard input for "-", or the clipboard
// when fromClipboard is set.
func (p *Provider) Read(path string, fromClipboard bool) (string, error) {
	var content string
	switch {
	case fromClipboard:
		text, err := p.readClipboard()
		if err != nil {
			return "", fmt.Errorf("failed to read from clipboard: %w", err)
		}
		content = text
	case path == Stdin:
		data, err := io.ReadAll(p.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		content = string(data)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		content = string(data)
	}

	if strings.TrimSpace(content) == "" {
		return "", ErrEmpty
	}
	return content, nil
}

// StdinIsPiped reports whether standard input is a pipe or file rather
// than a terminal.
func StdinIsPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}
