package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kvit-s/kvit-patch/internal/tools"
)

// Color definitions for consistent UI
var (
	// Gray for info and debug lines
	grayColor = color.New(color.FgWhite, color.Faint)

	// Red for errors
	errorColor = color.New(color.FgRed)

	// Yellow for warnings
	warnColor = color.New(color.FgYellow)

	// Green for applied edits
	successColor = color.New(color.FgGreen)

	// Diff rendering
	diffHeaderColor  = color.New(color.Bold)
	diffHunkColor    = color.New(color.FgCyan)
	diffAddedColor   = color.New(color.FgGreen)
	diffRemovedColor = color.New(color.FgRed)
)

// JSONOutput represents the structured output for --json mode
type JSONOutput struct {
	Results    []JSONResult `json:"results"`
	Applied    int          `json:"applied"`
	Failed     int          `json:"failed"`
	RolledBack int          `json:"rolled_back,omitempty"`
}

// JSONResult is one file's outcome in --json mode
type JSONResult struct {
	Path   string         `json:"path"`
	Result map[string]any `json:"result"`
}

// Writer provides formatted output with consistent prefixes and optional colors.
// Status lines go to stderr; file content and diffs go to stdout.
type Writer struct {
	verbose  int // 0 = normal, >0 = debug lines and full diffs
	quiet    bool
	jsonMode bool // collect results and print one JSON document at the end
	noColor  bool
	stderr   io.Writer
	stdout   io.Writer

	results []JSONResult
}

// NewWriter creates a new Writer with the specified verbosity level.
func NewWriter(verbose int) *Writer {
	return &Writer{
		verbose: verbose,
		stderr:  os.Stderr,
		stdout:  os.Stdout,
	}
}

// SetOutput redirects stdout and stderr output.
func (w *Writer) SetOutput(stdout, stderr io.Writer) {
	w.stdout = stdout
	w.stderr = stderr
}

// IsVerbose returns true if verbose mode is enabled.
func (w *Writer) IsVerbose() bool {
	return w.verbose > 0
}

// SetQuiet suppresses status lines. Content and JSON output are unaffected.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// SetJSONMode enables or disables JSON output mode.
func (w *Writer) SetJSONMode(jsonMode bool) {
	w.jsonMode = jsonMode
}

// IsJSONMode returns true if JSON mode is enabled.
func (w *Writer) IsJSONMode() bool {
	return w.jsonMode
}

// SetNoColor disables ANSI colors for this writer.
func (w *Writer) SetNoColor(noColor bool) {
	w.noColor = noColor
}

func (w *Writer) printf(out io.Writer, c *color.Color, format string, args ...any) {
	if w.noColor || c == nil {
		fmt.Fprintf(out, format, args...)
		return
	}
	c.Fprintf(out, format, args...)
}

// Info prints an info message with [info] prefix in gray.
func (w *Writer) Info(msg string) {
	if w.quiet || w.jsonMode {
		return
	}
	w.printf(w.stderr, grayColor, "[info] %s\n", msg)
}

// Warn prints a warning message with [warn] prefix in yellow.
func (w *Writer) Warn(msg string) {
	if w.quiet || w.jsonMode {
		return
	}
	w.printf(w.stderr, warnColor, "[warn] %s\n", msg)
}

// Error prints an error message with [error] prefix in red.
// Errors are printed even in quiet mode.
func (w *Writer) Error(msg string) {
	if w.jsonMode {
		return
	}
	w.printf(w.stderr, errorColor, "[error] %s\n", msg)
}

// Debug prints a debug message in gray, only if verbose mode is enabled.
func (w *Writer) Debug(msg string) {
	if w.quiet || w.jsonMode || w.verbose <= 0 {
		return
	}
	w.printf(w.stderr, grayColor, "[debug] %s\n", msg)
}

// Applied reports a successful tool call on path.
func (w *Writer) Applied(path string, result map[string]any, elapsed time.Duration) {
	if w.jsonMode {
		w.results = append(w.results, JSONResult{Path: path, Result: result})
		return
	}
	if w.quiet {
		return
	}
	w.printf(w.stderr, successColor, "✓ %s: %s (%s)\n", path, GetResultSummary(result), FormatDuration(elapsed))
}

// RolledBack reports that an applied change to path was undone. In JSON
// mode the latest successful result for path is marked instead.
func (w *Writer) RolledBack(path string) {
	if w.jsonMode {
		for i := len(w.results) - 1; i >= 0; i-- {
			r := w.results[i].Result
			if w.results[i].Path == path && r["success"] == true && r["rolled_back"] == nil {
				r["rolled_back"] = true
				return
			}
		}
		return
	}
	if w.quiet {
		return
	}
	w.printf(w.stderr, warnColor, "↶ %s: rolled back\n", path)
}

// Failed reports a failed tool call on path. Structured tool errors keep
// their details in JSON mode, and print them in verbose mode.
func (w *Writer) Failed(path string, err error) {
	if w.jsonMode {
		result := map[string]any{"success": false, "error": err.Error()}
		var jsonErr tools.JSONError
		if errors.As(err, &jsonErr) {
			result = jsonErr.ToJSON()
		}
		w.results = append(w.results, JSONResult{Path: path, Result: result})
		return
	}
	w.printf(w.stderr, errorColor, "✗ %s: %v\n", path, err)

	var jsonErr tools.JSONError
	if w.verbose > 0 && errors.As(err, &jsonErr) {
		for _, line := range strings.Split(tools.FormatError(err), "\n") {
			w.printf(w.stderr, grayColor, "  %s\n", line)
		}
	}
}

// Excerpt prints numbered file lines to stderr, indented under a failure.
func (w *Writer) Excerpt(path, numbered string) {
	if w.quiet || w.jsonMode || numbered == "" {
		return
	}
	w.printf(w.stderr, grayColor, "  %s:\n", path)
	for _, line := range strings.Split(strings.TrimSuffix(numbered, "\n"), "\n") {
		w.printf(w.stderr, grayColor, "    %s\n", line)
	}
}

// Diff renders a unified diff to stdout with added lines in green,
// removed lines in red, and hunk headers in cyan.
func (w *Writer) Diff(diff string) {
	if w.jsonMode || diff == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		var c *color.Color
		switch classifyDiffLine(line) {
		case diffFileHeader:
			c = diffHeaderColor
		case diffHunkHeader:
			c = diffHunkColor
		case diffAdded:
			c = diffAddedColor
		case diffRemoved:
			c = diffRemovedColor
		}
		w.printf(w.stdout, c, "%s\n", line)
	}
}

// Content prints file content verbatim to stdout (dry-run output).
func (w *Writer) Content(content string) {
	if w.jsonMode {
		return
	}
	fmt.Fprint(w.stdout, content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(w.stdout)
	}
}

// WriteJSONOutput outputs the collected results to stdout
func (w *Writer) WriteJSONOutput() error {
	if !w.jsonMode {
		return nil
	}
	output := JSONOutput{Results: w.results}
	if output.Results == nil {
		output.Results = []JSONResult{}
	}
	for _, r := range w.results {
		ok, _ := r.Result["success"].(bool)
		undone, _ := r.Result["rolled_back"].(bool)
		switch {
		case ok && undone:
			output.RolledBack++
		case ok:
			output.Applied++
		default:
			output.Failed++
		}
	}
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w.stdout, string(data))
	w.results = nil
	return err
}
