package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kvit-s/kvit-patch/internal/patch"
)

// ToolErrorType classifies tool errors by who has to act on them
type ToolErrorType int

const (
	// ToolErrorRuntime - Tool executed but failed (file unreadable, write failed, etc.)
	// Retrying the same call will not help.
	ToolErrorRuntime ToolErrorType = iota

	// ToolErrorSemantic - The caller supplied bad input (diff does not match, bad path, etc.)
	// The caller should fix its input and retry.
	ToolErrorSemantic
)

// ToolError is an error type that classifies errors as runtime or semantic
type ToolError struct {
	Type    ToolErrorType
	Message string
	Details map[string]any // Optional structured data for the caller
	cause   error
}

// Error implements the error interface
func (e *ToolError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error, if any
func (e *ToolError) Unwrap() error {
	return e.cause
}

// ToJSON implements JSONError interface for structured output
func (e *ToolError) ToJSON() map[string]any {
	result := map[string]any{
		"success": false,
		"error":   e.Message,
	}
	for k, v := range e.Details {
		result[k] = v
	}
	return result
}

// RuntimeError creates a runtime error
func RuntimeError(msg string) *ToolError {
	return &ToolError{Type: ToolErrorRuntime, Message: msg}
}

// RuntimeErrorf creates a formatted runtime error. A %w verb is kept as the cause.
func RuntimeErrorf(format string, args ...any) *ToolError {
	err := fmt.Errorf(format, args...)
	return &ToolError{Type: ToolErrorRuntime, Message: err.Error(), cause: errors.Unwrap(err)}
}

// SemanticError creates a semantic error
func SemanticError(msg string) *ToolError {
	return &ToolError{Type: ToolErrorSemantic, Message: msg}
}

// SemanticErrorf creates a formatted semantic error. A %w verb is kept as the cause.
func SemanticErrorf(format string, args ...any) *ToolError {
	err := fmt.Errorf(format, args...)
	return &ToolError{Type: ToolErrorSemantic, Message: err.Error(), cause: errors.Unwrap(err)}
}

// SemanticErrorWithDetails creates a semantic error with structured details
func SemanticErrorWithDetails(msg string, details map[string]any) *ToolError {
	return &ToolError{Type: ToolErrorSemantic, Message: msg, Details: details}
}

// IsRetryable reports whether err is a semantic error, i.e. the caller can
// fix its input and try again.
func IsRetryable(err error) bool {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Type == ToolErrorSemantic
	}
	return false
}

// WrapAsRuntime wraps any error as a runtime error
func WrapAsRuntime(err error) *ToolError {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{Type: ToolErrorRuntime, Message: err.Error(), cause: err}
}

// FromPatchError converts an engine error into a semantic error carrying
// the failure kind and location. Other errors become runtime errors.
func FromPatchError(path string, err error) *ToolError {
	var pe *patch.Error
	if !errors.As(err, &pe) {
		return WrapAsRuntime(err)
	}

	details := map[string]any{
		"path":       path,
		"error_kind": pe.Kind.String(),
	}
	switch pe.Kind {
	case patch.MalformedHunkHeader:
		details["header"] = pe.Line
		details["next_step"] = "fix the hunk header; expected @@ -start,count +start,count @@"
	case patch.HunkValidationFailed:
		details["line_number"] = pe.LineNumber
		details["next_step"] = "re-read the file; context and removed lines must match it at the given line"
	case patch.HunkOverlap:
		details["line_number"] = pe.LineNumber
		details["next_step"] = "merge overlapping hunks into one"
	}

	return &ToolError{
		Type:    ToolErrorSemantic,
		Message: fmt.Sprintf("diff not applied to %s: %v", path, pe),
		Details: details,
		cause:   err,
	}
}

// JSONError is an interface for errors that can provide structured JSON output
type JSONError interface {
	error
	ToJSON() map[string]any
}

// FormatError checks if an error implements JSONError and returns JSON, otherwise returns plain text
func FormatError(err error) string {
	var jsonErr JSONError
	if errors.As(err, &jsonErr) {
		jsonBytes, marshalErr := json.MarshalIndent(jsonErr.ToJSON(), "", "  ")
		if marshalErr == nil {
			return string(jsonBytes)
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
