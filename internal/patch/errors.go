package patch

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a diff could not be applied.
type ErrorKind int

const (
	// MalformedHunkHeader - a line starting with "@@" is not a valid hunk header.
	MalformedHunkHeader ErrorKind = iota + 1

	// HunkValidationFailed - a context or delete line does not match the content
	// at its offset under both strict and normalized comparison.
	HunkValidationFailed

	// HunkOverlap - two hunks touch the same region of the original.
	HunkOverlap
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedHunkHeader:
		return "malformed_hunk_header"
	case HunkValidationFailed:
		return "hunk_validation_failed"
	case HunkOverlap:
		return "hunk_overlap"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against *Error.
var (
	ErrMalformedHunkHeader  = errors.New("malformed hunk header")
	ErrHunkValidationFailed = errors.New("hunk validation failed")
	ErrHunkOverlap          = errors.New("hunks overlap")
)

// Error is returned by Apply. The original content is never modified when
// Apply returns an error.
type Error struct {
	Kind ErrorKind
	// Line is the offending header text (MalformedHunkHeader only).
	Line string
	// LineNumber is the one-based line in the original where the failing
	// hunk starts (HunkValidationFailed, HunkOverlap).
	LineNumber int
}

func (e *Error) Error() string {
	switch e.Kind {
	case MalformedHunkHeader:
		return fmt.Sprintf("malformed hunk header: %q", e.Line)
	case HunkValidationFailed:
		return fmt.Sprintf("hunk at line %d does not match file content", e.LineNumber)
	case HunkOverlap:
		return fmt.Sprintf("hunk at line %d overlaps a previous hunk", e.LineNumber)
	default:
		return "patch error"
	}
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case MalformedHunkHeader:
		return target == ErrMalformedHunkHeader
	case HunkValidationFailed:
		return target == ErrHunkValidationFailed
	case HunkOverlap:
		return target == ErrHunkOverlap
	}
	return false
}

func malformedHeader(line string) *Error {
	return &Error{Kind: MalformedHunkHeader, Line: line}
}

func validationFailed(h hunk) *Error {
	return &Error{Kind: HunkValidationFailed, LineNumber: h.oldStart + 1}
}

func overlap(h hunk) *Error {
	return &Error{Kind: HunkOverlap, LineNumber: h.oldStart + 1}
}
