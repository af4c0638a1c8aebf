package ui

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration formats a duration for status lines, e.g. "850ms" or "1.2s"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// GetResultSummary extracts a one-line summary from a tool result
func GetResultSummary(result any) string {
	resultMap, ok := result.(map[string]any)
	if !ok {
		return fmt.Sprintf("%v", result)
	}

	if status, ok := resultMap["status"].(string); ok {
		switch status {
		case "pending_confirmation":
			return "pending confirmation"
		case "cancelled":
			return "cancelled"
		case "nothing_pending":
			return "nothing pending"
		}
	}

	if success, ok := resultMap["success"].(bool); ok && !success {
		if msg, ok := resultMap["error"].(string); ok {
			return fmt.Sprintf("failed: %s", msg)
		}
		return "failed"
	}

	// Edit
	if action, ok := resultMap["action"].(string); ok {
		if action == "unchanged" {
			return "unchanged, diff matched but made no edits"
		}
		before, _ := resultMap["lines_before"].(int)
		after, _ := resultMap["lines_after"].(int)
		summary := fmt.Sprintf("%s, %d → %d lines", action, before, after)
		if crlf, _ := resultMap["crlf_normalized"].(bool); crlf {
			summary += ", CRLF converted to LF"
		}
		return summary
	}

	// Undo
	if remaining, ok := resultMap["remaining"].(int); ok {
		return fmt.Sprintf("reverted, %d undo step(s) left", remaining)
	}

	// Read
	if lines, ok := resultMap["lines"].(int); ok {
		return pluralize(lines, "line")
	}

	if status, ok := resultMap["status"].(string); ok {
		return status
	}
	return "done"
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// diffLineKind classifies a line of unified diff output for coloring
type diffLineKind int

const (
	diffPlain diffLineKind = iota
	diffFileHeader
	diffHunkHeader
	diffAdded
	diffRemoved
)

func classifyDiffLine(line string) diffLineKind {
	switch {
	case strings.HasPrefix(line, "+++ "), strings.HasPrefix(line, "--- "):
		return diffFileHeader
	case strings.HasPrefix(line, "@@"):
		return diffHunkHeader
	case strings.HasPrefix(line, "+"):
		return diffAdded
	case strings.HasPrefix(line, "-"):
		return diffRemoved
	}
	return diffPlain
}
