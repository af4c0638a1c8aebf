package tools

import (
	"fmt"
	"strings"
)

const (
	maxPreviewLines = 200       // no truncation at or below this
	maxPreviewBytes = 32 * 1024 // 32KB
	keptPerSide     = 80        // lines kept at each end when truncated
)

// truncateMiddle keeps the head and tail of a long text and replaces the
// middle with a marker. It reports whether anything was dropped.
func truncateMiddle(text string, maxLines, maxBytes, perSide int) (string, bool) {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) <= maxLines && len(text) <= maxBytes {
		return text, false
	}
	if perSide*2 >= len(lines) {
		perSide = len(lines) / 4
	}

	head := clipBytes(strings.Join(lines[:perSide], "\n"), maxBytes/2, false)
	tail := clipBytes(strings.Join(lines[len(lines)-perSide:], "\n"), maxBytes/2, true)

	removed := len(lines) - strings.Count(head, "\n") - strings.Count(tail, "\n") - 2
	if removed < 0 {
		removed = 0
	}

	var sb strings.Builder
	sb.WriteString(head)
	fmt.Fprintf(&sb, "\n... [%d lines not shown] ...\n", removed)
	sb.WriteString(tail)
	sb.WriteString("\n")
	return sb.String(), true
}

// clipBytes cuts s to at most n bytes on a line boundary, keeping the end
// of s when fromEnd is set.
func clipBytes(s string, n int, fromEnd bool) string {
	if len(s) <= n {
		return s
	}
	if fromEnd {
		s = s[len(s)-n:]
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		return s
	}
	s = s[:n]
	if i := strings.LastIndexByte(s, '\n'); i > 0 {
		s = s[:i]
	}
	return s
}
