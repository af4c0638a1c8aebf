package patch

import "strings"

// normalizeLineEndings replaces every CRLF with LF.
func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// splitLines splits normalized content into lines.
// An empty string has zero lines, not one empty line.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// joinLines is the inverse of splitLines; output is always LF-joined.
func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
