package patch

// applyHunk returns a new line slice with h applied to lines. Context lines
// copy the existing line, so whitespace in the file survives even when the
// hunk only matched in normalized mode. Offsets come from walking h.lines,
// never from the header counts.
func applyHunk(lines []string, h hunk) []string {
	start := h.oldStart
	if start > len(lines) {
		start = len(lines)
	}

	out := make([]string, 0, len(lines)+len(h.lines))
	out = append(out, lines[:start]...)

	cursor := start
	for _, l := range h.lines {
		switch l.kind {
		case lineContext:
			if cursor < len(lines) {
				out = append(out, lines[cursor])
			}
			cursor++
		case lineDelete:
			cursor++
		case lineAdd:
			out = append(out, l.text)
		}
	}

	if cursor < len(lines) {
		out = append(out, lines[cursor:]...)
	}
	return out
}
