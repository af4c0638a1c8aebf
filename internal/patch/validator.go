package patch

import "strings"

type validationMode int

const (
	modeStrict validationMode = iota
	modeNormalized
)

func (m validationMode) String() string {
	if m == modeNormalized {
		return "normalized"
	}
	return "strict"
}

func (m validationMode) equal(want, got string) bool {
	if m == modeNormalized {
		return strings.TrimSpace(want) == strings.TrimSpace(got)
	}
	return want == got
}

// validateHunk checks every context and delete line of h against the
// original at its offset. Add lines are never checked.
func validateHunk(original []string, h hunk, mode validationMode) bool {
	cursor := h.oldStart
	for _, l := range h.lines {
		if l.kind == lineAdd {
			continue
		}
		if cursor >= len(original) {
			return false
		}
		if !mode.equal(l.text, original[cursor]) {
			return false
		}
		cursor++
	}
	return true
}

// validateAll returns the index of the first hunk that fails under mode, or -1.
func validateAll(original []string, hunks []hunk, mode validationMode) int {
	for i, h := range hunks {
		if !validateHunk(original, h, mode) {
			return i
		}
	}
	return -1
}
