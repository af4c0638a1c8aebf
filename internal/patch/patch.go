// Package patch applies unified diffs to in-memory text.
//
// Apply is all-or-nothing: every hunk is validated against the untouched
// original before any is applied, and hunks are applied from the bottom of
// the file up so earlier offsets stay valid without rebasing.
//
// Validation runs in strict mode first (exact text). If any hunk fails, the
// whole batch is re-validated with whitespace-trimmed comparison. The
// trimmed comparison only decides acceptance; the file's own lines are what
// end up in the result.
//
// Output is always joined with LF regardless of the input's line endings.
package patch

import "sort"

// Apply applies diff to original and returns the edited content.
// The returned error, if any, is a *Error.
func Apply(original, diff string) (string, error) {
	lines := splitLines(normalizeLineEndings(original))

	hunks, err := parseHunks(splitLines(normalizeLineEndings(diff)))
	if err != nil {
		return "", err
	}
	if len(hunks) == 0 {
		return joinLines(lines), nil
	}

	if err := checkLayout(hunks); err != nil {
		return "", err
	}

	if _, err := selectMode(lines, hunks); err != nil {
		return "", err
	}

	return joinLines(applyAll(lines, hunks)), nil
}

// selectMode picks one validation mode for the whole batch.
func selectMode(lines []string, hunks []hunk) (validationMode, error) {
	if validateAll(lines, hunks, modeStrict) < 0 {
		return modeStrict, nil
	}
	if failed := validateAll(lines, hunks, modeNormalized); failed >= 0 {
		return modeNormalized, validationFailed(hunks[failed])
	}
	return modeNormalized, nil
}

// byOldStart returns hunk indexes sorted by ascending oldStart, keeping input
// order for equal starts.
func byOldStart(hunks []hunk) []int {
	order := make([]int, len(hunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return hunks[order[a]].oldStart < hunks[order[b]].oldStart
	})
	return order
}

// checkLayout rejects hunks that share a start offset or begin inside the
// old span of another hunk. Disjoint hunks may arrive in any order.
func checkLayout(hunks []hunk) error {
	order := byOldStart(hunks)
	for i := 1; i < len(order); i++ {
		prev, next := hunks[order[i-1]], hunks[order[i]]
		if next.oldStart == prev.oldStart || next.oldStart < prev.oldStart+prev.oldSpan() {
			return overlap(next)
		}
	}
	return nil
}

// applyAll applies hunks from the highest oldStart to the lowest.
func applyAll(lines []string, hunks []hunk) []string {
	order := byOldStart(hunks)
	for i := len(order) - 1; i >= 0; i-- {
		lines = applyHunk(lines, hunks[order[i]])
	}
	return lines
}
