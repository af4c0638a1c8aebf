package patch

import (
	"regexp"
	"strconv"
	"strings"
)

// hunkHeaderRegex matches "@@ -a[,b] +c[,d] @@" with optional trailing section text.
var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

const hunkMarker = "@@"

type lineKind int

const (
	lineContext lineKind = iota
	lineDelete
	lineAdd
)

type diffLine struct {
	kind lineKind
	text string
}

// hunk holds one parsed edit region. Starts are zero-based.
type hunk struct {
	oldStart int
	oldCount int
	newStart int
	newCount int
	lines    []diffLine
}

// oldSpan is the number of original lines the hunk consumes.
func (h hunk) oldSpan() int {
	n := 0
	for _, l := range h.lines {
		if l.kind != lineAdd {
			n++
		}
	}
	return n
}

// parseHunks scans diff lines into hunks. Lines outside a hunk (file headers,
// git metadata) are skipped, as are unrecognized lines inside one.
func parseHunks(lines []string) ([]hunk, error) {
	var hunks []hunk
	var current *hunk

	for _, line := range lines {
		if strings.HasPrefix(line, hunkMarker) {
			h, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			if current != nil {
				hunks = append(hunks, *current)
			}
			current = &h
			continue
		}

		if current == nil || line == "" {
			continue
		}

		switch line[0] {
		case ' ':
			current.lines = append(current.lines, diffLine{kind: lineContext, text: line[1:]})
		case '-':
			current.lines = append(current.lines, diffLine{kind: lineDelete, text: line[1:]})
		case '+':
			current.lines = append(current.lines, diffLine{kind: lineAdd, text: line[1:]})
		}
		// Anything else ("\ No newline at end of file") is ignored.
	}

	if current != nil {
		hunks = append(hunks, *current)
	}
	return hunks, nil
}

func parseHunkHeader(line string) (hunk, error) {
	m := hunkHeaderRegex.FindStringSubmatch(line)
	if m == nil {
		return hunk{}, malformedHeader(line)
	}

	var nums [4]int
	for i, s := range m[1:] {
		if s == "" {
			nums[i] = 1 // omitted count
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return hunk{}, malformedHeader(line)
		}
		nums[i] = n
	}

	return hunk{
		oldStart: zeroBased(nums[0]),
		oldCount: nums[1],
		newStart: zeroBased(nums[2]),
		newCount: nums[3],
	}, nil
}

// zeroBased converts a header start to an index. "-0,0" (empty original)
// maps to 0 rather than -1.
func zeroBased(n int) int {
	if n == 0 {
		return 0
	}
	return n - 1
}
