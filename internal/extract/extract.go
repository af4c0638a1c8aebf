// Package extract finds unified diffs in AI responses and multi-file patches.
package extract

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FileDiff is the diff text for a single target file.
type FileDiff struct {
	// Path is the target file, taken from the +++ header or from a
	// backticked path in the paragraph before the code block. It is empty
	// when neither was found.
	Path string
	Diff string
}

var (
	newFileRegex    = regexp.MustCompile(`(?m)^\+\+\+ (?:b/)?(\S+)`)
	oldFileRegex    = regexp.MustCompile(`(?m)^--- (?:a/)?(\S+)`)
	pathInHintRegex = regexp.MustCompile("`([^`\n]+)`")
	hunkCountsRegex = regexp.MustCompile(`^@@ -\d+(?:,(\d+))? \+\d+(?:,(\d+))? @@`)
)

const devNull = "/dev/null"

// Markdown walks the markdown AST of source and returns every fenced code
// block tagged "diff" or "patch", in document order. Blocks that touch
// several files are split per file.
func Markdown(source []byte) ([]FileDiff, error) {
	var diffs []FileDiff
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if lang := string(block.Language(source)); lang != "diff" && lang != "patch" {
			return ast.WalkSkipChildren, nil
		}

		hint := ""
		if prev := block.PreviousSibling(); prev != nil {
			if p, ok := prev.(*ast.Paragraph); ok {
				hint = pathFromHint(string(segmentsText(p.Lines(), source)))
			}
		}

		for _, fd := range Split(string(segmentsText(block.Lines(), source))) {
			if fd.Path == "" {
				fd.Path = hint
			}
			diffs = append(diffs, fd)
		}
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}
	return diffs, nil
}

// segmentsText returns the raw source bytes covered by lines.
func segmentsText(lines *text.Segments, source []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.Bytes()
}

// Split cuts a patch into per-file diffs at each "--- " line that is
// directly followed by a "+++ " line and is not part of a hunk body. Text
// with no file headers is returned as a single diff with an empty path.
func Split(patch string) []FileDiff {
	patch = strings.ReplaceAll(patch, "\r\n", "\n")
	lines := strings.Split(patch, "\n")

	var starts []int
	oldLeft, newLeft := 0, 0 // lines still owed by the open hunk
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if m := hunkCountsRegex.FindStringSubmatch(line); m != nil {
			oldLeft, newLeft = headerCount(m[1]), headerCount(m[2])
			continue
		}

		inHunk := oldLeft > 0 || newLeft > 0
		if isFileHeader(lines, i) && (!inHunk || startsHunk(lines, i+2)) {
			starts = append(starts, i)
			oldLeft, newLeft = 0, 0
			i++
			continue
		}
		if !inHunk {
			continue
		}
		switch {
		case strings.HasPrefix(line, "-"):
			oldLeft--
		case strings.HasPrefix(line, "+"):
			newLeft--
		case strings.HasPrefix(line, " "), line == "":
			oldLeft--
			newLeft--
		}
	}
	if len(starts) == 0 {
		if strings.TrimSpace(patch) == "" {
			return nil
		}
		return []FileDiff{{Diff: patch}}
	}

	diffs := make([]FileDiff, 0, len(starts))
	for n, start := range starts {
		end := len(lines)
		if n+1 < len(starts) {
			end = starts[n+1]
		}
		body := strings.Join(lines[start:end], "\n")
		diffs = append(diffs, FileDiff{Path: PathFromHeaders(body), Diff: body})
	}
	return diffs
}

func isFileHeader(lines []string, i int) bool {
	return i+1 < len(lines) && strings.HasPrefix(lines[i], "--- ") && strings.HasPrefix(lines[i+1], "+++ ")
}

func startsHunk(lines []string, i int) bool {
	return i < len(lines) && strings.HasPrefix(lines[i], "@@")
}

// headerCount parses a hunk header count; an omitted count means 1.
func headerCount(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// PathFromHeaders returns the target path named by the +++ header, or by
// the --- header when the file is being deleted. It returns "" when
// neither names a real file.
func PathFromHeaders(diff string) string {
	if m := newFileRegex.FindStringSubmatch(diff); m != nil && m[1] != devNull {
		return m[1]
	}
	if m := oldFileRegex.FindStringSubmatch(diff); m != nil && m[1] != devNull {
		return m[1]
	}
	return ""
}

// pathFromHint returns a backticked path from a hint paragraph, e.g.
// "Update `internal/app.go`:". Backticked text containing spaces is a
// command, not a path.
func pathFromHint(hint string) string {
	m := pathInHintRegex.FindStringSubmatch(strings.TrimSpace(hint))
	if m == nil {
		return ""
	}
	path := strings.TrimSpace(m[1])
	if strings.Contains(path, " ") {
		return ""
	}
	return path
}
