package patch

import (
	"errors"
	"testing"
)

func TestParseHunkHeader(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    hunk
		wantErr bool
	}{
		{
			name: "full header",
			line: "@@ -10,4 +12,6 @@",
			want: hunk{oldStart: 9, oldCount: 4, newStart: 11, newCount: 6},
		},
		{
			name: "omitted counts default to one",
			line: "@@ -3 +3 @@",
			want: hunk{oldStart: 2, oldCount: 1, newStart: 2, newCount: 1},
		},
		{
			name: "empty original",
			line: "@@ -0,0 +1,3 @@",
			want: hunk{oldStart: 0, oldCount: 0, newStart: 0, newCount: 3},
		},
		{
			name: "section heading after header",
			line: "@@ -5,2 +5,3 @@ func main() {",
			want: hunk{oldStart: 4, oldCount: 2, newStart: 4, newCount: 3},
		},
		{name: "no numbers", line: "@@ invalid header @@", wantErr: true},
		{name: "missing plus side", line: "@@ -1,2 @@", wantErr: true},
		{name: "bare marker", line: "@@", wantErr: true},
		{name: "overflow", line: "@@ -99999999999999999999 +1 @@", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHunkHeader(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedHunkHeader) {
					t.Errorf("parseHunkHeader(%q) error = %v, want ErrMalformedHunkHeader", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHunkHeader(%q) error = %v", tt.line, err)
			}
			if got.oldStart != tt.want.oldStart || got.oldCount != tt.want.oldCount ||
				got.newStart != tt.want.newStart || got.newCount != tt.want.newCount {
				t.Errorf("parseHunkHeader(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseHunks(t *testing.T) {
	lines := []string{
		"diff --git a/x.go b/x.go",
		"--- a/x.go",
		"+++ b/x.go",
		"@@ -1,2 +1,2 @@",
		" keep",
		"-drop",
		"+add",
		"\\ No newline at end of file",
		"",
		"@@ -7 +7 @@",
		"-old",
		"+new",
	}

	hunks, err := parseHunks(lines)
	if err != nil {
		t.Fatalf("parseHunks() error = %v", err)
	}
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2", len(hunks))
	}

	first := hunks[0]
	wantKinds := []lineKind{lineContext, lineDelete, lineAdd}
	wantText := []string{"keep", "drop", "add"}
	if len(first.lines) != len(wantKinds) {
		t.Fatalf("first hunk has %d lines, want %d", len(first.lines), len(wantKinds))
	}
	for i, l := range first.lines {
		if l.kind != wantKinds[i] || l.text != wantText[i] {
			t.Errorf("line %d = %+v, want {%v %q}", i, l, wantKinds[i], wantText[i])
		}
	}

	if hunks[1].oldStart != 6 || len(hunks[1].lines) != 2 {
		t.Errorf("second hunk = %+v", hunks[1])
	}
}

func TestParseHunks_Empty(t *testing.T) {
	hunks, err := parseHunks(nil)
	if err != nil {
		t.Fatalf("parseHunks() error = %v", err)
	}
	if len(hunks) != 0 {
		t.Errorf("got %d hunks, want 0", len(hunks))
	}
}

func TestParseHunks_MalformedAbortsWholeParse(t *testing.T) {
	lines := []string{"@@ -1 +1 @@", "-a", "+b", "@@ bogus @@", " c"}

	hunks, err := parseHunks(lines)
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != MalformedHunkHeader {
		t.Fatalf("parseHunks() error = %v, want MalformedHunkHeader", err)
	}
	if pe.Line != "@@ bogus @@" {
		t.Errorf("Line = %q", pe.Line)
	}
	if hunks != nil {
		t.Errorf("parseHunks() returned hunks alongside error: %v", hunks)
	}
}

func TestHunkOldSpan(t *testing.T) {
	h := hunk{lines: []diffLine{
		{kind: lineContext}, {kind: lineDelete}, {kind: lineAdd}, {kind: lineAdd}, {kind: lineContext},
	}}
	if got := h.oldSpan(); got != 3 {
		t.Errorf("oldSpan() = %d, want 3", got)
	}
}
