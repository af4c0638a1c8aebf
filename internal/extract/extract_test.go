package extract

import (
	"strings"
	"testing"
)

const response = "Here is the fix.\n\n" +
	"Update `internal/app.go`:\n\n" +
	"```diff\n" +
	"@@ -1,2 +1,2 @@\n" +
	" package app\n" +
	"-var x = 1\n" +
	"+var x = 2\n" +
	"```\n\n" +
	"And the readme:\n\n" +
	"```diff\n" +
	"--- a/README.md\n" +
	"+++ b/README.md\n" +
	"@@ -1 +1 @@\n" +
	"-old\n" +
	"+new\n" +
	"```\n\n" +
	"Run it with:\n\n" +
	"```sh\n" +
	"go run ./cmd/app\n" +
	"```\n"

func TestMarkdown(t *testing.T) {
	diffs, err := Markdown([]byte(response))
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if len(diffs) != 2 {
		t.Fatalf("got %d diffs, want 2: %+v", len(diffs), diffs)
	}

	if diffs[0].Path != "internal/app.go" {
		t.Errorf("diffs[0].Path = %q, want hint path", diffs[0].Path)
	}
	if !strings.HasPrefix(diffs[0].Diff, "@@ -1,2 +1,2 @@\n package app\n") {
		t.Errorf("diffs[0].Diff = %q", diffs[0].Diff)
	}

	if diffs[1].Path != "README.md" {
		t.Errorf("diffs[1].Path = %q, want header path", diffs[1].Path)
	}
}

func TestMarkdown_NoPath(t *testing.T) {
	src := "```diff\n@@ -1 +1 @@\n-a\n+b\n```\n"
	diffs, err := Markdown([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(diffs) != 1 || diffs[0].Path != "" {
		t.Errorf("diffs = %+v, want one diff without a path", diffs)
	}
}

func TestMarkdown_HintWithCommandIgnored(t *testing.T) {
	src := "Then `go test ./...` passes.\n\n```diff\n@@ -1 +1 @@\n-a\n+b\n```\n"
	diffs, err := Markdown([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(diffs) != 1 || diffs[0].Path != "" {
		t.Errorf("diffs = %+v", diffs)
	}
}

func TestSplit(t *testing.T) {
	patch := strings.Join([]string{
		"diff --git a/one.txt b/one.txt",
		"--- a/one.txt",
		"+++ b/one.txt",
		"@@ -1 +1 @@",
		"-1",
		"+one",
		"--- /dev/null",
		"+++ b/two.txt",
		"@@ -0,0 +1 @@",
		"+two",
		"--- a/gone.txt",
		"+++ /dev/null",
		"@@ -1 +0,0 @@",
		"-bye",
	}, "\n")

	diffs := Split(patch)
	want := []string{"one.txt", "two.txt", "gone.txt"}
	if len(diffs) != len(want) {
		t.Fatalf("got %d diffs, want %d", len(diffs), len(want))
	}
	for i, path := range want {
		if diffs[i].Path != path {
			t.Errorf("diffs[%d].Path = %q, want %q", i, diffs[i].Path, path)
		}
		if !strings.HasPrefix(diffs[i].Diff, "--- ") {
			t.Errorf("diffs[%d] should start at its --- header: %q", i, diffs[i].Diff)
		}
	}
	if !strings.HasSuffix(diffs[1].Diff, "+two") {
		t.Errorf("diffs[1].Diff = %q", diffs[1].Diff)
	}
}

func TestSplit_Bare(t *testing.T) {
	if got := Split("  \n"); got != nil {
		t.Errorf("Split(blank) = %+v, want nil", got)
	}
	got := Split("@@ -1 +1 @@\n-a\n+b")
	if len(got) != 1 || got[0].Path != "" {
		t.Errorf("Split(bare) = %+v", got)
	}
}

func TestSplit_HeaderLikeLinesInsideHunk(t *testing.T) {
	// Removing "-- x" and adding "++ y" yields body lines that look like a
	// file header pair.
	patch := strings.Join([]string{
		"--- a/notes.md",
		"+++ b/notes.md",
		"@@ -1,3 +1,3 @@",
		" intro",
		"--- x",
		"+++ y",
		" outro",
		"--- a/other.md",
		"+++ b/other.md",
		"@@ -1 +1 @@",
		"-old",
		"+new",
	}, "\n")

	diffs := Split(patch)
	if len(diffs) != 2 {
		t.Fatalf("got %d diffs, want 2: %+v", len(diffs), diffs)
	}
	if diffs[0].Path != "notes.md" || !strings.Contains(diffs[0].Diff, "--- x\n+++ y\n outro") {
		t.Errorf("diffs[0] = %+v", diffs[0])
	}
	if diffs[1].Path != "other.md" {
		t.Errorf("diffs[1].Path = %q, want other.md", diffs[1].Path)
	}
}

func TestSplit_BareHunkWithHeaderLikeLines(t *testing.T) {
	patch := "@@ -1,2 +1,2 @@\n keep\n--- x\n+++ y"

	diffs := Split(patch)
	if len(diffs) != 1 {
		t.Fatalf("got %d diffs, want 1", len(diffs))
	}
	if diffs[0].Path != "" || diffs[0].Diff != patch {
		t.Errorf("diffs[0] = %+v", diffs[0])
	}
}

func TestPathFromHeaders(t *testing.T) {
	tests := []struct {
		diff string
		want string
	}{
		{"--- a/x.go\n+++ b/x.go\n", "x.go"},
		{"--- x.go\n+++ x.go\n", "x.go"},
		{"--- /dev/null\n+++ b/new.go\n", "new.go"},
		{"--- a/old.go\n+++ /dev/null\n", "old.go"},
		{"@@ -1 +1 @@\n", ""},
	}
	for _, tt := range tests {
		if got := PathFromHeaders(tt.diff); got != tt.want {
			t.Errorf("PathFromHeaders(%q) = %q, want %q", tt.diff, got, tt.want)
		}
	}
}
