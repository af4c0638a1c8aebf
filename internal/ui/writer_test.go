package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kvit-s/kvit-patch/internal/tools"
)

func newTestWriter(verbose int) (*Writer, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	w := NewWriter(verbose)
	w.SetOutput(&stdout, &stderr)
	w.SetNoColor(true)
	return w, &stdout, &stderr
}

func TestWriter_StatusLines(t *testing.T) {
	w, stdout, stderr := newTestWriter(0)

	w.Info("loading")
	w.Debug("hidden")
	w.Warn("careful")
	w.Error("broken")

	want := "[info] loading\n[warn] careful\n[error] broken\n"
	if stderr.String() != want {
		t.Errorf("stderr = %q, want %q", stderr.String(), want)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
}

func TestWriter_Quiet(t *testing.T) {
	w, _, stderr := newTestWriter(1)
	w.SetQuiet(true)

	w.Info("x")
	w.Debug("y")
	w.Applied("a.txt", map[string]any{"success": true}, time.Millisecond)
	w.RolledBack("a.txt")
	w.Excerpt("a.txt", "1\tx")
	w.Error("still shown")

	if stderr.String() != "[error] still shown\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestWriter_Applied(t *testing.T) {
	w, _, stderr := newTestWriter(0)
	w.Applied("a.txt", map[string]any{
		"success":         true,
		"action":          "updated",
		"lines_before":    3,
		"lines_after":     4,
		"crlf_normalized": true,
	}, 12*time.Millisecond)

	want := "✓ a.txt: updated, 3 → 4 lines, CRLF converted to LF (12ms)\n"
	if stderr.String() != want {
		t.Errorf("stderr = %q, want %q", stderr.String(), want)
	}
}

func TestWriter_FailedShowsDetails(t *testing.T) {
	w, _, stderr := newTestWriter(1)
	err := tools.SemanticErrorWithDetails("diff not applied", map[string]any{"next_step": "re-read the file"})
	w.Failed("a.txt", err)

	out := stderr.String()
	if !strings.Contains(out, "✗ a.txt: diff not applied") || !strings.Contains(out, `"next_step": "re-read the file"`) {
		t.Errorf("stderr = %q", out)
	}
}

func TestWriter_Diff(t *testing.T) {
	w, stdout, _ := newTestWriter(0)
	diff := "--- a/x\n+++ b/x\n@@ -1 +1 @@\n-old\n+new\n"
	w.Diff(diff)
	if stdout.String() != diff {
		t.Errorf("stdout = %q, want %q", stdout.String(), diff)
	}
}

func TestWriter_FailedPlainErrorHasNoDetails(t *testing.T) {
	w, _, stderr := newTestWriter(1)
	w.Failed("a.txt", errors.New("disk full"))
	if stderr.String() != "✗ a.txt: disk full\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestWriter_RolledBackAndExcerpt(t *testing.T) {
	w, _, stderr := newTestWriter(0)
	w.RolledBack("a.txt")
	w.Excerpt("a.txt", "1\talpha\n2\tbeta\n")

	want := "↶ a.txt: rolled back\n  a.txt:\n    1\talpha\n    2\tbeta\n"
	if stderr.String() != want {
		t.Errorf("stderr = %q, want %q", stderr.String(), want)
	}
}

func TestWriter_Content(t *testing.T) {
	w, stdout, _ := newTestWriter(0)
	w.Content("a\nb")
	if stdout.String() != "a\nb\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestWriter_JSONMode(t *testing.T) {
	w, stdout, stderr := newTestWriter(0)
	w.SetJSONMode(true)

	w.Info("not printed")
	w.Applied("a.txt", map[string]any{"success": true, "action": "updated"}, time.Millisecond)
	w.Applied("c.txt", map[string]any{"success": true, "action": "created"}, time.Millisecond)
	w.RolledBack("c.txt")
	w.Failed("b.txt", tools.SemanticErrorWithDetails("bad diff", map[string]any{"line_number": 7}))

	if err := w.WriteJSONOutput(); err != nil {
		t.Fatal(err)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}

	var out JSONOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout.String(), err)
	}
	if out.Applied != 1 || out.Failed != 1 || out.RolledBack != 1 || len(out.Results) != 3 {
		t.Fatalf("output = %+v", out)
	}
	if out.Results[1].Result["rolled_back"] != true {
		t.Errorf("rolled back result = %+v", out.Results[1])
	}
	if out.Results[2].Path != "b.txt" || out.Results[2].Result["line_number"] != float64(7) {
		t.Errorf("failed result = %+v", out.Results[2])
	}
}

func TestGetResultSummary(t *testing.T) {
	tests := []struct {
		name   string
		result any
		want   string
	}{
		{"pending", map[string]any{"status": "pending_confirmation"}, "pending confirmation"},
		{"failed", map[string]any{"success": false, "error": "nope"}, "failed: nope"},
		{"created", map[string]any{"success": true, "action": "created", "lines_before": 0, "lines_after": 2}, "created, 0 → 2 lines"},
		{"unchanged", map[string]any{"success": true, "action": "unchanged", "lines_before": 3, "lines_after": 3}, "unchanged, diff matched but made no edits"},
		{"undo", map[string]any{"success": true, "remaining": 2}, "reverted, 2 undo step(s) left"},
		{"read one line", map[string]any{"lines": 1}, "1 line"},
		{"confirm", map[string]any{"success": true, "status": "applied"}, "applied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetResultSummary(tt.result); got != tt.want {
				t.Errorf("GetResultSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("FormatDuration(1.5s) = %q", got)
	}
	if got := FormatDuration(42 * time.Millisecond); got != "42ms" {
		t.Errorf("FormatDuration(42ms) = %q", got)
	}
}
