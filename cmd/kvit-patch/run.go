package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvit-s/kvit-patch/internal/config"
	"github.com/kvit-s/kvit-patch/internal/extract"
	"github.com/kvit-s/kvit-patch/internal/logging"
	"github.com/kvit-s/kvit-patch/internal/source"
	"github.com/kvit-s/kvit-patch/internal/tools"
	"github.com/kvit-s/kvit-patch/internal/ui"
	"github.com/kvit-s/kvit-patch/internal/vfs"
	"github.com/kvit-s/kvit-patch/internal/workspace"
)

// Exit codes
const (
	exitOK      = 0
	exitFailed  = 1 // at least one diff was rejected
	exitUsage   = 2
	exitRuntime = 3 // I/O failure or interrupt
)

// excerptRadius is the number of lines shown on each side of a rejected line.
const excerptRadius = 3

// runEnv carries the process I/O so run can be exercised in tests.
type runEnv struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	confirm func(path, diff string) (bool, error)
}

func run(ctx context.Context, opts *options, env runEnv) int {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(env.stderr, "kvit-patch: failed to load config: %v\n", err)
		return exitUsage
	}
	if opts.Workspace != "" {
		if err := cfg.SetWorkspaceRoot(opts.Workspace); err != nil {
			fmt.Fprintf(env.stderr, "kvit-patch: %v\n", err)
			return exitUsage
		}
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
	if opts.Preview {
		cfg.Edit.PreviewMode = true
	}

	writer := ui.NewWriter(cfg.UI.Verbose)
	writer.SetOutput(env.stdout, env.stderr)
	writer.SetNoColor(cfg.UI.NoColor)
	writer.SetQuiet(opts.Quiet)
	writer.SetJSONMode(opts.JSON)

	store := vfs.New(vfs.Options{
		Root:        cfg.Workspace.Root,
		UndoDepth:   cfg.Edit.UndoDepth,
		MaxFileSize: int64(cfg.Edit.MaxFileSizeKB) * 1024,
	})

	if opts.ListTools {
		registry := tools.SetupRegistry(tools.SetupConfig{Cfg: cfg, Store: store})
		data, err := json.MarshalIndent(registry.Specs(), "", "  ")
		if err != nil {
			writer.Error(err.Error())
			return exitRuntime
		}
		fmt.Fprintln(env.stdout, string(data))
		return exitOK
	}

	logger, err := logging.NewLogger(cfg.Log.File, cfg.Log.Development)
	if err != nil {
		writer.Error(fmt.Sprintf("failed to open log file: %v", err))
		return exitRuntime
	}
	defer logger.Close()

	diffs, err := readDiffs(opts, env.stdin)
	if err != nil {
		writer.Error(err.Error())
		logger.Error("failed to read input", err)
		return exitUsage
	}
	writer.Debug(fmt.Sprintf("workspace %s, %d diff(s)", cfg.Workspace.Root, len(diffs)))
	logger.Info("patch run started",
		zap.String("workspace", cfg.Workspace.Root),
		zap.Int("diffs", len(diffs)),
		zap.Bool("dry_run", opts.DryRun),
	)

	if !opts.DryRun {
		lock, err := workspace.AcquireLock(cfg.Workspace.Root)
		if err != nil {
			writer.Error(err.Error())
			return exitRuntime
		}
		defer lock.Release()
		writer.Debug("locked " + lock.Path())
	}

	registry := tools.SetupRegistry(tools.SetupConfig{Cfg: cfg, Store: store, Logger: logger})

	var applied []string
	failed, runtimeFailed := 0, false
	interrupted := false
	for _, d := range diffs {
		if ctx.Err() != nil {
			interrupted = true
			writer.Warn("interrupted; remaining diffs skipped")
			break
		}
		if d.Path == "" {
			writer.Failed("(unknown)", tools.SemanticError("diff names no file; pass FILE or add a +++ header"))
			failed++
			continue
		}

		logger.Debug("applying diff", zap.String("path", d.Path))
		written, err := applyOne(ctx, registry, writer, env, d)
		if err != nil {
			failed++
			if !tools.IsRetryable(err) {
				runtimeFailed = true
			}
			continue
		}
		if written {
			applied = append(applied, d.Path)
		}
	}

	if opts.Atomic && failed > 0 && len(applied) > 0 {
		rollback(registry, writer, applied)
	}

	if opts.DryRun {
		for _, path := range store.Dirty() {
			content, err := store.Read(path)
			if err != nil {
				continue
			}
			writer.Info("--- " + path)
			writer.Content(content)
		}
	} else if err := store.Flush(); err != nil {
		writer.Error(err.Error())
		logger.Error("flush failed", err)
		return exitRuntime
	}

	if err := writer.WriteJSONOutput(); err != nil {
		writer.Error(err.Error())
		return exitRuntime
	}

	switch {
	case interrupted, runtimeFailed:
		return exitRuntime
	case failed > 0:
		return exitFailed
	}
	return exitOK
}

// applyOne runs Edit for one diff, confirming it first in preview mode.
// It reports whether the store was changed; a skipped preview is not an error.
func applyOne(ctx context.Context, registry *tools.Registry, writer *ui.Writer, env runEnv, d extract.FileDiff) (bool, error) {
	start := time.Now()
	args, _ := json.Marshal(map[string]string{"path": d.Path, "diff": d.Diff})
	out, err := registry.Execute(ctx, "Edit", args)
	if err != nil {
		writer.Failed(d.Path, err)
		showExcerpt(ctx, registry, writer, d.Path, err)
		return false, err
	}
	result, _ := out.(map[string]any)

	if result["status"] == "pending_confirmation" {
		// A pending edit is always resolved, even after an interrupt.
		settle := context.WithoutCancel(ctx)

		diff, _ := result["diff"].(string)
		ok, err := env.confirm(d.Path, diff)
		if err != nil {
			registry.Execute(settle, "Edit.cancel", json.RawMessage(`{}`))
			err = tools.WrapAsRuntime(err)
			writer.Failed(d.Path, err)
			return false, err
		}
		if !ok {
			registry.Execute(settle, "Edit.cancel", json.RawMessage(`{}`))
			writer.Warn("skipped " + d.Path)
			return false, nil
		}
		if _, err := registry.Execute(settle, "Edit.confirm", json.RawMessage(`{}`)); err != nil {
			writer.Failed(d.Path, err)
			return false, err
		}
		result["status"] = "applied"
		delete(result, "next_step")
	} else if diff, ok := result["diff"].(string); ok && writer.IsVerbose() {
		writer.Diff(diff)
	}

	writer.Applied(d.Path, result, time.Since(start))
	return result["action"] != "unchanged", nil
}

// showExcerpt prints the numbered file lines around a rejected hunk in
// verbose mode.
func showExcerpt(ctx context.Context, registry *tools.Registry, writer *ui.Writer, path string, err error) {
	var te *tools.ToolError
	if !writer.IsVerbose() || !errors.As(err, &te) {
		return
	}
	line, ok := te.Details["line_number"].(int)
	if !ok {
		return
	}

	args, _ := json.Marshal(map[string]string{"path": path})
	out, err := registry.Execute(ctx, "Read", args)
	if err != nil {
		return
	}
	result, _ := out.(map[string]any)
	content, _ := result["content"].(string)

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	from := max(line-1-excerptRadius, 0)
	to := min(line+excerptRadius, len(lines))
	if from >= to {
		return
	}
	writer.Excerpt(path, strings.Join(lines[from:to], "\n"))
}

// rollback undoes every applied edit, newest first.
func rollback(registry *tools.Registry, writer *ui.Writer, applied []string) {
	ctx := context.Background()
	for i := len(applied) - 1; i >= 0; i-- {
		args, _ := json.Marshal(map[string]string{"path": applied[i]})
		if _, err := registry.Execute(ctx, "Undo", args); err != nil {
			writer.Error(fmt.Sprintf("rollback of %s failed: %v", applied[i], err))
			continue
		}
		writer.RolledBack(applied[i])
	}
}

// readDiffs loads the input and splits it into per-file diffs. Diffs that
// name no file take the FILE argument.
func readDiffs(opts *options, stdin io.Reader) ([]extract.FileDiff, error) {
	provider := source.New(stdin)

	path := opts.DiffPath
	if opts.MarkdownPath != "" {
		path = opts.MarkdownPath
	}
	text, err := provider.Read(path, opts.Clipboard)
	if err != nil {
		return nil, err
	}

	// Clipboard text with code fences is read as markdown
	markdown := opts.MarkdownPath != "" ||
		(opts.Clipboard && opts.DiffPath == "" && strings.Contains(text, "```"))

	var diffs []extract.FileDiff
	if markdown {
		if diffs, err = extract.Markdown([]byte(text)); err != nil {
			return nil, fmt.Errorf("failed to parse markdown: %w", err)
		}
	} else {
		diffs = extract.Split(text)
	}

	if len(diffs) == 0 {
		return nil, fmt.Errorf("no diffs found in input")
	}
	for i := range diffs {
		if opts.File != "" && (diffs[i].Path == "" || len(diffs) == 1) {
			diffs[i].Path = opts.File
		}
	}
	return diffs, nil
}
