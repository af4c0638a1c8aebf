package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/kvit-s/kvit-patch/internal/source"
	"github.com/kvit-s/kvit-patch/internal/tui"
)

// Version info set by ldflags at build time
var (
	version    = "dev"
	commitHash = "dev"
	commitDate = "unknown"
)

// options holds all command-line flag values.
type options struct {
	ConfigPath   string
	DiffPath     string
	MarkdownPath string
	Clipboard    bool
	DryRun       bool
	Preview      bool
	Workspace    string
	LogFile      string
	JSON         bool
	Quiet        bool
	Atomic       bool
	ListTools    bool
	Version      bool

	// File is the optional positional target for diffs that do not name one.
	File string
}

// parseFlags defines and parses command-line flags using pflag.
func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("kvit-patch", pflag.ContinueOnError)

	fs.StringVarP(&opts.ConfigPath, "config", "c", "kvit-patch.yaml", "path to config file (optional)")
	fs.StringVarP(&opts.DiffPath, "diff", "d", "", "unified diff to apply ('-' for stdin)")
	fs.StringVarP(&opts.MarkdownPath, "markdown", "m", "", "markdown with ```diff blocks to apply ('-' for stdin)")
	fs.BoolVar(&opts.Clipboard, "clipboard", false, "read the diff or markdown from the clipboard")
	fs.BoolVarP(&opts.DryRun, "dry-run", "n", false, "print patched content instead of writing files")
	fs.BoolVarP(&opts.Preview, "preview", "p", false, "show each change and ask before writing it")
	fs.StringVarP(&opts.Workspace, "workspace", "w", "", "workspace root (overrides config)")
	fs.StringVarP(&opts.LogFile, "log", "l", "", "log file path (overrides config)")
	fs.BoolVar(&opts.JSON, "json", false, "print results as JSON")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "print only errors")
	fs.BoolVarP(&opts.Atomic, "atomic", "a", false, "if any diff fails, roll back the ones already applied")
	fs.BoolVar(&opts.ListTools, "list-tools", false, "print the tool schemas as JSON and exit")
	fs.BoolVarP(&opts.Version, "version", "v", false, "show version information and exit")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kvit-patch [flags] [FILE]")
		fmt.Fprintln(os.Stderr, "\nApply unified diffs to files in a workspace. All hunks of a diff apply or none do.")
		fmt.Fprintln(os.Stderr, "\nExamples:")
		fmt.Fprintln(os.Stderr, "  git diff | kvit-patch -d -")
		fmt.Fprintln(os.Stderr, "  kvit-patch -m response.md --preview")
		fmt.Fprintln(os.Stderr, "  kvit-patch -d fix.diff -n src/app.go")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.DiffPath != "" && opts.MarkdownPath != "" {
		return nil, errors.New("--diff and --markdown are mutually exclusive")
	}
	if opts.DryRun && opts.Preview {
		return nil, errors.New("--dry-run and --preview are mutually exclusive")
	}
	switch fs.NArg() {
	case 0:
	case 1:
		opts.File = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one FILE argument, got %d", fs.NArg())
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "kvit-patch: %v\n", err)
		os.Exit(exitUsage)
	}

	if opts.Version {
		fmt.Printf("%s-%s-%s\n", version, commitDate, commitHash)
		return
	}

	// No explicit source: piped stdin is a diff
	if !opts.ListTools && opts.DiffPath == "" && opts.MarkdownPath == "" && !opts.Clipboard {
		if !source.StdinIsPiped() {
			fmt.Fprintln(os.Stderr, "kvit-patch: no input; use --diff, --markdown, --clipboard, or pipe a diff")
			os.Exit(exitUsage)
		}
		opts.DiffPath = source.Stdin
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := runEnv{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		confirm: func(path, diff string) (bool, error) { return tui.Confirm(path, diff) },
	}
	code := run(ctx, opts, env)
	stop()
	os.Exit(code)
}
