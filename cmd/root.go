// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/session"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// app carries what every subcommand needs after global setup.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	logger  *log.Logger
}

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	cfg := cws.Config
	logger := logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps)
	logger, _ = logging.WithSession(logger)
	for _, w := range cws.Warnings {
		logger.Warn("config", "warning", w)
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "menu" as default
	subcommand := "menu"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}
	logger.Debug("starting", "version", Version, "command", subcommand, "file", cfg.TaskFile)

	a := &app{cfg: cfg, sources: cws, logger: logger}
	err = runSubcommand(ctx, a, fs, subcommand, remainingArgs)
	if isHelp(err) {
		return nil
	}
	return err
}

// runSubcommand dispatches to the named subcommand.
func runSubcommand(ctx context.Context, a *app, fs *flag.FlagSet, subcommand string, remainingArgs []string) error {
	switch subcommand {
	case "menu":
		return menuCommand(ctx, a, remainingArgs)
	case "tui":
		return tuiCommand(ctx, a, remainingArgs)
	case "add":
		return addCommand(a, remainingArgs)
	case "done":
		return doneCommand(a, remainingArgs)
	case "ls":
		return lsCommand(a, remainingArgs)
	case "doctor":
		return doctorCommand(a, remainingArgs)
	case "export":
		return exportCommand(a, remainingArgs)
	case "import":
		return importCommand(a, remainingArgs)
	case "config":
		return configCommand(a, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openSession loads the configured task file and applies the default sort.
func (a *app) openSession() (*session.Session, error) {
	sess, err := session.Open(a.cfg.TaskFile, a.logger)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if a.cfg.DefaultSort != "" {
		if err := sess.Store().Sort(todo.SortBy(a.cfg.DefaultSort)); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// closeSession performs the final save. A failed save is logged and
// returned so the process exits non-zero, but never hides runErr.
func (a *app) closeSession(sess *session.Session, runErr error) error {
	if err := sess.Close(); err != nil {
		a.logger.Error("final save failed", "path", sess.Path(), "err", err)
		if runErr == nil {
			return err
		}
	}
	return runErr
}

// color reports whether stdout output should be colorized.
func (a *app) color() bool {
	return a.cfg.Color && ui.IsTTY(stdout)
}

// parseNoArgs parses a flag set that takes no positional arguments.
func parseNoArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %v", rest)
	}
	return nil
}

// newFlagSet returns a subcommand flag set writing errors to stderr.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("todo "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// isHelp reports whether err is the flag package's help request.
func isHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "todo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todo - a small interactive task list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [global options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  menu               Numbered interactive menu (default command)")
	fmt.Fprintln(w, "  tui                Full-screen terminal UI")
	fmt.Fprintln(w, "  add [-deadline D] DESCRIPTION...")
	fmt.Fprintln(w, "                     Add a task and print its id")
	fmt.Fprintln(w, "  done ID            Mark a task as done")
	fmt.Fprintln(w, "  ls [-sort S] [-pending]")
	fmt.Fprintln(w, "                     List tasks")
	fmt.Fprintln(w, "  doctor             Check the task file and configuration")
	fmt.Fprintln(w, "  export FILE        Write tasks to a JSON snapshot")
	fmt.Fprintln(w, "  import [-dry-run] FILE")
	fmt.Fprintln(w, "                     Replace tasks with a validated JSON snapshot;")
	fmt.Fprintln(w, "                     its next_id is not kept, ids resume after the highest")
	fmt.Fprintln(w, "  config [-example]  Show effective configuration")
	fmt.Fprintln(w, "  version            Show version information")
	fmt.Fprintln(w, "  help               Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(stderr)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TODO_FILE, TODO_SORT, TODO_COLOR, TODO_LOG_LEVEL, TODO_LOG_FORMAT,")
	fmt.Fprintln(w, "  TODO_LOG_TIMESTAMPS, NO_COLOR")
}
