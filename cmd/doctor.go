package cmd

import (
	"fmt"

	"github.com/nibzard/todo-go/internal/codec"
)

// doctorCommand checks the task file and reports where configuration came from.
func doctorCommand(a *app, args []string) error {
	fs := newFlagSet("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "todo doctor")
	fmt.Fprintln(stdout, "===========")
	fmt.Fprintln(stdout)

	allOK := true

	// Check task file
	path := a.cfg.TaskFile
	fmt.Fprintf(stdout, "Task file: %s\n", path)
	res, err := codec.Load(path)
	switch {
	case err != nil:
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	case !res.Found:
		fmt.Fprintln(stdout, "  ⚠️  Not found (will be created on first save)")
	default:
		pending, completed := res.Store().Counts()
		fmt.Fprintf(stdout, "  ✅ %d tasks (%d pending, %d done), next id %d\n",
			len(res.Tasks), pending, completed, res.NextID)
		for _, le := range res.Skipped {
			fmt.Fprintf(stdout, "  ❌ %v\n", le)
			allOK = false
		}
	}
	fmt.Fprintln(stdout)

	// Check config
	fmt.Fprintln(stdout, "Config:")
	if len(a.sources.Files) == 0 {
		fmt.Fprintln(stdout, "  Files: (none, using defaults)")
	}
	for _, f := range a.sources.Files {
		fmt.Fprintf(stdout, "  File: %s\n", f)
	}
	for _, w := range a.sources.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	if *verbose {
		writeSources(a)
	}
	fmt.Fprintln(stdout)

	// Overall status
	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. Malformed lines are dropped on the next save.")
	return fmt.Errorf("doctor checks failed")
}
