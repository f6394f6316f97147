package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/todo-go/internal/menu"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/ui"
)

// menuCommand runs the numbered menu and saves on the way out.
func menuCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("menu")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}

	m := menu.New(stdin, stdout, sess.Store(), menu.Options{
		Color:  a.color(),
		Logger: a.logger,
	})
	runErr := m.Run(ctx)
	if err := a.closeSession(sess, runErr); err != nil {
		return err
	}
	fmt.Fprintf(stdout, ">> Saved %d tasks to %s\n", sess.Store().Len(), sess.Path())
	return nil
}

// tuiCommand launches the full-screen UI and saves on the way out.
func tuiCommand(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("tui")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}
	if !ui.IsTTY(stdout) {
		return ui.ErrNotTTY
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}

	runErr := ui.RunTUI(ctx, sess.Store(), ui.Options{
		Title:  sess.Path(),
		Save:   sess.Save,
		Logger: a.logger,
	})
	return a.closeSession(sess, runErr)
}

// addCommand adds one task and saves.
func addCommand(a *app, args []string) error {
	fs := newFlagSet("add")
	deadline := fs.String("deadline", "", "Deadline label; makes the task timed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("add: description required")
	}
	description := strings.Join(fs.Args(), " ")

	sess, err := a.openSession()
	if err != nil {
		return err
	}

	var id int
	if *deadline != "" {
		id = sess.Store().AddTimed(description, *deadline)
	} else {
		id = sess.Store().Add(description)
	}
	if err := a.closeSession(sess, nil); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Task added (ID: %d)\n", id)
	return nil
}

// doneCommand marks one task as done and saves.
func doneCommand(a *app, args []string) error {
	fs := newFlagSet("done")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("done: expected exactly one task ID")
	}
	id, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("done: invalid task ID %q", fs.Arg(0))
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	if err := sess.Store().Complete(id); err != nil {
		return err
	}
	if err := a.closeSession(sess, nil); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Task %d marked as done\n", id)
	return nil
}

// lsCommand prints the task list without modifying the file.
func lsCommand(a *app, args []string) error {
	fs := newFlagSet("ls")
	sortFlag := fs.String("sort", "", "Order: id or status (default from config)")
	pending := fs.Bool("pending", false, "Show only incomplete tasks")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	store := sess.Store()
	if *sortFlag != "" {
		by, err := todo.ParseSortBy(*sortFlag)
		if err != nil {
			return err
		}
		if err := store.Sort(by); err != nil {
			return err
		}
	}

	tasks := store.List()
	if *pending {
		filtered := make([]todo.Task, 0, len(tasks))
		for _, t := range tasks {
			if !t.Completed {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	menu.WriteList(stdout, tasks, a.color())
	return nil
}
