// Package menu implements the numbered-menu front end over plain
// line-oriented input and output.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/nibzard/todo-go/internal/todo"
)

// Options configures a Menu.
type Options struct {
	// Color enables ANSI colors. Callers turn it off for non-terminal output.
	Color bool
	Logger *log.Logger
}

// Menu drives a task store from numbered choices read line by line.
type Menu struct {
	in     *bufio.Scanner
	lines  chan string
	inErr  error
	out    io.Writer
	store  *todo.Store
	logger *log.Logger
	color  bool

	ok    *color.Color
	warn  *color.Color
	title *color.Color
}

// New returns a menu reading from in and writing to out.
func New(in io.Reader, out io.Writer, store *todo.Store, opts Options) *Menu {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	m := &Menu{
		in:     bufio.NewScanner(in),
		lines:  make(chan string),
		out:    out,
		store:  store,
		logger: logger,
		color:  opts.Color,
		ok:     newColor(opts.Color, color.FgGreen),
		warn:   newColor(opts.Color, color.FgYellow),
		title:  newColor(opts.Color, color.Bold),
	}
	return m
}

// errExit is returned by an action that ends the session.
var errExit = errors.New("exit")

type action struct {
	key   string
	label string
	run   func(*Menu, context.Context) error
}

var actions = []action{
	{"1", "Add task", (*Menu).add},
	{"2", "Add timed task", (*Menu).addTimed},
	{"3", "Complete task", (*Menu).complete},
	{"4", "List tasks", func(m *Menu, _ context.Context) error { return m.list() }},
	{"5", "Undo last addition", func(m *Menu, _ context.Context) error { return m.undo() }},
	{"6", "Sort by id", func(m *Menu, _ context.Context) error { return m.sort(todo.SortByID) }},
	{"7", "Sort by status", func(m *Menu, _ context.Context) error { return m.sort(todo.SortByStatus) }},
	{"0", "Save and exit", func(*Menu, context.Context) error { return errExit }},
}

// Run shows the menu until the user exits, input ends, or ctx is cancelled.
// Exit and end of input return nil; cancellation returns ctx.Err(). Saving
// on the way out is left to the caller.
//
// Run must be called at most once per Menu.
func (m *Menu) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go m.scan(done)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		choice, err := m.readLine(ctx, "Choice: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			m.logger.Debug("input closed, exiting menu")
			return m.scanErr()
		}
		if err != nil {
			return err
		}

		a, found := lookup(choice)
		if !found {
			m.warn.Fprintln(m.out, ">> Invalid choice.")
			continue
		}
		m.logger.Debug("menu choice", "key", a.key, "action", a.label)

		if err := a.run(m, ctx); err != nil {
			switch {
			case errors.Is(err, errExit):
				return nil
			case errors.Is(err, io.EOF):
				fmt.Fprintln(m.out)
				return m.scanErr()
			}
			return err
		}
	}
}

func lookup(choice string) (action, bool) {
	for _, a := range actions {
		if a.key == choice {
			return a, true
		}
	}
	return action{}, false
}

func (m *Menu) printMenu() {
	pending, completed := m.store.Counts()
	fmt.Fprintln(m.out)
	m.title.Fprintf(m.out, "Tasks: %d pending, %d done\n", pending, completed)
	for _, a := range actions {
		fmt.Fprintf(m.out, "%s. %s\n", a.key, a.label)
	}
}

// scan feeds input lines to m.lines until input ends or done is closed.
// A read blocked on a terminal cannot be interrupted, so the goroutine may
// outlive Run until the next line arrives.
func (m *Menu) scan(done <-chan struct{}) {
	defer close(m.lines)
	for m.in.Scan() {
		select {
		case m.lines <- m.in.Text():
		case <-done:
			return
		}
	}
	m.inErr = m.in.Err()
}

// readLine prints prompt and returns the next trimmed line. It returns
// io.EOF at end of input and ctx.Err() on cancellation.
func (m *Menu) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-m.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// scanErr is only valid once m.lines has been closed.
func (m *Menu) scanErr() error {
	if m.inErr != nil {
		return fmt.Errorf("read input: %w", m.inErr)
	}
	return nil
}

func (m *Menu) add(ctx context.Context) error {
	desc, err := m.readLine(ctx, "Enter task description: ")
	if err != nil {
		return err
	}
	id := m.store.Add(desc)
	m.ok.Fprintf(m.out, ">> Task added (ID: %d)\n", id)
	return nil
}

func (m *Menu) addTimed(ctx context.Context) error {
	desc, err := m.readLine(ctx, "Enter task description: ")
	if err != nil {
		return err
	}
	deadline, err := m.readLine(ctx, "Enter deadline: ")
	if err != nil {
		return err
	}
	id := m.store.AddTimed(desc, deadline)
	m.ok.Fprintf(m.out, ">> Task added (ID: %d)\n", id)
	return nil
}

func (m *Menu) complete(ctx context.Context) error {
	input, err := m.readLine(ctx, "Enter Task ID to complete: ")
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(input)
	if err != nil {
		m.warn.Fprintln(m.out, ">> Invalid task ID.")
		return nil
	}
	if err := m.store.Complete(id); err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			m.warn.Fprintln(m.out, ">> Task ID not found.")
			return nil
		}
		return err
	}
	m.ok.Fprintf(m.out, ">> Task %d marked as done.\n", id)
	return nil
}

func (m *Menu) undo() error {
	id, err := m.store.Undo()
	switch {
	case err == nil:
		m.ok.Fprintf(m.out, ">> Undone: removed task %d\n", id)
	case errors.Is(err, todo.ErrNothingToUndo):
		m.warn.Fprintln(m.out, ">> Nothing to undo.")
	case errors.Is(err, todo.ErrUndoTargetMissing):
		m.logger.Warn("undo target already gone", "id", id)
		m.warn.Fprintln(m.out, ">> Nothing to undo.")
	default:
		return err
	}
	return nil
}

func (m *Menu) list() error {
	WriteList(m.out, m.store.List(), m.color)
	return nil
}

func (m *Menu) sort(by todo.SortBy) error {
	if err := m.store.Sort(by); err != nil {
		return err
	}
	m.ok.Fprintf(m.out, ">> Sorted by %s.\n", by)
	return nil
}

// WriteList prints tasks in the menu's list layout.
func WriteList(w io.Writer, tasks []todo.Task, colored bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, ">> No tasks found.")
		return
	}
	done := newColor(colored, color.Faint)
	due := newColor(colored, color.FgCyan)
	fmt.Fprintln(w, "\n--- TO-DO LIST ---")
	for _, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[X]"
		}
		line := fmt.Sprintf("%s ID %d: %s", mark, t.ID, t.Description)
		if t.Completed {
			done.Fprint(w, line)
		} else {
			fmt.Fprint(w, line)
		}
		if t.IsTimed() {
			due.Fprintf(w, " (due: %s)", t.Deadline)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "------------------")
}

// newColor returns a color whose output is forced on or off, ignoring the
// package-level terminal detection.
func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
