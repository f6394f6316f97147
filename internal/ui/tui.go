// Package ui provides the full-screen terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/todo-go/internal/todo"
)

// ErrNotTTY is returned by RunTUI when stdout is not a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// Options configures the TUI.
type Options struct {
	// Title is shown above the list, typically the task file path.
	Title string
	// Save writes the list to disk for the "w" key. Nil disables it.
	Save   func() error
	Logger *log.Logger
}

// RunTUI runs the interactive list until the user quits or ctx is
// cancelled. Saving on exit is left to the caller.
func RunTUI(ctx context.Context, store *todo.Store, opts Options) error {
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	model := newTUIModel(store, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type mode int

const (
	modeList mode = iota
	modeAddDescription
	modeAddDeadline
)

var sortCycle = []todo.SortBy{todo.SortByID, todo.SortByStatus}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	deadlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
)

type tuiModel struct {
	store  *todo.Store
	save   func() error
	logger *log.Logger
	title  string

	cursor      int
	mode        mode
	timed       bool
	description string
	input       textinput.Model
	sortNext    int
	status      string
	showHelp    bool
}

func newTUIModel(store *todo.Store, opts Options) *tuiModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	return &tuiModel{
		store:  store,
		save:   opts.Save,
		logger: logger,
		title:  opts.Title,
		input:  ti,
		status: "Press a to add, space to complete, h for help.",
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updateInput(msg)
		}
		return m.updateList(msg.String())
	case tea.WindowSizeMsg:
		if msg.Width > 20 {
			m.input.Width = msg.Width - 20
		}
	}
	return m, nil
}

func (m *tuiModel) updateList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < m.store.Len()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a":
		return m, m.startAdd(false)
	case "t":
		return m, m.startAdd(true)
	case " ", "enter":
		m.completeSelected()
	case "u":
		m.undo()
	case "s":
		m.cycleSort()
	case "w":
		m.saveNow()
	case "h", "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *tuiModel) startAdd(timed bool) tea.Cmd {
	m.mode = modeAddDescription
	m.timed = timed
	m.description = ""
	m.input.SetValue("")
	m.input.Placeholder = "Task description"
	m.status = ""
	return m.input.Focus()
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.endInput()
		m.status = "Cancelled"
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		if m.mode == modeAddDescription && m.timed {
			m.description = value
			m.mode = modeAddDeadline
			m.input.SetValue("")
			m.input.Placeholder = "Deadline, e.g. Friday"
			return m, nil
		}
		var id int
		if m.mode == modeAddDeadline {
			id = m.store.AddTimed(m.description, value)
		} else {
			id = m.store.Add(value)
		}
		m.endInput()
		m.status = fmt.Sprintf("Task added (ID: %d)", id)
		m.selectID(id)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) endInput() {
	m.mode = modeList
	m.timed = false
	m.description = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m *tuiModel) completeSelected() {
	tasks := m.store.List()
	if len(tasks) == 0 {
		m.status = "No tasks found"
		return
	}
	id := tasks[m.cursor].ID
	if err := m.store.Complete(id); err != nil {
		m.status = "Task ID not found"
		return
	}
	m.status = fmt.Sprintf("Task %d marked as done", id)
}

func (m *tuiModel) undo() {
	id, err := m.store.Undo()
	switch {
	case err == nil:
		m.status = fmt.Sprintf("Undone: removed task %d", id)
	case errors.Is(err, todo.ErrUndoTargetMissing):
		m.logger.Warn("undo target already gone", "id", id)
		m.status = "Nothing to undo"
	default:
		m.status = "Nothing to undo"
	}
	m.clampCursor()
}

func (m *tuiModel) cycleSort() {
	by := sortCycle[m.sortNext]
	m.sortNext = (m.sortNext + 1) % len(sortCycle)
	if err := m.store.Sort(by); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("Sorted by %s", by)
	m.clampCursor()
}

func (m *tuiModel) saveNow() {
	if m.save == nil {
		m.status = "Saving is not available"
		return
	}
	if err := m.save(); err != nil {
		m.status = fmt.Sprintf("Save failed: %v", err)
		return
	}
	m.status = "Saved"
}

func (m *tuiModel) selectID(id int) {
	for i, t := range m.store.List() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *tuiModel) clampCursor() {
	n := m.store.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.title)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	pending, completed := m.store.Counts()
	b.WriteString(fmt.Sprintf("  Pending: %d  Done: %d\n\n", pending, completed))
	writeTasks(&b, m.store.List(), m.cursor)

	switch m.mode {
	case modeAddDescription:
		b.WriteString("\nNew task: " + m.input.View() + "\n")
	case modeAddDeadline:
		b.WriteString(fmt.Sprintf("\nDeadline for %q: %s\n", m.description, m.input.View()))
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	writeFooter(&b)
	return b.String()
}

func writeTitle(b *strings.Builder, path string) {
	title := "To-Do List"
	if path != "" {
		title += "  " + path
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
}

func writeTasks(b *strings.Builder, tasks []todo.Task, cursor int) {
	if len(tasks) == 0 {
		b.WriteString("  No tasks found.\n")
		return
	}
	for i, t := range tasks {
		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(prefix + formatTask(t) + "\n")
	}
}

func formatTask(t todo.Task) string {
	base := t
	base.Deadline = ""
	line := base.String()
	if t.Completed {
		line = doneStyle.Render(line)
	}
	if t.IsTimed() {
		line += " " + deadlineStyle.Render("(due: "+t.Deadline+")")
	}
	return line
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  j/k, up/down   Move selection\n")
	b.WriteString("  a              Add task\n")
	b.WriteString("  t              Add timed task\n")
	b.WriteString("  space, enter   Complete selected task\n")
	b.WriteString("  u              Undo last addition\n")
	b.WriteString("  s              Cycle sort (id, status)\n")
	b.WriteString("  w              Save now\n")
	b.WriteString("  h, ?           Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Save and quit\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("\n" + footerStyle.Render("Press h for help | q to quit") + "\n")
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
