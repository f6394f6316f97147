package todo

import "fmt"

// Task is a single to-do entry.
type Task struct {
	ID          int
	Description string
	Completed   bool
	// Deadline is a free-form label such as "Friday". It is never parsed.
	Deadline string
}

// IsTimed reports whether the task carries a deadline label.
func (t Task) IsTimed() bool {
	return t.Deadline != ""
}

// String renders the task for list output, e.g. "[x] 3: Buy milk (due: Friday)".
func (t Task) String() string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %d: %s", box, t.ID, t.Description)
	if t.IsTimed() {
		line += fmt.Sprintf(" (due: %s)", t.Deadline)
	}
	return line
}
