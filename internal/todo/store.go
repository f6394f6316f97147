package todo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrNothingToUndo is returned by Undo when no addition is left to reverse.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrUndoTargetMissing is returned by Undo when the most recent addition
	// is no longer in the list. The undo entry is consumed anyway.
	ErrUndoTargetMissing = errors.New("undo target missing")
	// ErrUnknownSort is returned for an unrecognised sort criterion.
	ErrUnknownSort = errors.New("unknown sort criterion")
)

// SortBy selects the ordering applied by Store.Sort.
type SortBy string

const (
	// SortByID orders tasks by ascending id.
	SortByID SortBy = "id"
	// SortByStatus puts incomplete tasks before completed ones.
	SortByStatus SortBy = "status"
)

// ParseSortBy normalizes a user-supplied criterion name.
func ParseSortBy(input string) (SortBy, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "id", "ids", "created":
		return SortByID, nil
	case "status", "state", "done", "completed":
		return SortByStatus, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSort, input)
	}
}

// Store is the in-memory task list. It is not safe for concurrent use.
type Store struct {
	tasks  []Task
	nextID int
	// recent holds ids of additions, most recent last.
	recent []int
}

// NewStore returns an empty store whose first id is 1.
func NewStore() *Store {
	return &Store{
		tasks:  make([]Task, 0),
		nextID: 1,
	}
}

// Restore builds a store from previously saved tasks. nextID is raised above
// the highest id in tasks if needed. The undo stack starts empty.
func Restore(tasks []Task, nextID int) *Store {
	s := NewStore()
	s.tasks = append(s.tasks, tasks...)
	for _, t := range tasks {
		if t.ID >= nextID {
			nextID = t.ID + 1
		}
	}
	if nextID > s.nextID {
		s.nextID = nextID
	}
	return s
}

// lineBreaks folds CR, LF and CRLF into a single space each.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// singleLine keeps task text on one line of the task file.
func singleLine(text string) string {
	return lineBreaks.Replace(text)
}

// Add appends a task and returns its id. Line breaks in the description
// are replaced with spaces.
func (s *Store) Add(description string) int {
	return s.add(Task{Description: description})
}

// AddTimed appends a task carrying a deadline label and returns its id.
func (s *Store) AddTimed(description, deadline string) int {
	return s.add(Task{Description: description, Deadline: deadline})
}

func (s *Store) add(task Task) int {
	task.Description = singleLine(task.Description)
	task.Deadline = singleLine(task.Deadline)
	task.ID = s.nextID
	task.Completed = false
	s.tasks = append(s.tasks, task)
	s.recent = append(s.recent, task.ID)
	s.nextID++
	return task.ID
}

// Complete marks the task with the given id as done. Completing an already
// completed task succeeds.
func (s *Store) Complete(id int) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	s.tasks[i].Completed = true
	return nil
}

// Undo removes the most recently added task that has not already been undone
// and returns its id. The task is removed whether or not it was completed.
func (s *Store) Undo() (int, error) {
	if len(s.recent) == 0 {
		return 0, ErrNothingToUndo
	}
	id := s.recent[len(s.recent)-1]
	s.recent = s.recent[:len(s.recent)-1]

	i := s.indexOf(id)
	if i < 0 {
		return id, fmt.Errorf("task %d: %w", id, ErrUndoTargetMissing)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return id, nil
}

// Sort reorders the list in place. Both criteria keep the relative order of
// tasks that compare equal.
func (s *Store) Sort(by SortBy) error {
	switch by {
	case SortByID:
		sort.SliceStable(s.tasks, func(i, j int) bool {
			return s.tasks[i].ID < s.tasks[j].ID
		})
	case SortByStatus:
		sort.SliceStable(s.tasks, func(i, j int) bool {
			return !s.tasks[i].Completed && s.tasks[j].Completed
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSort, by)
	}
	return nil
}

// List returns a copy of the tasks in their current order. The result is
// never nil.
func (s *Store) List() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with the given id.
func (s *Store) Get(id int) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// NextID returns the id the next addition will receive.
func (s *Store) NextID() int {
	return s.nextID
}

// UndoDepth returns how many additions can still be undone.
func (s *Store) UndoDepth() int {
	return len(s.recent)
}

// Counts returns the number of pending and completed tasks.
func (s *Store) Counts() (pending, completed int) {
	for _, t := range s.tasks {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed
}

func (s *Store) indexOf(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
