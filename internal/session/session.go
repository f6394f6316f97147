// Package session ties a task store to its file for the lifetime of one
// program run: load at startup, save on request and at shutdown.
package session

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/codec"
	"github.com/nibzard/todo-go/internal/todo"
)

// ErrClosed is returned by Save after Close.
var ErrClosed = errors.New("session closed")

// Session owns the store loaded from one task file.
type Session struct {
	path    string
	store   *todo.Store
	logger  *log.Logger
	found   bool
	skipped []codec.LineError
	closed  bool
}

// Open loads the task file at path. A missing file starts an empty list.
// Malformed lines are logged and skipped. Only an unreadable file is an error.
func Open(path string, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Default()
	}

	res, err := codec.Load(path)
	if err != nil {
		return nil, err
	}

	if !res.Found {
		logger.Info("first run, no task file yet", "path", path)
	} else {
		logger.Debug("loaded tasks", "path", path, "count", len(res.Tasks), "next_id", res.NextID)
	}
	for _, le := range res.Skipped {
		logger.Warn("skipped malformed line", "path", path, "line", le.Line, "err", le.Err)
	}

	return &Session{
		path:    path,
		store:   res.Store(),
		logger:  logger,
		found:   res.Found,
		skipped: res.Skipped,
	}, nil
}

// Store returns the live task store.
func (s *Session) Store() *todo.Store {
	return s.store
}

// Path returns the task file path.
func (s *Session) Path() string {
	return s.path
}

// Found reports whether the task file existed when the session opened.
func (s *Session) Found() bool {
	return s.found
}

// Skipped returns the number of malformed lines dropped while loading.
func (s *Session) Skipped() int {
	return len(s.skipped)
}

// SkippedLines returns the malformed lines dropped while loading.
func (s *Session) SkippedLines() []codec.LineError {
	out := make([]codec.LineError, len(s.skipped))
	copy(out, s.skipped)
	return out
}

// Save writes the current list, in its current order, to the task file.
// A failed save leaves the in-memory list untouched.
func (s *Session) Save() error {
	if s.closed {
		return ErrClosed
	}
	return s.save()
}

func (s *Session) save() error {
	tasks := s.store.List()
	if err := codec.Save(s.path, tasks); err != nil {
		s.logger.Error("save failed", "path", s.path, "err", err)
		return fmt.Errorf("save tasks: %w", err)
	}
	s.logger.Debug("saved tasks", "path", s.path, "count", len(tasks))
	return nil
}

// Close performs the final save. Calling Close again is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.save()
}
