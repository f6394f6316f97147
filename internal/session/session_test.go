package session

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/codec"
	"github.com/nibzard/todo-go/internal/logging"
)

func bufferLogger(buf *bytes.Buffer) *log.Logger {
	opts := logging.DefaultOptions()
	opts.Level = log.DebugLevel
	return logging.New(buf, opts)
}

func TestOpenMissingFile(t *testing.T) {
	var logs bytes.Buffer
	path := filepath.Join(t.TempDir(), "tasks.txt")

	s, err := Open(path, bufferLogger(&logs))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Found() {
		t.Error("Found: got true, want false")
	}
	if s.Store().Len() != 0 || s.Store().NextID() != 1 {
		t.Errorf("store: got len %d next %d, want 0 and 1", s.Store().Len(), s.Store().NextID())
	}
	if s.Path() != path {
		t.Errorf("Path: got %q, want %q", s.Path(), path)
	}
	if !strings.Contains(logs.String(), "first run") {
		t.Errorf("expected first run log, got %q", logs.String())
	}
}

func TestOpenSkipsMalformedLines(t *testing.T) {
	var logs bytes.Buffer
	path := filepath.Join(t.TempDir(), "tasks.txt")
	if err := os.WriteFile(path, []byte("1,Buy milk,0\n2,Walk dog\n3,x,maybe\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, bufferLogger(&logs))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Store().Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Store().Len())
	}
	if s.Skipped() != 2 {
		t.Errorf("Skipped: got %d, want 2", s.Skipped())
	}
	lines := s.SkippedLines()
	if len(lines) != 2 || lines[0].Line != 2 || lines[1].Line != 3 {
		t.Errorf("SkippedLines: got %+v", lines)
	}
	if got := strings.Count(logs.String(), "skipped malformed line"); got != 2 {
		t.Errorf("warnings logged: got %d, want 2", got)
	}
}

func TestOpenUnreadable(t *testing.T) {
	_, err := Open(t.TempDir(), logging.Discard())
	if !errors.Is(err, codec.ErrIO) {
		t.Fatalf("got %v, want ErrIO", err)
	}
}

func TestSaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.txt")
	s, err := Open(path, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	st := s.Store()
	st.Add("Buy milk")
	st.AddTimed("Report, final", "Friday")
	if err := st.Complete(1); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := s.Save(); !errors.Is(err, ErrClosed) {
		t.Errorf("Save after Close: got %v, want ErrClosed", err)
	}

	reopened, err := Open(path, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.Found() {
		t.Error("Found: got false, want true")
	}
	list := reopened.Store().List()
	if len(list) != 2 || !list[0].Completed || list[1].Deadline != "Friday" || list[1].Description != "Report, final" {
		t.Errorf("reopened list: got %+v", list)
	}
	if reopened.Store().NextID() != 3 {
		t.Errorf("NextID: got %d, want 3", reopened.Store().NextID())
	}
	if reopened.Store().UndoDepth() != 0 {
		t.Errorf("UndoDepth: got %d, want 0", reopened.Store().UndoDepth())
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")

	s, err := Open(filepath.Join(blocker, "tasks.txt"), logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// The parent directory is now a regular file, so the save cannot land.
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Store().Add("kept")
	if err := s.Save(); !errors.Is(err, codec.ErrIO) {
		t.Fatalf("Save: got %v, want ErrIO", err)
	}
	if s.Store().Len() != 1 {
		t.Errorf("Len after failed save: got %d, want 1", s.Store().Len())
	}
	if err := s.Close(); err == nil {
		t.Error("Close: expected error")
	}
}
