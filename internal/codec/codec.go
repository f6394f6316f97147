// Package codec reads and writes the plain-text task file.
//
// Each task is one line of comma-separated fields:
//
//	1,Buy milk,1
//	2,"Eggs, flour",0
//	3,Report,0,Friday
//
// The fields are id, description, completed flag (0 or 1) and, for timed
// tasks only, the deadline label. Fields are quoted CSV style when they
// contain a comma, a double quote or leading whitespace, so plain
// descriptions are written bare. A record never spans more than one line:
// quotes are parsed per line and fields with line breaks are not encoded.
package codec

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nibzard/todo-go/internal/todo"
)

var (
	// ErrIO matches any *IOError via errors.Is.
	ErrIO = errors.New("task file i/o failed")

	ErrFieldCount  = errors.New("expected 3 or 4 fields")
	ErrBadID       = errors.New("id must be a positive integer")
	ErrBadFlag     = errors.New("completed flag must be 0 or 1")
	ErrDuplicateID = errors.New("duplicate id")

	// ErrLineBreak is returned by Encode for a field containing CR or LF.
	ErrLineBreak = errors.New("field contains a line break")
)

// IOError reports a failure to open, read or write the task file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s task file %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrIO) match any IOError.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// LineError describes a record that was skipped while decoding.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Result is the decoded content of a task file.
type Result struct {
	Tasks []todo.Task
	// NextID is one past the highest id loaded, or 1.
	NextID int
	// Found is false when the file did not exist.
	Found bool
	// Skipped lists malformed records that were ignored.
	Skipped []LineError
}

// SkippedCount returns the number of malformed records.
func (r *Result) SkippedCount() int {
	return len(r.Skipped)
}

// Store builds a task store from the result. Its undo stack is empty.
func (r *Result) Store() *todo.Store {
	return todo.Restore(r.Tasks, r.NextID)
}

// Load reads the task file at path. A missing file is not an error: the
// result is empty with Found set to false.
func Load(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Result{Tasks: []todo.Task{}, NextID: 1}, nil
		}
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	res, err := Decode(f)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return res, nil
}

// Save overwrites the task file at path with tasks, in order.
func Save(path string, tasks []todo.Task) error {
	var buf bytes.Buffer
	if err := Encode(&buf, tasks); err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}
	if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Encode writes one record per task. A description or deadline containing a
// line break fails with ErrLineBreak and nothing after it is written.
func Encode(w io.Writer, tasks []todo.Task) error {
	cw := csv.NewWriter(w)
	for _, t := range tasks {
		record := encodeRecord(t)
		for _, field := range record[1:] {
			if strings.ContainsAny(field, "\r\n") {
				cw.Flush()
				return fmt.Errorf("task %d: %w", t.ID, ErrLineBreak)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode parses records from r, one per line. Malformed records are
// collected in Result.Skipped and decoding continues with the next line.
// Blank lines are ignored. Only read failures from r are returned as errors.
func Decode(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)

	res := &Result{Tasks: make([]todo.Task, 0), Found: true}
	seen := make(map[int]bool)
	maxID := 0

	for line := 1; ; line++ {
		text, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if text == "" && err == io.EOF {
			break
		}
		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")

		if text != "" {
			task, perr := decodeLine(text)
			switch {
			case perr != nil:
				res.Skipped = append(res.Skipped, LineError{Line: line, Err: perr})
			case seen[task.ID]:
				res.Skipped = append(res.Skipped, LineError{Line: line, Err: fmt.Errorf("%w %d", ErrDuplicateID, task.ID)})
			default:
				seen[task.ID] = true
				if task.ID > maxID {
					maxID = task.ID
				}
				res.Tasks = append(res.Tasks, task)
			}
		}

		if err == io.EOF {
			break
		}
	}

	res.NextID = maxID + 1
	return res, nil
}

// decodeLine parses a single line. The line holds no newline, so an
// unterminated quote fails here instead of swallowing the lines after it.
func decodeLine(text string) (todo.Task, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1

	record, err := cr.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return todo.Task{}, pe.Err
		}
		return todo.Task{}, err
	}
	return decodeRecord(record)
}

func encodeRecord(t todo.Task) []string {
	flag := "0"
	if t.Completed {
		flag = "1"
	}
	record := []string{strconv.Itoa(t.ID), t.Description, flag}
	if t.IsTimed() {
		record = append(record, t.Deadline)
	}
	return record
}

func decodeRecord(record []string) (todo.Task, error) {
	if len(record) != 3 && len(record) != 4 {
		return todo.Task{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(record))
	}

	id, err := strconv.Atoi(record[0])
	// math.MaxInt would leave no room for the next id.
	if err != nil || id < 1 || id == math.MaxInt {
		return todo.Task{}, fmt.Errorf("%w, got %q", ErrBadID, record[0])
	}

	var completed bool
	switch record[2] {
	case "0":
	case "1":
		completed = true
	default:
		return todo.Task{}, fmt.Errorf("%w, got %q", ErrBadFlag, record[2])
	}

	task := todo.Task{
		ID:          id,
		Description: record[1],
		Completed:   completed,
	}
	if len(record) == 4 {
		task.Deadline = record[3]
	}
	return task, nil
}
