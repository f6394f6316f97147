// Package snapshot exports and imports task lists as JSON documents.
//
// A snapshot looks like:
//
//	{
//	  "schema_version": 1,
//	  "next_id": 4,
//	  "tasks": [
//	    {"id": 1, "description": "Buy milk", "completed": true},
//	    {"id": 3, "description": "Report", "completed": false, "deadline": "Friday"}
//	  ]
//	}
//
// Documents are checked against the embedded JSON Schema (draft 2020-12) and
// then against the rules the schema cannot express: unique ids and a next_id
// above every id.
package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todo-go/internal/todo"
)

// SchemaVersion is the only supported snapshot version.
const SchemaVersion = 1

const schemaURL = "https://github.com/nibzard/todo-go/snapshot.schema.json"

//go:embed schema.json
var schemaJSON []byte

// Task is the JSON form of a todo.Task.
type Task struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Deadline    string `json:"deadline,omitempty"`
}

// File is a snapshot document.
type File struct {
	SchemaVersion int    `json:"schema_version"`
	NextID        int    `json:"next_id"`
	Tasks         []Task `json:"tasks"`

	// raw holds the bytes the file was loaded from, so validation sees
	// fields the struct does not know about.
	raw []byte
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dotted path to the offending value, e.g. tasks[2].id
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

// FromTasks builds a snapshot of tasks in their current order.
func FromTasks(tasks []todo.Task, nextID int) *File {
	f := &File{
		SchemaVersion: SchemaVersion,
		NextID:        nextID,
		Tasks:         make([]Task, 0, len(tasks)),
	}
	for _, t := range tasks {
		f.Tasks = append(f.Tasks, Task{
			ID:          t.ID,
			Description: t.Description,
			Completed:   t.Completed,
			Deadline:    t.Deadline,
		})
	}
	return f
}

// TodoTasks converts the snapshot back into store tasks.
func (f *File) TodoTasks() []todo.Task {
	out := make([]todo.Task, 0, len(f.Tasks))
	for _, t := range f.Tasks {
		out = append(out, todo.Task{
			ID:          t.ID,
			Description: t.Description,
			Completed:   t.Completed,
			Deadline:    t.Deadline,
		})
	}
	return out
}

// Load reads and parses a snapshot from path. It does not validate.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	f.raw = data
	return &f, nil
}

// Save writes the snapshot to path with 2-space indentation.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Validate checks the snapshot against the schema and the id rules.
func (f *File) Validate() *ValidationResult {
	result := &ValidationResult{
		Valid:  true,
		Errors: make([]error, 0),
	}

	validateWithSchema(f, result)
	if !result.Valid {
		return result
	}
	f.validateIDs(result)
	f.validateText(result)
	return result
}

// validateText rejects line breaks, which the task file cannot hold.
func (f *File) validateText(result *ValidationResult) {
	for i, t := range f.Tasks {
		for field, value := range map[string]string{"description": t.Description, "deadline": t.Deadline} {
			if strings.ContainsAny(value, "\r\n") {
				result.Valid = false
				result.Errors = append(result.Errors, &ValidationError{
					Path: fmt.Sprintf("tasks[%d].%s", i, field),
					Err:  fmt.Errorf("must not contain line breaks"),
				})
			}
		}
	}
}

func (f *File) validateIDs(result *ValidationResult) {
	seen := make(map[int]int, len(f.Tasks))
	maxID := 0
	for i, t := range f.Tasks {
		path := fmt.Sprintf("tasks[%d].id", i)
		if first, dup := seen[t.ID]; dup {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: path,
				Err:  fmt.Errorf("duplicate id %d (first used by tasks[%d])", t.ID, first),
			})
			continue
		}
		seen[t.ID] = i
		if t.ID > maxID {
			maxID = t.ID
		}
	}

	if f.NextID <= maxID {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "next_id",
			Err:  fmt.Errorf("must be greater than highest id %d, got %d", maxID, f.NextID),
		})
	}
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
}

func validateWithSchema(f *File, result *ValidationResult) {
	schema, err := compileSchema()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("compile schema: %w", err))
		return
	}

	data := f.raw
	if data == nil {
		data, err = json.Marshal(f)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Err: fmt.Errorf("failed to marshal snapshot for validation: %w", err),
			})
			return
		}
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("failed to unmarshal snapshot for validation: %w", err),
		})
		return
	}

	if err := schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath turns "/tasks/0/id" into "tasks[0].id".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
