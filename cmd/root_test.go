// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/ui"
)

// isolate gives the test a private home, working directory and environment,
// and returns a task file path inside it.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	for _, key := range []string{
		"TODO_FILE", "TODO_SORT", "TODO_LOG_LEVEL", "TODO_LOG_FORMAT",
		"TODO_LOG_TIMESTAMPS", "TODO_COLOR", "NO_COLOR",
	} {
		t.Setenv(key, "")
	}
	chdir(t, t.TempDir())
	return filepath.Join(t.TempDir(), "tasks.txt")
}

// runCLI runs the CLI with input on stdin and returns stdout and stderr.
func runCLI(t *testing.T, ctx context.Context, input string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldIn, oldOut, oldErr := stdin, stdout, stderr
	stdin, stdout, stderr = strings.NewReader(input), &out, &errOut
	defer func() {
		stdin, stdout, stderr = oldIn, oldOut, oldErr
	}()
	err := Run(ctx, args)
	return out.String(), errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
		wantErr bool
	}{
		{"help flag", []string{"--help"}, "Usage:", false},
		{"short help flag", []string{"-h"}, "Usage:", false},
		{"help command", []string{"help"}, "Commands:", false},
		{"version flag", []string{"--version"}, "todo version dev", false},
		{"short version flag", []string{"-v"}, "todo version dev", false},
		{"version command", []string{"version"}, "todo version dev", false},
		{"unknown command", []string{"frobnicate"}, "", true},
		{"unknown global flag", []string{"-bogus"}, "", true},
		{"subcommand help", []string{"ls", "-h"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			out, _, err := runCLI(t, context.Background(), "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("output missing %q:\n%s", tt.wantOut, out)
			}
		})
	}
}

func TestAddDoneAndList(t *testing.T) {
	path := isolate(t)
	ctx := context.Background()

	out, _, err := runCLI(t, ctx, "", "-file", path, "add", "Buy", "milk")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Task added (ID: 1)") {
		t.Errorf("add output: got %q", out)
	}
	if _, _, err := runCLI(t, ctx, "", "-file", path, "add", "-deadline", "Friday", "Report, final"); err != nil {
		t.Fatalf("add timed: %v", err)
	}
	if got, want := readFile(t, path), "1,Buy milk,0\n2,\"Report, final\",0,Friday\n"; got != want {
		t.Errorf("file after add: got %q, want %q", got, want)
	}

	out, _, err = runCLI(t, ctx, "", "-file", path, "done", "1")
	if err != nil {
		t.Fatalf("done: %v", err)
	}
	if !strings.Contains(out, "Task 1 marked as done") {
		t.Errorf("done output: got %q", out)
	}

	out, _, err = runCLI(t, ctx, "", "-file", path, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	for _, want := range []string{"[X] ID 1: Buy milk", "[ ] ID 2: Report, final (due: Friday)"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, ctx, "", "-file", path, "ls", "-pending", "-sort", "status")
	if err != nil {
		t.Fatalf("ls -pending: %v", err)
	}
	if strings.Contains(out, "Buy milk") || !strings.Contains(out, "Report") {
		t.Errorf("ls -pending output:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"add without description", []string{"add"}, nil},
		{"done without id", []string{"done"}, nil},
		{"done with bad id", []string{"done", "abc"}, nil},
		{"done with unknown id", []string{"done", "99"}, todo.ErrNotFound},
		{"ls bad sort", []string{"ls", "-sort", "priority"}, todo.ErrUnknownSort},
		{"ls extra args", []string{"ls", "extra"}, nil},
		{"export without file", []string{"export"}, nil},
		{"import without file", []string{"import"}, nil},
		{"tui without terminal", []string{"tui"}, ui.ErrNotTTY},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := isolate(t)
			_, _, err := runCLI(t, context.Background(), "", append([]string{"-file", path}, tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("got %v, want %v", err, tt.is)
			}
		})
	}
}

func TestMenuScenario(t *testing.T) {
	path := isolate(t)
	input := "1\nBuy milk\n1\nWalk dog\n3\n1\n5\n4\n0\n"

	out, _, err := runCLI(t, context.Background(), input, "-file", path)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if !strings.Contains(out, ">> Undone: removed task 2") {
		t.Errorf("output missing undo message:\n%s", out)
	}
	if !strings.Contains(out, ">> Saved 1 tasks to "+path) {
		t.Errorf("output missing save message:\n%s", out)
	}
	if got := readFile(t, path); got != "1,Buy milk,1\n" {
		t.Errorf("file: got %q, want %q", got, "1,Buy milk,1\n")
	}
}

func TestMenuSavesOnEndOfInput(t *testing.T) {
	path := isolate(t)
	if _, _, err := runCLI(t, context.Background(), "1\nWalk dog\n", "-file", path, "menu"); err != nil {
		t.Fatalf("menu: %v", err)
	}
	if got := readFile(t, path); got != "1,Walk dog,0\n" {
		t.Errorf("file: got %q", got)
	}
}

func TestMenuSavesOnCancel(t *testing.T) {
	path := isolate(t)
	writeFile(t, path, "4,Kept,0\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := runCLI(t, ctx, "", "-file", path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if got := readFile(t, path); got != "4,Kept,0\n" {
		t.Errorf("file after cancel: got %q", got)
	}
}

func TestMenuReportsMalformedLines(t *testing.T) {
	path := isolate(t)
	writeFile(t, path, "1,Buy milk,0\n2,Walk dog\n")

	out, logs, err := runCLI(t, context.Background(), "4\n0\n", "-file", path)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if !strings.Contains(logs, "skipped malformed line") {
		t.Errorf("stderr missing warning:\n%s", logs)
	}
	if !strings.Contains(out, "ID 1: Buy milk") {
		t.Errorf("list missing loaded task:\n%s", out)
	}
	if got := readFile(t, path); got != "1,Buy milk,0\n" {
		t.Errorf("file after save: got %q", got)
	}
}

func TestDefaultSortFromEnv(t *testing.T) {
	path := isolate(t)
	writeFile(t, path, "1,done first,1\n2,pending,0\n")
	t.Setenv("TODO_SORT", "status")

	out, _, err := runCLI(t, context.Background(), "", "-file", path, "ls")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if strings.Index(out, "pending") > strings.Index(out, "done first") {
		t.Errorf("expected pending task first:\n%s", out)
	}
}

func TestDoctorCommand(t *testing.T) {
	t.Run("healthy file", func(t *testing.T) {
		path := isolate(t)
		writeFile(t, path, "1,a,0\n2,b,1\n")
		out, _, err := runCLI(t, context.Background(), "", "-file", path, "doctor", "-v")
		if err != nil {
			t.Fatalf("doctor: %v\n%s", err, out)
		}
		for _, want := range []string{"2 tasks (1 pending, 1 done), next id 3", "All checks passed", "task_file = "} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("missing file", func(t *testing.T) {
		path := isolate(t)
		out, _, err := runCLI(t, context.Background(), "", "-file", path, "doctor")
		if err != nil {
			t.Fatalf("doctor: %v", err)
		}
		if !strings.Contains(out, "Not found") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("malformed lines", func(t *testing.T) {
		path := isolate(t)
		writeFile(t, path, "1,a,0\n2,b\n")
		out, _, err := runCLI(t, context.Background(), "", "-file", path, "doctor")
		if err == nil {
			t.Fatal("expected doctor to fail")
		}
		if !strings.Contains(out, "line 2") {
			t.Errorf("output missing line report:\n%s", out)
		}
		if got := readFile(t, path); got != "1,a,0\n2,b\n" {
			t.Errorf("doctor modified the file: %q", got)
		}
	})
}

func TestExportImport(t *testing.T) {
	path := isolate(t)
	ctx := context.Background()
	writeFile(t, path, "1,\"Eggs, flour\",1\n3,Report,0,Friday\n")
	snap := filepath.Join(t.TempDir(), "tasks.json")

	out, _, err := runCLI(t, ctx, "", "-file", path, "export", snap)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported 2 tasks") {
		t.Errorf("export output: %q", out)
	}

	target := filepath.Join(t.TempDir(), "imported.txt")
	out, _, err = runCLI(t, ctx, "", "-file", target, "import", "-dry-run", snap)
	if err != nil {
		t.Fatalf("import -dry-run: %v", err)
	}
	if !strings.Contains(out, "is valid (2 tasks)") {
		t.Errorf("dry-run output: %q", out)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("dry run wrote the task file: %v", err)
	}

	if _, _, err := runCLI(t, ctx, "", "-file", target, "import", snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got, want := readFile(t, target), readFile(t, path); got != want {
		t.Errorf("imported file: got %q, want %q", got, want)
	}
}

func TestImportDropsLargerNextID(t *testing.T) {
	path := isolate(t)
	ctx := context.Background()
	snap := filepath.Join(t.TempDir(), "tasks.json")
	writeFile(t, snap, `{"schema_version": 1, "next_id": 10, "tasks": [{"id": 2, "description": "a", "completed": false}]}`)

	out, _, err := runCLI(t, ctx, "", "-file", path, "import", snap)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "next_id 10 is not kept; the next new task gets ID 3") {
		t.Errorf("import output missing next_id note: %q", out)
	}

	out, _, err = runCLI(t, ctx, "", "-file", path, "add", "b")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Task added (ID: 3)") {
		t.Errorf("add output: got %q", out)
	}

	_, errOut, err := runCLI(t, ctx, "", "import", "-h")
	if err != nil {
		t.Fatalf("import -h: %v", err)
	}
	if !strings.Contains(errOut, "next_id") {
		t.Errorf("import usage does not mention next_id:\n%s", errOut)
	}
}

func TestImportRejectsInvalidSnapshot(t *testing.T) {
	path := isolate(t)
	writeFile(t, path, "1,keep me,0\n")
	snap := filepath.Join(t.TempDir(), "bad.json")
	writeFile(t, snap, `{"schema_version": 1, "next_id": 2, "tasks": [{"id": 1, "description": "a", "completed": false}, {"id": 1, "description": "b", "completed": false}]}`)

	_, errOut, err := runCLI(t, context.Background(), "", "-file", path, "import", snap)
	if err == nil {
		t.Fatal("expected import to fail")
	}
	if !strings.Contains(errOut, "tasks[1].id") {
		t.Errorf("stderr missing error path:\n%s", errOut)
	}
	if got := readFile(t, path); got != "1,keep me,0\n" {
		t.Errorf("task file changed: %q", got)
	}
}

func TestConfigCommand(t *testing.T) {
	path := isolate(t)

	out, _, err := runCLI(t, context.Background(), "", "-file", path, "-log-level", "error", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{
		`task_file = "` + path + `"  # flag`,
		`log_level = "error"  # flag`,
		`log_format = "text"  # default`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, context.Background(), "", "config", "-example")
	if err != nil {
		t.Fatalf("config -example: %v", err)
	}
	if !strings.Contains(out, "default_sort") {
		t.Errorf("example output:\n%s", out)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
