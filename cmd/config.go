package cmd

import (
	"fmt"

	"github.com/nibzard/todo-go/internal/config"
)

// configCommand prints the effective configuration or an example file.
func configCommand(a *app, args []string) error {
	fs := newFlagSet("config")
	example := fs.Bool("example", false, "Print an example todo.toml")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}
	if f := a.sources.GetConfigFile(); f != "" {
		fmt.Fprintf(stdout, "# config file: %s\n", f)
	}
	writeSources(a)
	return nil
}

// writeSources prints each setting with the layer it came from.
func writeSources(a *app) {
	cfg := a.cfg
	values := map[string]string{
		"task_file":      fmt.Sprintf("%q", cfg.TaskFile),
		"default_sort":   fmt.Sprintf("%q", cfg.DefaultSort),
		"color":          fmt.Sprintf("%t", cfg.Color),
		"log_level":      fmt.Sprintf("%q", cfg.LogLevel),
		"log_format":     fmt.Sprintf("%q", cfg.LogFormat),
		"log_timestamps": fmt.Sprintf("%t", cfg.LogTimestamps),
	}
	for _, field := range a.sources.SortedSources() {
		v, ok := values[field]
		if !ok {
			continue
		}
		fmt.Fprintf(stdout, "%s = %s  # %s\n", field, v, a.sources.Sources[field])
	}
}
