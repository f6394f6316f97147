package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo configuration file
# Values can be overridden by TODO_* environment variables or CLI flags.

# Task file (supports ~ expansion and %VAR% on Windows)
task_file = "~/.todo/tasks.txt"

# Sort applied after loading: "id", "status", or "" to keep saved order
default_sort = ""

# Colorize menu output (NO_COLOR=1 also disables color)
color = true

# Logging goes to stderr
log_level = "warn"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
`
}
