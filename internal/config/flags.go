package config

import (
	"flag"
)

// flagToField maps CLI flag names to config field names.
var flagToField = map[string]string{
	"file":           "task_file",
	"sort":           "default_sort",
	"color":          "color",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
}

// parseFlags defines the global flags on fs, parses args, and applies only
// the flags that were explicitly set. Positional arguments remain in fs.Args().
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	var (
		taskFile      = cfg.TaskFile
		defaultSort   = cfg.DefaultSort
		color         = cfg.Color
		logLevel      = cfg.LogLevel
		logFormat     = cfg.LogFormat
		logTimestamps = cfg.LogTimestamps
	)

	fs.StringVar(&taskFile, "file", taskFile, "Path to task file")
	fs.StringVar(&defaultSort, "sort", defaultSort, "Sort applied after loading: id or status")
	fs.BoolVar(&color, "color", color, "Colorize output")
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&logFormat, "log-format", logFormat, "Log format: text, json, logfmt")
	fs.BoolVar(&logTimestamps, "log-timestamps", logTimestamps, "Include timestamps in log output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		field, ok := flagToField[f.Name]
		if !ok {
			return
		}
		switch field {
		case "task_file":
			cfg.TaskFile = taskFile
		case "default_sort":
			cfg.DefaultSort = defaultSort
		case "color":
			cfg.Color = color
		case "log_level":
			cfg.LogLevel = logLevel
		case "log_format":
			cfg.LogFormat = logFormat
		case "log_timestamps":
			cfg.LogTimestamps = logTimestamps
		}
		if sources != nil {
			sources[field] = SourceFlag
		}
	})

	return nil
}
