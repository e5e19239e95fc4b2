// Package cli implements the kinfolk command-line interface.
//
// Commands read family records through a configured repository (a YAML,
// JSON, TOML or spreadsheet file, SQLite, MongoDB or a REST table), lay them
// out around one person and export or serve the result. Settings come from
// a TOML config file; flags override it.
//
// # Commands
//
// The main commands are:
//   - render: Export the tree as an HTML page, SVG, PDF or graphviz drawing
//   - layout: Write the computed coordinates as JSON
//   - search, timeline: Query the family records
//   - view: Explore the tree in the terminal
//   - serve: Serve the interactive page with live reload
//   - cache: Manage the layout, artifact and photo cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The server
// logs every request at debug level.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Loaded 42 records (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
