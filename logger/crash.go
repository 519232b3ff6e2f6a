package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

// CrashReporter persists panic details to disk so a crashed generation or
// execution flow leaves an artifact behind even when the process keeps
// serving.
type CrashReporter struct {
	dir    string
	logger Logger
}

// NewCrashReporter creates a reporter writing under dir. The directory is
// created on first report, not here.
func NewCrashReporter(dir string, logger Logger) *CrashReporter {
	return &CrashReporter{dir: dir, logger: logger}
}

type crashReport struct {
	Time      time.Time              `json:"time"`
	Component string                 `json:"component"`
	Panic     string                 `json:"panic"`
	Stack     string                 `json:"stack"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Report writes a crash report for a recovered panic value and returns the
// report path. Failures to persist are logged and swallowed; a crash report
// must never take the process down with it.
func (c *CrashReporter) Report(ctx context.Context, component string, recovered interface{}, fields map[string]interface{}) string {
	report := crashReport{
		Time:      time.Now().UTC(),
		Component: component,
		Panic:     fmt.Sprintf("%v", recovered),
		Stack:     string(debug.Stack()),
		Fields:    fields,
	}

	c.logger.Error(ctx, "panic recovered", map[string]interface{}{
		"component": component,
		"panic":     report.Panic,
	})

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn(ctx, "unable to create crash report directory", map[string]interface{}{"error": err.Error()})
		return ""
	}

	name := fmt.Sprintf("crash_%s_%s.json", component, report.Time.Format("20060102T150405"))
	path := filepath.Join(c.dir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		c.logger.Warn(ctx, "unable to encode crash report", map[string]interface{}{"error": err.Error()})
		return ""
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Warn(ctx, "unable to write crash report", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return path
}
