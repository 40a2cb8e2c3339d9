// Package logger is the process-wide leveled log used by every layer.
//
// Debug, Info and Warn lines, sections and timings appear only in verbose
// mode (--verbose, log.verbose or DOCQA_VERBOSE). Errors always appear.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the severity tag of a line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var tags = [...]string{"[DEBUG] ", "[INFO] ", "[WARN] ", "[ERROR] "}

func (l Level) String() string { return tags[l] }

var state = struct {
	sync.RWMutex
	verbose bool
	out     io.Writer
}{out: os.Stderr}

func SetVerbose(v bool) {
	state.Lock()
	state.verbose = v
	state.Unlock()
}

func IsVerbose() bool {
	state.RLock()
	defer state.RUnlock()
	return state.verbose
}

// SetOutput redirects all lines; the default is os.Stderr.
func SetOutput(w io.Writer) {
	state.Lock()
	state.out = w
	state.Unlock()
}

// Output is the current destination, shared with the HTTP framework's logger.
func Output() io.Writer {
	state.RLock()
	defer state.RUnlock()
	return state.out
}

// write prints s when level passes the verbosity gate.
func write(level Level, s string) {
	state.RLock()
	defer state.RUnlock()
	if level < LevelError && !state.verbose {
		return
	}
	fmt.Fprint(state.out, s)
}

func logf(level Level, format string, args ...any) {
	write(level, level.String()+fmt.Sprintf(format, args...)+"\n")
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error is never suppressed.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a banner that groups the lines of one pipeline run.
func Section(name string) {
	write(LevelDebug, "\n=== "+name+" ===\n")
}

// Elapsed logs how long name took. Use with defer:
//
//	defer logger.Elapsed("answer", time.Now())
func Elapsed(name string, start time.Time) {
	Debug("%s took %s", name, time.Since(start).Round(time.Millisecond))
}
