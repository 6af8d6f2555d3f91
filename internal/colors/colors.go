// Package colors provides color output utilities.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Color constants
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

const checkmark = "✓"

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	mu     sync.RWMutex
	logger Logger
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetLogger sets the structured logger to mirror console output.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// SetOutput overrides the output writers. Used in tests.
func SetOutput(out, err io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stdout = out
	stderr = err
}

func current() (Logger, io.Writer, io.Writer) {
	mu.RLock()
	defer mu.RUnlock()
	return logger, stdout, stderr
}

// Error outputs an error message to stderr.
func Error(msgs ...string) {
	msg := strings.Join(msgs, " ")
	l, _, errw := current()
	if l != nil {
		l.Error(msg)
	}
	fmt.Fprintf(errw, "%sError:%s %s\n", Red, Reset, msg)
}

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) {
	msg := strings.Join(msgs, " ")
	l, _, errw := current()
	if l != nil {
		l.Warn(msg)
	}
	fmt.Fprintf(errw, "%sWarning:%s %s\n", Yellow, Reset, msg)
}

// Info outputs an informational message to stdout.
func Info(msgs ...string) {
	msg := strings.Join(msgs, " ")
	l, outw, _ := current()
	if l != nil {
		l.Info(msg)
	}
	fmt.Fprintf(outw, "%s%s%s\n", Cyan, msg, Reset)
}

// Success outputs a success message to stdout.
func Success(msgs ...string) {
	msg := strings.Join(msgs, " ")
	l, outw, _ := current()
	if l != nil {
		l.Info(msg)
	}
	fmt.Fprintf(outw, "%s%s %s%s\n", Green, checkmark, msg, Reset)
}
