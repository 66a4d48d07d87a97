// Package alerts provides status notifications printed to stderr by the CLI.
package alerts

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/designlib/internal/cmd/emoji"
)

// Level represents the severity of an alert.
type Level int

const (
	// LevelError indicates a failure or error condition.
	LevelError Level = iota
	// LevelWarning indicates a problem that did not stop the operation.
	LevelWarning
	// LevelInfo indicates general informational messages.
	LevelInfo
	// LevelSuccess indicates successful completion of an operation.
	LevelSuccess
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Icon returns the status symbol for the level.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return emoji.Error
	case LevelWarning:
		return emoji.Warning
	case LevelSuccess:
		return emoji.Success
	default:
		return emoji.Info
	}
}

// Color returns the ANSI color code for the level.
func (l Level) Color() string {
	switch l {
	case LevelError:
		return "\033[31m"
	case LevelWarning:
		return "\033[33m"
	case LevelSuccess:
		return "\033[32m"
	default:
		return "\033[36m"
	}
}

const resetColor = "\033[0m"

// Alert is a single status line.
type Alert struct {
	Level   Level
	Message string
	Err     error
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message}
}

// NewWarning creates a new warning alert.
func NewWarning(message string) *Alert { return New(LevelWarning, message) }

// NewInfo creates a new info alert.
func NewInfo(message string) *Alert { return New(LevelInfo, message) }

// NewSuccess creates a new success alert.
func NewSuccess(message string) *Alert { return New(LevelSuccess, message) }

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// String returns "<icon> <message>[: <err>]".
func (a *Alert) String() string {
	message := a.Level.Icon() + " " + a.Message
	if a.Err != nil {
		message += ": " + a.Err.Error()
	}
	return message
}

// Writer prints alerts, one per line.
type Writer struct {
	w     io.Writer
	color bool
}

// NewWriter writes to w, colored when w is a terminal and noColor is unset.
func NewWriter(w io.Writer, noColor bool) *Writer {
	color := false
	if f, ok := w.(*os.File); ok && !noColor && os.Getenv("NO_COLOR") == "" {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Writer{w: w, color: color}
}

// Write prints alert.
func (w *Writer) Write(alert *Alert) {
	line := alert.String()
	if w.color {
		line = alert.Level.Color() + line + resetColor
	}
	_, _ = fmt.Fprintln(w.w, line)
}

// Warnings prints one warning alert per error.
func (w *Writer) Warnings(errs []error) {
	for _, err := range errs {
		w.Write(NewWarning("warning").WithError(err))
	}
}
