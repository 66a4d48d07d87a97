package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures every event written through Logger.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer

	mu sync.Mutex
}

type lockedWriter struct {
	tl *TestLogger
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.tl.mu.Lock()
	defer w.tl.mu.Unlock()
	return w.tl.Buffer.Write(p)
}

// NewTestLogger returns a trace-level JSON logger writing to memory.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	tl := &TestLogger{Buffer: &bytes.Buffer{}}
	logger := zerolog.New(lockedWriter{tl}).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	tl.Logger = &logger
	return tl
}

// Output returns everything written so far.
func (tl *TestLogger) Output() string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.Buffer.String()
}

// Lines returns one element per event.
func (tl *TestLogger) Lines() []string {
	out := strings.TrimSpace(tl.Output())
	if out == "" {
		return []string{}
	}
	return strings.Split(out, "\n")
}

// Contains reports whether any event contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// ContainsAll reports whether the output contains every substring.
func (tl *TestLogger) ContainsAll(substrs ...string) bool {
	out := tl.Output()
	for _, s := range substrs {
		if !strings.Contains(out, s) {
			return false
		}
	}
	return true
}

// Count returns the number of captured events.
func (tl *TestLogger) Count() int {
	return len(tl.Lines())
}

// CountContaining returns how many events contain substr.
func (tl *TestLogger) CountContaining(substr string) int {
	n := 0
	for _, line := range tl.Lines() {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

// Clear drops the captured output.
func (tl *TestLogger) Clear() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.Buffer.Reset()
}

// AssertContains fails t when no event contains substr.
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("log output does not contain %q\noutput:\n%s", substr, tl.Output())
	}
}

// AssertNotContains fails t when some event contains substr.
func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	if tl.Contains(substr) {
		t.Errorf("log output should not contain %q\noutput:\n%s", substr, tl.Output())
	}
}

// AssertCount fails t unless exactly expected events were captured.
func (tl *TestLogger) AssertCount(t testing.TB, expected int) {
	t.Helper()
	if got := tl.Count(); got != expected {
		t.Errorf("expected %d log entries, got %d\noutput:\n%s", expected, got, tl.Output())
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// DisableLoggingForTest silences the default logger until t finishes.
func DisableLoggingForTest(t testing.TB) {
	t.Helper()
	original := *Default()
	SetDefault(zerolog.Nop())
	t.Cleanup(func() { SetDefault(original) })
}

// CaptureLoggingForTest routes the default logger into a TestLogger until t finishes.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()
	original := *Default()
	tl := NewTestLogger(t)
	SetDefault(*tl.Logger)
	t.Cleanup(func() { SetDefault(original) })
	return tl
}
