package app

import "testing"

// TestDetermineLogLevel verifies log level precedence.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"verbose and quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit wins", Config{LogLevel: "error", Verbose: true}, "error"},
		{"invalid explicit", Config{LogLevel: "loud"}, "info"},
		{"trace", Config{LogLevel: "trace"}, "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineLogLevel(&tt.config); got != tt.want {
				t.Errorf("determineLogLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNewLogger verifies the logger honors the computed level.
func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{Quiet: true, LogFormat: "json", LogOutput: "discard"})
	if got := logger.GetLevel().String(); got != "warn" {
		t.Errorf("logger level = %q, want warn", got)
	}
}
