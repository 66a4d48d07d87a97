package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/designlib/pkg/constants"
)

// Environment variables read by ConfigureFromEnv.
const (
	EnvLevel      = "DESIGNLIB_LOG_LEVEL"
	EnvFormat     = "DESIGNLIB_LOG_FORMAT"
	EnvOutput     = "DESIGNLIB_LOG_OUTPUT"
	EnvTimeFormat = "DESIGNLIB_LOG_TIME_FORMAT"
	EnvCaller     = "DESIGNLIB_LOG_CALLER"
	EnvFields     = "DESIGNLIB_LOG_FIELDS"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum level written (trace..panic, or off).
	Level string

	// Format is json, console, or auto (console on a terminal).
	Format string

	// Output is stderr, stdout, discard, or a file path opened for append.
	Output string

	// TimeFormat is a named layout (kitchen, rfc3339, unix) or a Go layout.
	TimeFormat string

	NoColor   bool
	AddCaller bool

	// Fields are attached to every event.
	Fields map[string]any
}

// DefaultConfig returns info-level auto-format logging to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     map[string]any{},
	}
}

// NewLoggerFromConfig builds a logger; a nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writerFor(cfg)).Level(level).With().Timestamp().Logger()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	if len(cfg.Fields) > 0 {
		zc := logger.With()
		for k, v := range cfg.Fields {
			zc = addField(zc, k, v)
		}
		logger = zc.Logger()
	}
	return logger
}

// Configure installs a logger built from cfg as the default.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigureFromEnv installs a logger built from the DESIGNLIB_LOG_* variables.
func ConfigureFromEnv() {
	Configure(&Config{
		Level:      envOr(EnvLevel, "info"),
		Format:     envOr(EnvFormat, "auto"),
		Output:     envOr(EnvOutput, "stderr"),
		TimeFormat: envOr(EnvTimeFormat, "kitchen"),
		NoColor:    os.Getenv("NO_COLOR") != "",
		AddCaller:  os.Getenv(EnvCaller) == "true",
		Fields:     parseFields(os.Getenv(EnvFields)),
	})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

func writerFor(cfg *Config) io.Writer {
	var out io.Writer
	terminal := false
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
		terminal = isatty.IsTerminal(os.Stderr.Fd())
	case "stdout":
		out = os.Stdout
		terminal = isatty.IsTerminal(os.Stdout.Fd())
	case "discard", "none":
		out = io.Discard
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			out = os.Stderr
		} else {
			out = f
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "auto" {
		format = "json"
		if terminal {
			format = "console"
		}
	}
	if format == "console" || format == "pretty" {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: timeLayout(cfg.TimeFormat),
			NoColor:    cfg.NoColor,
		}
	}
	return out
}

func timeLayout(name string) string {
	switch strings.ToLower(name) {
	case "", "kitchen":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "rfc3339nano":
		return time.RFC3339Nano
	case "unix", "epoch":
		return ""
	case "stamp":
		return time.Stamp
	}
	if strings.Contains(name, "2006") || strings.Contains(name, "15:04") {
		return name
	}
	return time.Kitchen
}

// parseFields reads "k=v,k2=v2".
func parseFields(raw string) map[string]any {
	fields := map[string]any{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return fields
}

func addField(zc zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return zc.Str(key, v)
	case int:
		return zc.Int(key, v)
	case int64:
		return zc.Int64(key, v)
	case uint64:
		return zc.Uint64(key, v)
	case float64:
		return zc.Float64(key, v)
	case bool:
		return zc.Bool(key, v)
	case time.Time:
		return zc.Time(key, v)
	case time.Duration:
		return zc.Dur(key, v)
	case error:
		if key == "error" || key == "err" {
			return zc.Err(v)
		}
		return zc.Str(key, v.Error())
	default:
		return zc.Interface(key, v)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
