// Package activity keeps an append-only CSV audit trail of catalog changes.
// It is read back for display only.
package activity

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/ledger"
	"github.com/agentstation/designlib/pkg/logging"
)

// Action is the kind of change recorded.
type Action string

const (
	Created Action = "Created"
	Deleted Action = "Deleted"
)

// Entry is one row of the activity log.
type Entry struct {
	Action    Action            `json:"action" yaml:"action"`
	Name      string            `json:"name" yaml:"name"`
	Category  category.Category `json:"category" yaml:"category"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
}

// Log is the activity file at one path.
type Log struct {
	fs     afero.Fs
	path   string
	now    func() time.Time
	logger *zerolog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used for skipped rows on read.
func WithLogger(logger *zerolog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns the activity log stored at file on fsys.
func New(fsys afero.Fs, file string, opts ...Option) *Log {
	l := &Log{fs: fsys, path: file, now: time.Now, logger: logging.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Record appends one entry, writing the header first when the file is new
// or empty.
func (l *Log) Record(action Action, name string, c category.Category) error {
	if err := l.fs.MkdirAll(filepath.Dir(l.path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(l.path), err)
	}

	f, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("open", l.path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return errors.WrapIO("stat", l.path, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = w.Write(constants.ActivityHeader)
	}
	_ = w.Write([]string{string(action), ledger.EscapeName(name), string(c), ledger.FormatTime(l.now())})
	w.Flush()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return errors.WrapIO("write", l.path, err)
	}
	return nil
}

// Entries reads the log back in append order. Malformed rows are skipped
// with a warning; a missing file has no entries.
func (l *Log) Entries() ([]Entry, error) {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, errors.WrapIO("read", l.path, err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	entries := []Entry{}
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapIO("read", l.path, err)
		}
		if first {
			first = false
			if len(row) > 0 && strings.TrimPrefix(row[0], "\ufeff") == constants.ActivityHeader[0] {
				continue
			}
		}
		if len(row) != len(constants.ActivityHeader) {
			line, _ := r.FieldPos(0)
			l.logger.Warn().Str("log", l.path).Int("line", line).Msg("skipping malformed activity row")
			continue
		}
		ts, ok := ledger.ParseTime(row[3])
		if !ok {
			line, _ := r.FieldPos(0)
			l.logger.Warn().Str("log", l.path).Int("line", line).Str("raw", row[3]).Msg("activity row has unreadable timestamp")
		}
		entries = append(entries, Entry{
			Action:    Action(row[0]),
			Name:      ledger.UnescapeName(row[1]),
			Category:  category.Category(row[2]),
			Timestamp: ts,
		})
	}
	return entries, nil
}

// Tail returns the last n entries, newest last. n <= 0 returns everything.
func (l *Log) Tail(n int) ([]Entry, error) {
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
