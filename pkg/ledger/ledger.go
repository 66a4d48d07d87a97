// Package ledger persists the catalog's metadata as a CSV file with one row
// per (file name, category) pair, in upload order.
//
// Every operation reads the file; every mutation rewrites it in full through
// a temporary file and a rename, so readers never see a torn ledger.
package ledger

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/logging"
)

// Ledger is the metadata file at one path.
type Ledger struct {
	fs     afero.Fs
	path   string
	now    func() time.Time
	logger *zerolog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now, used for upload times and date repairs.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger that receives repair warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns the ledger stored at file on fsys.
func New(fsys afero.Fs, file string, opts ...Option) *Ledger {
	l := &Ledger{
		fs:     fsys,
		path:   file,
		now:    time.Now,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Exists reports whether the ledger file is present.
func (l *Ledger) Exists() (bool, error) {
	ok, err := afero.Exists(l.fs, l.path)
	if err != nil {
		return false, errors.WrapIO("stat", l.path, err)
	}
	return ok, nil
}

// Init writes a header-only ledger when no file, or an empty one, exists.
func (l *Ledger) Init() error {
	info, err := l.fs.Stat(l.path)
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err != nil && !os.IsNotExist(err):
		return errors.WrapIO("stat", l.path, err)
	}
	return l.write(nil)
}

// Load returns every record in upload order. A missing file is an empty
// ledger; an unreadable one is a CorruptLedgerError.
func (l *Ledger) Load() ([]FileRecord, error) {
	records, _, err := l.LoadWithRepairs()
	return records, err
}

// LoadWithRepairs is Load plus the substitutions made for bad rows. Each
// repair is also logged at warn level.
func (l *Ledger) LoadWithRepairs() ([]FileRecord, []Repair, error) {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []FileRecord{}, nil, nil
		}
		return nil, nil, errors.WrapIO("read", l.path, err)
	}

	records, repairs, err := Decode(data, l.path, l.now)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range repairs {
		l.logger.Warn().
			Str("ledger", l.path).
			Int("line", r.Line).
			Str("file", r.Name).
			Str("field", r.Field).
			Str("raw", r.Raw).
			Str("substituted", r.Value).
			Msg("repaired ledger row")
	}
	return records, repairs, nil
}

// Lookup returns the records named name in upload order.
func (l *Ledger) Lookup(name string) ([]FileRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}
	var out []FileRecord
	for _, r := range records {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out, nil
}

// Append adds rec unless its (name, category) pair is already recorded, in
// which case the existing record is returned with added false. A zero
// UploadedAt is stamped with the clock.
func (l *Ledger) Append(rec FileRecord) (FileRecord, bool, error) {
	if err := category.ValidateName(rec.Name); err != nil {
		return FileRecord{}, false, err
	}
	if !rec.Category.Valid() {
		return FileRecord{}, false, errors.NewValidationError("category", string(rec.Category), "not an assignable category")
	}

	records, err := l.Load()
	if err != nil {
		return FileRecord{}, false, err
	}
	for _, existing := range records {
		if existing.Same(rec) {
			return existing, false, nil
		}
	}

	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = l.now()
	}
	rec.UploadedAt = rec.UploadedAt.Truncate(time.Second).UTC()

	if err := l.write(append(records, rec)); err != nil {
		return FileRecord{}, false, err
	}
	return rec, true, nil
}

// Remove drops every record named name, whatever its category, and returns
// them. Nothing is written when no record matches.
func (l *Ledger) Remove(name string) ([]FileRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}
	kept := records[:0:0]
	var removed []FileRecord
	for _, r := range records {
		if r.Name == name {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := l.write(kept); err != nil {
		return nil, err
	}
	return removed, nil
}

// RemoveAll truncates the ledger to its header and returns what it held.
func (l *Ledger) RemoveAll() ([]FileRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}
	if err := l.write(nil); err != nil {
		return nil, err
	}
	return records, nil
}

// Filter returns the records in filter (category.All for everything) in the
// requested order.
func (l *Ledger) Filter(filter category.Category, order Order) ([]FileRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}
	out := make([]FileRecord, 0, len(records))
	for _, r := range records {
		if r.Category.Matches(filter) {
			out = append(out, r)
		}
	}
	if order == NewestFirst {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		})
	}
	return out, nil
}

// Recategorize moves (name, from) to (name, to), keeping its upload time.
// When (name, to) already exists the from record is dropped and the existing
// one returned.
func (l *Ledger) Recategorize(name string, from, to category.Category) (FileRecord, error) {
	if !to.Valid() {
		return FileRecord{}, errors.NewValidationError("category", string(to), "not an assignable category")
	}
	records, err := l.Load()
	if err != nil {
		return FileRecord{}, err
	}

	src, dst := -1, -1
	for i, r := range records {
		if r.Name != name {
			continue
		}
		switch r.Category {
		case from:
			src = i
		case to:
			dst = i
		}
	}
	if src < 0 {
		return FileRecord{}, errors.NewNotFoundError("record", name+" in "+string(from))
	}
	if from == to {
		return records[src], nil
	}

	var result FileRecord
	if dst >= 0 {
		result = records[dst]
		records = append(records[:src], records[src+1:]...)
	} else {
		records[src].Category = to
		result = records[src]
	}
	if err := l.write(records); err != nil {
		return FileRecord{}, err
	}
	return result, nil
}

// Replace rewrites the ledger with records. Duplicate pairs keep their first
// occurrence.
func (l *Ledger) Replace(records []FileRecord) error {
	out := make([]FileRecord, 0, len(records))
	seen := make(map[FileRecord]bool, len(records))
	for _, r := range records {
		if err := category.ValidateName(r.Name); err != nil {
			return err
		}
		if !r.Category.Valid() {
			return errors.NewValidationError("category", string(r.Category), "not an assignable category")
		}
		key := FileRecord{Name: r.Name, Category: r.Category}
		if seen[key] {
			continue
		}
		seen[key] = true
		r.UploadedAt = r.UploadedAt.Truncate(time.Second).UTC()
		out = append(out, r)
	}
	return l.write(out)
}

// Bytes returns the raw ledger file, or the encoded empty ledger when the
// file does not exist.
func (l *Ledger) Bytes() ([]byte, error) {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Encode(nil), nil
		}
		return nil, errors.WrapIO("read", l.path, err)
	}
	return data, nil
}

// Reset moves the current file aside to "<path>.corrupt-<timestamp>" and
// starts an empty ledger. It returns the new location of the old file, or ""
// when there was none.
func (l *Ledger) Reset() (string, error) {
	moved := ""
	exists, err := l.Exists()
	if err != nil {
		return "", err
	}
	if exists {
		moved = l.path + constants.CorruptSuffix + l.now().Format(constants.TimeFormatFilename)
		if err := l.fs.Rename(l.path, moved); err != nil {
			return "", errors.WrapIO("rename", l.path, err)
		}
		l.logger.Warn().Str("ledger", l.path).Str("moved_to", moved).Msg("ledger reset")
	}
	if err := l.Init(); err != nil {
		return moved, err
	}
	return moved, nil
}

func (l *Ledger) write(records []FileRecord) error {
	return writeAtomic(l.fs, l.path, Encode(records))
}

// writeAtomic writes data beside name and renames it into place.
func writeAtomic(fsys afero.Fs, name string, data []byte) error {
	dir := filepath.Dir(name)
	if err := fsys.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(name)+".tmp-"+uuid.NewString())
	if err := afero.WriteFile(fsys, tmp, data, constants.FilePermissions); err != nil {
		_ = fsys.Remove(tmp)
		return errors.WrapIO("write", name, err)
	}
	if err := fsys.Rename(tmp, name); err != nil {
		_ = fsys.Remove(tmp)
		return errors.WrapIO("rename", name, err)
	}
	return nil
}
