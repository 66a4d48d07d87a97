package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
)

const utf8BOM = "\ufeff"

var nameEscaper = strings.NewReplacer(`\`, `\\`, "\r", `\r`)

// EscapeName protects carriage returns in a name column. encoding/csv folds
// a quoted "\r\n" into "\n" on read, so CR is written as `\r` and
// backslashes are doubled.
func EscapeName(name string) string {
	return nameEscaper.Replace(name)
}

// UnescapeName reverses EscapeName. A backslash followed by anything other
// than `\` or `r` is kept as written, so rows from ledgers that predate
// escaping load unchanged.
func UnescapeName(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'r':
				b.WriteByte('\r')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// FormatTime renders t in the persisted layout, in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(constants.TimeFormatPersisted)
}

// ParseTime accepts the persisted layout, RFC 3339 with any offset, and
// the zone-less layout of older ledgers read as local time. The result is
// in UTC at second precision.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Truncate(time.Second).UTC(), true
	}
	if t, err := time.ParseInLocation(constants.TimeFormatLedger, raw, time.Local); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// Encode renders records in the persisted CSV form, header first.
func Encode(records []FileRecord) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(constants.LedgerHeader)
	for _, r := range records {
		_ = w.Write([]string{EscapeName(r.Name), string(r.Category), FormatTime(r.UploadedAt)})
	}
	w.Flush()
	return buf.Bytes()
}

// Decode parses the persisted CSV form. Rows with a missing or unreadable
// date get now() and an entry in the returned repairs; an unknown category
// becomes Other the same way. Anything structurally wrong is a
// CorruptLedgerError naming source.
func Decode(data []byte, source string, now func() time.Time) ([]FileRecord, []Repair, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []FileRecord{}, nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(constants.LedgerHeader)

	header, err := r.Read()
	if err != nil {
		return nil, nil, errors.NewCorruptLedgerError(source, 1, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i, col := range constants.LedgerHeader {
		if strings.TrimSpace(header[i]) != col {
			return nil, nil, errors.NewCorruptLedgerError(source, 1,
				fmt.Errorf("unexpected header %q, want %q", strings.Join(header, ","), strings.Join(constants.LedgerHeader, ",")))
		}
	}

	records := []FileRecord{}
	var repairs []Repair
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return nil, nil, errors.NewCorruptLedgerError(source, line, err)
		}
		line, _ := r.FieldPos(0)

		name := UnescapeName(row[0])
		if name == "" {
			return nil, nil, errors.NewCorruptLedgerError(source, line, errors.New("empty file name"))
		}

		cat := category.Category(row[1])
		if !cat.Valid() {
			parsed, perr := category.Parse(row[1])
			if perr != nil {
				parsed = category.Other
				repairs = append(repairs, Repair{Line: line, Name: name, Field: "category", Raw: row[1], Value: string(parsed)})
			}
			cat = parsed
		}

		at, ok := ParseTime(row[2])
		if !ok {
			at = now().Truncate(time.Second).UTC()
			repairs = append(repairs, Repair{Line: line, Name: name, Field: "upload_date", Raw: row[2], Value: FormatTime(at)})
		}

		records = append(records, FileRecord{Name: name, Category: cat, UploadedAt: at})
	}
	return records, repairs, nil
}
