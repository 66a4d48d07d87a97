package output

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/pkg/activity"
	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/constants"
)

// RecordsTable renders ledger records.
func RecordsTable(records []designlib.FileRecord) Data {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Name, string(r.Category), r.UploadedAt.Format(constants.TimeFormatLedger)})
	}
	return Data{Headers: []string{"Name", "Category", "Uploaded"}, Rows: rows}
}

// ActivityTable renders activity entries.
func ActivityTable(entries []activity.Entry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		ts := ""
		if !e.Timestamp.IsZero() {
			ts = e.Timestamp.Format(constants.TimeFormatLedger)
		}
		rows = append(rows, []string{ts, string(e.Action), e.Name, string(e.Category)})
	}
	return Data{Headers: []string{"Time", "Action", "Name", "Category"}, Rows: rows}
}

// StatsTable renders the dashboard summary as metric/value rows.
func StatsTable(st *designlib.Stats) Data {
	rows := [][]string{
		{"Total files", strconv.Itoa(st.Total)},
		{"Stored bytes", HumanBytes(st.Bytes)},
	}
	for _, c := range category.Known() {
		rows = append(rows, []string{string(c), strconv.Itoa(st.ByCategory[c])})
	}

	exts := make([]string, 0, len(st.ByExtension))
	for ext := range st.ByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		label := "." + ext
		if ext == "" {
			label = "(none)"
		}
		rows = append(rows, []string{"Extension " + label, strconv.Itoa(st.ByExtension[ext])})
	}
	for i, r := range st.Recent {
		rows = append(rows, []string{fmt.Sprintf("Recent #%d", i+1), r.Name + " (" + string(r.Category) + ")"})
	}
	return Data{
		Headers:         []string{"Metric", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// ReportTable renders a consistency report, one problem per row.
func ReportTable(report *designlib.Report) Data {
	var rows [][]string
	for _, r := range report.MissingBytes {
		rows = append(rows, []string{"missing bytes", r.Name, string(r.Category)})
	}
	for _, k := range report.Orphans {
		rows = append(rows, []string{"orphan", k, ""})
	}
	return Data{Headers: []string{"Problem", "Key", "Category"}, Rows: rows}
}

// HumanBytes formats n with a binary unit.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
