// Package export renders table rows as CSV and optionally archives the
// artifact in an object store.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"
)

// WriteCSV streams rows to w as CSV with a header line. columns fixes the
// field order; when empty, the first row's keys are used in sorted order so
// output stays deterministic.
func WriteCSV(w io.Writer, columns []string, rows []map[string]any) error {
	if len(columns) == 0 && len(rows) > 0 {
		for col := range rows[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = formatCell(row[col])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatCell renders one value as CSV text. NULLs become empty fields.
func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
