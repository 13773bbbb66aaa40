package query

import (
	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/errs"
)

// ScanRows reads all rows from the result set and returns them as a slice
// of maps keyed by column name. The returned slice is always non-nil.
// ScanRows always closes the Rows — callers do not call Close themselves.
func ScanRows(rows dbconn.Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns := rows.Columns()
	result := make([]map[string]any, 0)

	for rows.Next() {
		// Scan targets are *any so the driver can write any type.
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = dest[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}

	return result, nil
}
