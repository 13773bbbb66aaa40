package schema

import (
	"context"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// introspectQuery joins every base table in public with its columns,
// nullability, defaults, and primary/foreign key metadata. Tables are LEFT
// JOINed so a columnless table still yields one row (with a NULL
// column_name). Ordered by table name then ordinal position, which the
// reshaper relies on.
const introspectQuery = `
	SELECT
		t.table_name,
		c.column_name,
		c.data_type,
		c.is_nullable,
		c.column_default,
		tc.constraint_type,
		ccu.table_name  AS foreign_table,
		ccu.column_name AS foreign_column
	FROM information_schema.tables t
	LEFT JOIN information_schema.columns c
		ON c.table_schema = t.table_schema
		AND c.table_name  = t.table_name
	LEFT JOIN information_schema.key_column_usage kcu
		ON kcu.table_schema = c.table_schema
		AND kcu.table_name  = c.table_name
		AND kcu.column_name = c.column_name
	LEFT JOIN information_schema.table_constraints tc
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema   = kcu.table_schema
		AND tc.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY')
	LEFT JOIN information_schema.constraint_column_usage ccu
		ON ccu.constraint_name = tc.constraint_name
		AND tc.constraint_type = 'FOREIGN KEY'
	WHERE t.table_schema = 'public'
	  AND t.table_type   = 'BASE TABLE'
	ORDER BY t.table_name, c.ordinal_position`

// catalogRow is one flat row of the introspection join. Everything except
// the table name is nullable in the raw result.
type catalogRow struct {
	TableName      string
	ColumnName     *string
	DataType       *string
	IsNullable     *string
	ColumnDefault  *string
	ConstraintType *string
	ForeignTable   *string
	ForeignColumn  *string
}

// Inspect runs the catalog query against pool and returns one Table per
// distinct table name. Failures are logged and rethrown unchanged so
// callers can tell a schema-fetch failure apart from their own.
func Inspect(ctx context.Context, pool dbconn.Pool, log *logger.Logger) ([]Table, error) {
	rows, err := pool.Query(ctx, introspectQuery)
	if err != nil {
		log.ErrorWith("Error fetching schema:", err, nil)
		return nil, err
	}
	defer rows.Close()

	var flat []catalogRow
	for rows.Next() {
		var r catalogRow
		if err := rows.Scan(
			&r.TableName,
			&r.ColumnName,
			&r.DataType,
			&r.IsNullable,
			&r.ColumnDefault,
			&r.ConstraintType,
			&r.ForeignTable,
			&r.ForeignColumn,
		); err != nil {
			log.ErrorWith("Error fetching schema:", err, nil)
			return nil, err
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		log.ErrorWith("Error fetching schema:", err, nil)
		return nil, err
	}

	return reshape(flat), nil
}

// reshape groups the ordered flat rows into one Table per distinct table
// name. A row with a NULL column_name contributes a table entry with zero
// columns, not a phantom column.
func reshape(flat []catalogRow) []Table {
	tables := make([]Table, 0)
	index := make(map[string]int)

	for _, r := range flat {
		i, ok := index[r.TableName]
		if !ok {
			tables = append(tables, Table{Name: r.TableName, Columns: []Column{}})
			i = len(tables) - 1
			index[r.TableName] = i
		}

		if r.ColumnName == nil {
			continue
		}

		col := Column{
			Name:          *r.ColumnName,
			Nullable:      r.IsNullable != nil && *r.IsNullable == "YES",
			Default:       r.ColumnDefault,
			ForeignTable:  r.ForeignTable,
			ForeignColumn: r.ForeignColumn,
		}
		if r.DataType != nil {
			col.DataType = *r.DataType
		}
		if r.ConstraintType != nil {
			col.Constraint = *r.ConstraintType
		}
		tables[i].Columns = append(tables[i].Columns, col)
	}

	return tables
}
