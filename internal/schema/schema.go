// Package schema introspects the public schema of an imported database and
// reshapes the flat catalog rows into per-table column lists. The result is
// the allow-list the dynamic CRUD engine and the optimization analyzer
// filter client-supplied identifiers against.
package schema

// Constraint values carried by a column. Empty means unconstrained.
const (
	ConstraintPrimaryKey = "PRIMARY KEY"
	ConstraintForeignKey = "FOREIGN KEY"
)

// Column describes one column of an introspected table.
type Column struct {
	Name          string  `json:"name"`
	DataType      string  `json:"type"`
	Nullable      bool    `json:"nullable"`
	Default       *string `json:"default"`
	Constraint    string  `json:"constraint,omitempty"`
	ForeignTable  *string `json:"foreign_table,omitempty"`
	ForeignColumn *string `json:"foreign_column,omitempty"`
}

// Table describes an introspected table. Columns is empty (never nil) for
// a columnless table.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// ColumnNames returns the table's column names in ordinal order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the name of the first primary-key column, or "".
func (t Table) PrimaryKey() string {
	for _, c := range t.Columns {
		if c.Constraint == ConstraintPrimaryKey {
			return c.Name
		}
	}
	return ""
}
