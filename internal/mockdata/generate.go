// Package mockdata fabricates realistic row values for a table's columns so
// imported databases can be seeded with test data.
package mockdata

import (
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/pranshu05/BackendManager-sub003/internal/schema"
)

// MaxRows caps a single generation request.
const MaxRows = 1000

// Generator produces fake rows shaped by introspected column metadata.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator returns a generator. seed 0 gives non-deterministic output;
// tests pass a fixed seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(int64(seed))}
}

// Rows generates count rows for the table. count is clamped to [1, MaxRows].
// Columns with a database default (serial keys, timestamps) are left to the
// database and omitted from the generated rows.
func (g *Generator) Rows(table schema.Table, count int) []map[string]any {
	if count < 1 {
		count = 1
	}
	if count > MaxRows {
		count = MaxRows
	}

	rows := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		row := make(map[string]any)
		for _, col := range table.Columns {
			if col.Default != nil {
				continue
			}
			row[col.Name] = g.value(col)
		}
		rows = append(rows, row)
	}
	return rows
}

// value picks a fake value for one column, preferring name-based hints over
// plain type mapping so seeded data reads naturally.
func (g *Generator) value(col schema.Column) any {
	name := strings.ToLower(col.Name)
	dataType := strings.ToLower(col.DataType)

	if strings.Contains(dataType, "char") || dataType == "text" {
		switch {
		case strings.Contains(name, "email"):
			return g.faker.Email()
		case strings.Contains(name, "first_name"):
			return g.faker.FirstName()
		case strings.Contains(name, "last_name"):
			return g.faker.LastName()
		case strings.Contains(name, "name"):
			return g.faker.Name()
		case strings.Contains(name, "phone"):
			return g.faker.Phone()
		case strings.Contains(name, "address"):
			return g.faker.Address().Address
		case strings.Contains(name, "city"):
			return g.faker.City()
		case strings.Contains(name, "country"):
			return g.faker.Country()
		case strings.Contains(name, "url") || strings.Contains(name, "website"):
			return g.faker.URL()
		case strings.Contains(name, "description") || strings.Contains(name, "comment") || strings.Contains(name, "note"):
			return g.faker.Sentence(8)
		case strings.Contains(name, "title"):
			return g.faker.JobTitle()
		default:
			return g.faker.Word()
		}
	}

	switch {
	case dataType == "uuid":
		return g.faker.UUID()
	case dataType == "boolean":
		return g.faker.Bool()
	case strings.Contains(dataType, "int"):
		return g.faker.Number(1, 10000)
	case strings.Contains(dataType, "numeric"), strings.Contains(dataType, "decimal"),
		strings.Contains(dataType, "real"), strings.Contains(dataType, "double"):
		return g.faker.Float64Range(0, 1000)
	case strings.Contains(dataType, "timestamp"), dataType == "date":
		return g.faker.PastDate()
	case strings.Contains(dataType, "json"):
		return map[string]any{"tag": g.faker.Word()}
	default:
		return g.faker.Word()
	}
}
