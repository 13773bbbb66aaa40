package mockdata

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshu05/BackendManager-sub003/internal/schema"
)

func strPtr(s string) *string { return &s }

func usersTable() schema.Table {
	return schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", DataType: "integer", Constraint: schema.ConstraintPrimaryKey, Default: strPtr("nextval('users_id_seq')")},
			{Name: "email", DataType: "character varying"},
			{Name: "age", DataType: "integer"},
			{Name: "active", DataType: "boolean"},
			{Name: "joined_at", DataType: "timestamp with time zone"},
		},
	}
}

func TestRows_ShapesMatchColumns(t *testing.T) {
	rows := NewGenerator(1).Rows(usersTable(), 5)
	require.Len(t, rows, 5)

	for _, row := range rows {
		assert.NotContains(t, row, "id", "defaulted columns are left to the database")

		email, ok := row["email"].(string)
		require.True(t, ok)
		assert.Contains(t, email, "@")

		_, ok = row["age"].(int)
		assert.True(t, ok)
		_, ok = row["active"].(bool)
		assert.True(t, ok)
		_, ok = row["joined_at"].(time.Time)
		assert.True(t, ok)
	}
}

func TestRows_CountClamped(t *testing.T) {
	g := NewGenerator(1)
	table := usersTable()

	assert.Len(t, g.Rows(table, 0), 1)
	assert.Len(t, g.Rows(table, -3), 1)
	assert.Len(t, g.Rows(table, MaxRows+500), MaxRows)
}

func TestRows_DeterministicWithSeed(t *testing.T) {
	a := NewGenerator(42).Rows(usersTable(), 3)
	b := NewGenerator(42).Rows(usersTable(), 3)
	assert.Equal(t, a, b)
}

func TestValue_UUIDAndNameHints(t *testing.T) {
	g := NewGenerator(7)

	id := g.value(schema.Column{Name: "token", DataType: "uuid"})
	assert.Len(t, id.(string), 36)

	city := g.value(schema.Column{Name: "city", DataType: "text"})
	assert.NotEmpty(t, city)

	note := g.value(schema.Column{Name: "note", DataType: "text"})
	assert.True(t, strings.Contains(note.(string), " "), "sentences for free-text columns")
}
