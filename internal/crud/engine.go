// Package crud builds and executes parameterized SQL for tables whose
// shapes are unknown at compile time. Client-supplied column names are
// never trusted: they are intersected with the live schema's column set and
// identifier-quoted before they reach SQL text. Values always travel as
// bind parameters.
package crud

import (
	"context"
	"fmt"
	"strings"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
	"github.com/pranshu05/BackendManager-sub003/internal/query"
)

// listLimit caps unfiltered table listings.
const listLimit = 200

// Engine performs dynamic table operations over a borrowed pool. It never
// owns the pool — callers resolve one from the registry per request.
type Engine struct {
	log *logger.Logger
}

// NewEngine returns a CRUD engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

// List returns up to 200 rows of a table.
func (e *Engine) List(ctx context.Context, pool dbconn.Pool, table string) ([]map[string]any, error) {
	sql := fmt.Sprintf(`SELECT * FROM public.%s LIMIT %d`, query.QuoteIdentifier(table), listLimit)
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return query.ScanRows(rows)
}

// Get returns the single row matching id, or ErrKindNotFound.
func (e *Engine) Get(ctx context.Context, pool dbconn.Pool, table, id string) (map[string]any, error) {
	sql := fmt.Sprintf(`SELECT * FROM public.%s WHERE id = $1 LIMIT 1`, query.QuoteIdentifier(table))
	rows, err := pool.Query(ctx, sql, id)
	if err != nil {
		return nil, err
	}
	scanned, err := query.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(scanned) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "no row with id %s", id)
	}
	return scanned[0], nil
}

// Insert adds a row from the client-supplied column→value pairs, dropping
// any key not present in the table's actual schema, and returns the
// inserted row.
func (e *Engine) Insert(ctx context.Context, pool dbconn.Pool, table string, body map[string]any) (map[string]any, error) {
	allowed, err := e.tableColumns(ctx, pool, table)
	if err != nil {
		return nil, err
	}

	cols, vals := FilterColumns(allowed, body)
	if len(cols) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "No valid columns provided")
	}

	return e.returningOne(ctx, pool, BuildInsert(table, cols), vals)
}

// Update modifies the row matching id using the same column filtering as
// Insert, and returns the updated row.
func (e *Engine) Update(ctx context.Context, pool dbconn.Pool, table, id string, body map[string]any) (map[string]any, error) {
	allowed, err := e.tableColumns(ctx, pool, table)
	if err != nil {
		return nil, err
	}

	cols, vals := FilterColumns(allowed, body)
	if len(cols) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "No valid columns provided")
	}

	vals = append(vals, id)
	return e.returningOne(ctx, pool, BuildUpdate(table, cols), vals)
}

// Delete removes the row matching id and returns it.
func (e *Engine) Delete(ctx context.Context, pool dbconn.Pool, table, id string) (map[string]any, error) {
	sql := fmt.Sprintf(`DELETE FROM public.%s WHERE id = $1 RETURNING *`, query.QuoteIdentifier(table))
	return e.returningOne(ctx, pool, sql, []any{id})
}

// returningOne executes a statement with RETURNING * and yields its row.
func (e *Engine) returningOne(ctx context.Context, pool dbconn.Pool, sql string, args []any) (map[string]any, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	scanned, err := query.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(scanned) == 0 {
		return nil, errs.New(errs.ErrKindNotFound, "no matching row")
	}
	return scanned[0], nil
}

// tableColumns fetches the table's actual column names in ordinal order —
// the allow-list every client-supplied key is checked against.
func (e *Engine) tableColumns(ctx context.Context, pool dbconn.Pool, table string) ([]string, error) {
	const q = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		  AND table_name   = $1
		ORDER BY ordinal_position`

	rows, err := pool.Query(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan column name", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// FilterColumns intersects the request body's keys with the table's actual
// columns, in schema order so the output is deterministic. Unknown keys are
// silently dropped.
func FilterColumns(allowed []string, body map[string]any) ([]string, []any) {
	cols := make([]string, 0, len(body))
	vals := make([]any, 0, len(body))
	for _, col := range allowed {
		if v, ok := body[col]; ok {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	}
	return cols, vals
}

// BuildInsert renders INSERT INTO public."t" ("a","b") VALUES ($1,$2)
// RETURNING *. cols must already be allow-list filtered.
func BuildInsert(table string, cols []string) string {
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = query.QuoteIdentifier(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(`INSERT INTO public.%s (%s) VALUES (%s) RETURNING *`,
		query.QuoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))
}

// BuildUpdate renders UPDATE public."t" SET "a" = $1, "b" = $2 WHERE id =
// $3 RETURNING *, with the id as the final positional parameter.
func BuildUpdate(table string, cols []string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", query.QuoteIdentifier(c), i+1)
	}
	return fmt.Sprintf(`UPDATE public.%s SET %s WHERE id = $%d RETURNING *`,
		query.QuoteIdentifier(table),
		strings.Join(sets, ", "),
		len(cols)+1)
}
