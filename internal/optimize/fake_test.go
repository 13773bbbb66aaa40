package optimize

import (
	"context"
	"io"
	"reflect"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
}

func undefinedRelation() error {
	return &pgconn.PgError{Code: "42P01", Message: `relation "missing" does not exist`}
}

// fakePool scripts query and exec behavior through dispatch functions while
// recording every statement it sees.
type fakePool struct {
	onQuery func(sql string, args []any) ([][]any, error)
	onExec  func(sql string, args []any) (int64, error)

	queries []string
	execs   []string
	args    [][]any
}

func (f *fakePool) Query(_ context.Context, sql string, args ...any) (dbconn.Rows, error) {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	rows, err := f.onQuery(sql, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{rows: rows, idx: -1}, nil
}

func (f *fakePool) QueryRow(_ context.Context, sql string, args ...any) dbconn.Row {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	rows, err := f.onQuery(sql, args)
	if err != nil {
		return &fakeRow{err: err}
	}
	if len(rows) == 0 {
		return &fakeRow{err: undefinedRelation()}
	}
	return &fakeRow{values: rows[0]}
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	if f.onExec != nil {
		return f.onExec(sql, args)
	}
	return 1, nil
}

func (f *fakePool) Ping(context.Context) error { return nil }
func (f *fakePool) Close()                     {}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error { return scanInto(r.rows[r.idx], dest) }
func (r *fakeRows) Columns() []string      { return nil }
func (r *fakeRows) Close()                 {}
func (r *fakeRows) Err() error             { return nil }

type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.values, dest)
}

// scanInto assigns row values to scan targets by reflection; nil values
// leave the target at its zero value.
func scanInto(row []any, dest []any) error {
	for i, d := range dest {
		if i >= len(row) || row[i] == nil {
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}
