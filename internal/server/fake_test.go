package server

import (
	"context"
	"io"
	"reflect"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
}

// result is one scripted query outcome.
type result struct {
	cols []string
	rows [][]any
	err  error
}

// fakePool dispatches queries through onQuery and records every statement.
type fakePool struct {
	onQuery func(sql string, args []any) result
	onExec  func(sql string, args []any) (int64, error)

	queries    []string
	args       [][]any
	closeCount int
}

func (f *fakePool) Query(_ context.Context, sql string, args ...any) (dbconn.Rows, error) {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	res := f.dispatch(sql, args)
	if res.err != nil {
		return nil, res.err
	}
	return &fakeRows{cols: res.cols, rows: res.rows, idx: -1}, nil
}

func (f *fakePool) QueryRow(_ context.Context, sql string, args ...any) dbconn.Row {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	res := f.dispatch(sql, args)
	if res.err != nil {
		return &fakeRow{err: res.err}
	}
	if len(res.rows) == 0 {
		return &fakeRow{err: io.EOF}
	}
	return &fakeRow{values: res.rows[0]}
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	if f.onExec != nil {
		return f.onExec(sql, args)
	}
	return 1, nil
}

func (f *fakePool) Ping(context.Context) error { return nil }
func (f *fakePool) Close()                     { f.closeCount++ }

func (f *fakePool) dispatch(sql string, args []any) result {
	if f.onQuery != nil {
		return f.onQuery(sql, args)
	}
	return result{}
}

type fakeRows struct {
	cols []string
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error { return scanInto(r.rows[r.idx], dest) }
func (r *fakeRows) Columns() []string      { return r.cols }
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

func scanInto(row []any, dest []any) error {
	for i, d := range dest {
		if i >= len(row) || row[i] == nil {
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}
