package query

import (
	"context"
	"io"
	"sync"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// fakePool serves scripted rows and records teardown.
type fakePool struct {
	mu         sync.Mutex
	columns    []string
	rows       [][]any
	queryErr   error
	closeCount int
	queries    []string
	args       [][]any
}

func (f *fakePool) Query(_ context.Context, sql string, args ...any) (dbconn.Rows, error) {
	f.mu.Lock()
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	f.mu.Unlock()

	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{columns: f.columns, rows: f.rows, idx: -1}, nil
}

func (f *fakePool) QueryRow(ctx context.Context, sql string, args ...any) dbconn.Row {
	rows, err := f.Query(ctx, sql, args...)
	if err != nil {
		return errRow{err: err}
	}
	return firstRow{rows: rows}
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	f.mu.Lock()
	f.queries = append(f.queries, sql)
	f.args = append(f.args, args)
	f.mu.Unlock()
	return int64(len(f.rows)), f.queryErr
}

func (f *fakePool) Ping(context.Context) error { return nil }

func (f *fakePool) Close() {
	f.mu.Lock()
	f.closeCount++
	f.mu.Unlock()
}

func (f *fakePool) closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCount
}

type fakeRows struct {
	columns []string
	rows    [][]any
	idx     int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	for i, d := range dest {
		if p, ok := d.(*any); ok && i < len(row) {
			*p = row[i]
		}
	}
	return nil
}

func (r *fakeRows) Columns() []string { return r.columns }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Err() error        { return nil }

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

type firstRow struct{ rows dbconn.Rows }

func (r firstRow) Scan(dest ...any) error {
	defer r.rows.Close()
	if !r.rows.Next() {
		return io.EOF
	}
	return r.rows.Scan(dest...)
}

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
}
