package dbconn

import (
	"context"
	"io"
	"sync"

	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// fakePool is an in-memory Pool that records teardown and serves canned
// liveness responses.
type fakePool struct {
	mu         sync.Mutex
	dsn        string
	closeCount int
	pingErr    error // returned by QueryRow("SELECT 1").Scan
}

func (f *fakePool) Query(_ context.Context, _ string, _ ...any) (Rows, error) {
	return nil, io.EOF
}

func (f *fakePool) QueryRow(_ context.Context, _ string, _ ...any) Row {
	return fakeRow{err: f.pingErr}
}

func (f *fakePool) Exec(_ context.Context, _ string, _ ...any) (int64, error) {
	return 0, nil
}

func (f *fakePool) Ping(_ context.Context) error { return f.pingErr }

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

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for _, d := range dest {
		if p, ok := d.(*int); ok {
			*p = 1
		}
	}
	return nil
}

// fakeDialer scripts a sequence of dial outcomes and records every call.
type fakeDialer struct {
	mu      sync.Mutex
	calls   []string // dsn per dial
	pools   []*fakePool
	outcome func(call int, dsn string) (dialErr error, pingErr error)
}

func (d *fakeDialer) dial(_ context.Context, dsn string, _ PoolConfig) (Pool, error) {
	d.mu.Lock()
	call := len(d.calls)
	d.calls = append(d.calls, dsn)
	d.mu.Unlock()

	var dialErr, pingErr error
	if d.outcome != nil {
		dialErr, pingErr = d.outcome(call, dsn)
	}
	if dialErr != nil {
		return nil, dialErr
	}

	pool := &fakePool{dsn: dsn, pingErr: pingErr}
	d.mu.Lock()
	d.pools = append(d.pools, pool)
	d.mu.Unlock()
	return pool, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
}
