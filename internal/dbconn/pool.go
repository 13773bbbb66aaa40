// Package dbconn manages connections to user-owned Postgres databases: the
// per-project pool registry, the SSL-fallback connection establisher, and
// the readiness poller used while an imported database is still
// provisioning.
//
// All higher layers talk to the Pool / Rows / Row interfaces — they never
// import pgx directly. The pgx-backed implementation lives here; tests
// substitute a fake Dialer.
package dbconn

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
)

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() []string

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}

// Row is an abstraction over a single database row.
type Row interface {
	Scan(dest ...any) error
}

// Pool is a managed set of reusable connections bound to one connection
// string. Registry pools are long-lived and shared; transient pools are
// owned by a single call and must be closed in a deferred cleanup path.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// PoolConfig holds the tuning applied when a pool is dialed.
type PoolConfig struct {
	MaxConns        int32
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// RegistryPoolConfig returns the settings for long-lived per-project pools.
func RegistryPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:        10,
		MaxConnIdleTime: 30 * time.Second,
		ConnectTimeout:  4 * time.Second,
	}
}

// TransientPoolConfig returns the settings for single-use pools opened
// against imported/external databases. Kept small: the target databases are
// user-owned and may have low connection limits.
func TransientPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:        5,
		MaxConnIdleTime: 30 * time.Second,
		ConnectTimeout:  4 * time.Second,
	}
}

// Dialer opens a pool for the given connection string. The production
// dialer is PgxDialer; tests inject fakes to observe pool construction and
// teardown.
type Dialer func(ctx context.Context, dsn string, cfg PoolConfig) (Pool, error)

// PgxDialer opens a pgxpool.Pool with the given settings. It does not run a
// liveness query — callers decide whether and how to validate the pool.
func PgxDialer(ctx context.Context, dsn string, cfg PoolConfig) (Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid connection string", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err, "failed to create connection pool")
	}
	return &pgxPool{pool: pool}, nil
}

// --- pgx-backed Pool implementation ---

type pgxPool struct {
	pool *pgxpool.Pool
}

func (p *pgxPool) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

func (p *pgxPool) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return &pgxRow{row: p.pool.QueryRow(ctx, sql, args...)}
}

func (p *pgxPool) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, "exec failed")
	}
	return tag.RowsAffected(), nil
}

func (p *pgxPool) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (p *pgxPool) Close() {
	p.pool.Close()
}

// --- pgx type wrappers ---

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Columns() []string {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols
}

type pgxRow struct {
	row pgx.Row
}

func (r *pgxRow) Scan(dest ...any) error { return r.row.Scan(dest...) }
