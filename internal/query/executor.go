package query

import (
	"context"
	"strings"

	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// Result is the outcome of a raw query execution.
type Result struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowCount"`
}

// Connect opens a validated transient pool for a connection string.
// Satisfied by (*dbconn.Connector).Connect.
type Connect func(ctx context.Context, dsn string) (dbconn.Pool, error)

// Executor runs raw SQL against an imported database. Every execution uses
// a dedicated single-use pool that is torn down afterward whether the query
// succeeded or failed — the target databases are user-owned and may have
// low connection limits.
type Executor struct {
	connect Connect
	log     *logger.Logger
}

// NewExecutor returns an Executor that dials through the SSL-fallback
// connector.
func NewExecutor(log *logger.Logger) *Executor {
	return &Executor{connect: dbconn.NewConnector(log).Connect, log: log}
}

// NewExecutorWithConnect returns an Executor with a custom connect
// function, for tests.
func NewExecutorWithConnect(log *logger.Logger, connect Connect) *Executor {
	return &Executor{connect: connect, log: log}
}

// Execute validates, runs, and scans a raw query. Validation failures are
// reported before any connection is attempted.
func (e *Executor) Execute(ctx context.Context, dsn, sql string, params []any) (*Result, error) {
	if err := Validate(sql); err != nil {
		return nil, err
	}

	pool, err := e.connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, strings.TrimSpace(sql), params...)
	if err != nil {
		if dbconn.IsSyntaxError(err) {
			msg, _ := dbconn.ServerMessage(err)
			return nil, errs.Wrap(errs.ErrKindSyntax,
				"SQL Syntax Error: "+msg+". Please check your query syntax.", err)
		}
		e.log.ErrorWith("query execution failed", err, map[string]any{"sql": sql})
		return nil, err
	}

	scanned, err := ScanRows(rows)
	if err != nil {
		e.log.ErrorWith("row scan failed", err, map[string]any{"sql": sql})
		return nil, err
	}

	return &Result{Rows: scanned, RowCount: len(scanned)}, nil
}

// Validate applies the heuristic well-formedness checks. They are pattern
// matches, not a SQL parser, and are a best-effort guard rather than a
// security boundary — the server remains the authority on syntax.
func Validate(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return errs.New(errs.ErrKindInvalidInput, "Invalid query: Query must be a non-empty string")
	}

	if strings.HasSuffix(trimmed, ",") {
		return errs.New(errs.ErrKindInvalidInput, "Invalid query: statement ends in a dangling comma")
	}
	if strings.Count(trimmed, "(") > strings.Count(trimmed, ")") {
		return errs.New(errs.ErrKindInvalidInput, "Invalid query: statement has an unclosed parenthesis")
	}

	// SELECT with nothing selected.
	if strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") && len(strings.Fields(trimmed)) < 2 {
		return errs.New(errs.ErrKindInvalidInput, "Invalid query: incomplete SELECT statement")
	}

	return nil
}
