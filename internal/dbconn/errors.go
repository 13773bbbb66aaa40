package dbconn

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
)

// PostgreSQL SQLSTATE codes the backend cares about.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	sqlstateSyntaxError    = "42601"
	sqlstateUndefinedTable = "42P01"
)

// IsSyntaxError reports whether err carries SQLSTATE 42601.
func IsSyntaxError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateSyntaxError
}

// IsUndefinedRelation reports whether err means the referenced relation does
// not exist (SQLSTATE 42P01). The optimization analyzer uses this to skip
// optional extensions and log tables instead of failing the whole analysis.
func IsUndefinedRelation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateUndefinedTable
}

// ServerMessage returns the Postgres-reported error message when err
// carries a server error, without the driver's "ERROR:" and SQLSTATE
// decoration.
func ServerMessage(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message, true
	}
	return "", false
}

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		switch {
		case pgErr.Code == sqlstateSyntaxError:
			kind = errs.ErrKindSyntax
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08": // Class 08 — connection
			kind = errs.ErrKindConnectionFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
