package dbconn

import (
	"context"
	"strings"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// sslModeRequire encrypts the transport without verifying the server
// certificate — imported databases routinely run with self-signed certs.
const (
	sslModeRequire = "require"
	sslModeDisable = "disable"
)

// Connector opens validated connections to arbitrary user-supplied Postgres
// endpoints. It tries encrypted transport first and falls back to plain TCP
// only when the server reports it does not support SSL.
type Connector struct {
	dial Dialer
	log  *logger.Logger
}

// NewConnector returns a Connector backed by the pgx dialer.
func NewConnector(log *logger.Logger) *Connector {
	return &Connector{dial: PgxDialer, log: log}
}

// NewConnectorWithDialer returns a Connector with a custom dialer, for tests.
func NewConnectorWithDialer(log *logger.Logger, dial Dialer) *Connector {
	return &Connector{dial: dial, log: log}
}

// Connect opens a transient pool against dsn and proves it usable with a
// liveness query. The returned pool is owned by the caller, who must close
// it when done.
//
// The first attempt uses sslmode=require. If it fails with an error whose
// message indicates the server does not support SSL, one retry is made with
// sslmode=disable. Any other first-attempt failure is fatal immediately; if
// the fallback also fails, the fallback's error is the one surfaced.
func (c *Connector) Connect(ctx context.Context, dsn string) (Pool, error) {
	pool, err := c.attempt(ctx, WithSSLMode(dsn, sslModeRequire))
	if err == nil {
		return pool, nil
	}

	if !sslUnsupported(err) {
		return nil, connectFailed(err)
	}

	c.log.Warn("server does not support SSL, retrying without encryption")
	pool, err = c.attempt(ctx, WithSSLMode(dsn, sslModeDisable))
	if err != nil {
		return nil, connectFailed(err)
	}
	return pool, nil
}

// attempt dials a transient pool and runs the liveness query, tearing the
// pool down on any failure.
func (c *Connector) attempt(ctx context.Context, dsn string) (Pool, error) {
	pool, err := c.dial(ctx, dsn, TransientPoolConfig())
	if err != nil {
		return nil, err
	}
	if err := Liveness(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Liveness proves a pool usable with a trivial SELECT 1.
func Liveness(ctx context.Context, pool Pool) error {
	var one int
	return pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// sslUnsupported matches the driver messages a Postgres server emits when
// it cannot negotiate TLS.
func sslUnsupported(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if cause := rootCause(err); cause != nil {
		msg = msg + " " + cause.Error()
	}
	return strings.Contains(msg, "does not support SSL") ||
		strings.Contains(msg, "SSL is not enabled") ||
		strings.Contains(msg, "server refused TLS")
}

// connectFailed wraps the terminal connection error in the message shape
// the import handlers surface to the user.
func connectFailed(err error) *errs.Error {
	return errs.Wrap(errs.ErrKindConnectionFailed,
		"Failed to connect to database: "+rootMessage(err), err)
}

// rootCause unwraps nested *errs.Error wrappers to the deepest cause.
func rootCause(err error) error {
	for {
		e, ok := err.(*errs.Error)
		if !ok || e.Cause == nil {
			return err
		}
		err = e.Cause
	}
}

// rootMessage returns the deepest cause's message for user display.
func rootMessage(err error) string {
	return rootCause(err).Error()
}
