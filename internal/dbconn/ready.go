package dbconn

import (
	"context"
	"fmt"
	"time"

	retry "github.com/avast/retry-go"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
)

const (
	// DefaultReadyAttempts and DefaultReadyDelay pace the readiness poll
	// for databases that are still provisioning.
	DefaultReadyAttempts = 5
	DefaultReadyDelay    = 2 * time.Second
)

// WaitForReady polls dsn until a liveness query succeeds or attempts run
// out. Every attempt opens its own short-lived pool and closes it before
// the next attempt — success or failure, no connection survives a retry.
func WaitForReady(ctx context.Context, dsn string, attempts uint, delay time.Duration, dial Dialer) error {
	if attempts == 0 {
		attempts = DefaultReadyAttempts
	}
	if delay == 0 {
		delay = DefaultReadyDelay
	}

	target := WithSSLMode(dsn, sslModeRequire)

	err := retry.Do(
		func() error {
			pool, err := dial(ctx, target, TransientPoolConfig())
			if err != nil {
				return err
			}
			defer pool.Close()
			return Liveness(ctx, pool)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed,
			fmt.Sprintf("Database not ready after %d attempts: %s", attempts, rootMessage(err)), err)
	}
	return nil
}
