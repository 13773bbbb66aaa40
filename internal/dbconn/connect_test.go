package dbconn

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshu05/BackendManager-sub003/internal/errs"
)

func TestConnector_EncryptedFirstAttemptSucceeds(t *testing.T) {
	dialer := &fakeDialer{}
	c := NewConnectorWithDialer(testLogger(), dialer.dial)

	pool, err := c.Connect(context.Background(), "postgres://u:p@h:5432/db")
	require.NoError(t, err)
	require.NotNil(t, pool)

	assert.Equal(t, 1, dialer.dialCount())
	assert.Contains(t, dialer.calls[0], "sslmode=require")
	assert.Equal(t, 0, dialer.pools[0].closes(), "successful pool stays open for the caller")
}

func TestConnector_FallsBackWhenServerLacksSSL(t *testing.T) {
	dialer := &fakeDialer{
		outcome: func(call int, _ string) (error, error) {
			if call == 0 {
				return nil, errors.New("the server does not support SSL connections")
			}
			return nil, nil
		},
	}
	c := NewConnectorWithDialer(testLogger(), dialer.dial)

	pool, err := c.Connect(context.Background(), "postgres://u:p@h:5432/db")
	require.NoError(t, err)
	require.NotNil(t, pool)

	require.Equal(t, 2, dialer.dialCount())
	assert.Contains(t, dialer.calls[0], "sslmode=require")
	assert.Contains(t, dialer.calls[1], "sslmode=disable")

	// The failed encrypted pool was torn down; the fallback pool survives.
	assert.Equal(t, 1, dialer.pools[0].closes())
	assert.Equal(t, 0, dialer.pools[1].closes())
}

func TestConnector_NonSSLFailureIsFatalImmediately(t *testing.T) {
	dialer := &fakeDialer{
		outcome: func(int, string) (error, error) {
			return nil, errors.New("password authentication failed for user \"u\"")
		},
	}
	c := NewConnectorWithDialer(testLogger(), dialer.dial)

	_, err := c.Connect(context.Background(), "postgres://u:p@h:5432/db")
	require.Error(t, err)

	assert.Equal(t, 1, dialer.dialCount(), "no fallback attempt for non-SSL failures")
	assert.True(t, errs.IsConnectionFailed(err))
	assert.Equal(t,
		"Failed to connect to database: password authentication failed for user \"u\"",
		err.Error())
}

func TestConnector_FallbackExhaustionSurfacesSecondError(t *testing.T) {
	dialer := &fakeDialer{
		outcome: func(call int, _ string) (error, error) {
			if call == 0 {
				return nil, errors.New("the server does not support SSL connections")
			}
			return nil, errors.New("connection refused")
		},
	}
	c := NewConnectorWithDialer(testLogger(), dialer.dial)

	_, err := c.Connect(context.Background(), "postgres://u:p@h:5432/db")
	require.Error(t, err)

	assert.Equal(t, 2, dialer.dialCount())
	assert.Equal(t, "Failed to connect to database: connection refused", err.Error(),
		"the second error's message is surfaced, not the first's")

	// Both attempts' pools were torn down.
	assert.Equal(t, 1, dialer.pools[0].closes())
	assert.Equal(t, 1, dialer.pools[1].closes())
}

func TestConnector_DialErrorWithoutPool(t *testing.T) {
	dialer := &fakeDialer{
		outcome: func(int, string) (error, error) {
			return errors.New("dial tcp: lookup nope: no such host"), nil
		},
	}
	c := NewConnectorWithDialer(testLogger(), dialer.dial)

	_, err := c.Connect(context.Background(), "postgres://u:p@nope:5432/db")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to connect to database: "))
	assert.Empty(t, dialer.pools, "no pool constructed, nothing to close")
}

func TestSSLUnsupported(t *testing.T) {
	assert.True(t, sslUnsupported(errors.New("the server does not support SSL connections")))
	assert.True(t, sslUnsupported(errs.Wrap(errs.ErrKindConnectionFailed, "ping failed",
		errors.New("server refused TLS connection"))))
	assert.False(t, sslUnsupported(errors.New("connection refused")))
	assert.False(t, sslUnsupported(nil))
}
