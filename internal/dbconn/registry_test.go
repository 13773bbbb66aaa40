package dbconn

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateIsIdempotentPerKey(t *testing.T) {
	dialer := &fakeDialer{}
	reg := NewRegistryWithDialer(testLogger(), dialer.dial)
	ctx := context.Background()

	first, err := reg.Create(ctx, "project_1", "postgres://u:p@h:5432/db1")
	require.NoError(t, err)

	// Second create with a different connection string still returns the
	// cached pool and does not reconnect.
	second, err := reg.Create(ctx, "project_1", "postgres://u:p@h:5432/db2")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, dialer.dialCount())
}

func TestRegistry_CreateUsesEncryptedTransport(t *testing.T) {
	dialer := &fakeDialer{}
	reg := NewRegistryWithDialer(testLogger(), dialer.dial)

	_, err := reg.Create(context.Background(), "project_1", "postgres://u:p@h:5432/db")
	require.NoError(t, err)
	assert.Contains(t, dialer.calls[0], "sslmode=require")
}

func TestRegistry_Get(t *testing.T) {
	dialer := &fakeDialer{}
	reg := NewRegistryWithDialer(testLogger(), dialer.dial)

	_, ok := reg.Get("project_1")
	assert.False(t, ok)

	created, err := reg.Create(context.Background(), "project_1", "postgres://u:p@h:5432/db")
	require.NoError(t, err)

	got, ok := reg.Get("project_1")
	assert.True(t, ok)
	assert.Same(t, created, got)

	// Get never dials.
	assert.Equal(t, 1, dialer.dialCount())
}

func TestRegistry_Remove(t *testing.T) {
	dialer := &fakeDialer{}
	reg := NewRegistryWithDialer(testLogger(), dialer.dial)

	t.Run("unknown key returns false with no teardown", func(t *testing.T) {
		assert.False(t, reg.Remove("project_missing"))
	})

	t.Run("known key closes exactly once and forgets the entry", func(t *testing.T) {
		_, err := reg.Create(context.Background(), "project_1", "postgres://u:p@h:5432/db")
		require.NoError(t, err)

		assert.True(t, reg.Remove("project_1"))
		assert.Equal(t, 1, dialer.pools[0].closes())

		_, ok := reg.Get("project_1")
		assert.False(t, ok)

		assert.False(t, reg.Remove("project_1"))
		assert.Equal(t, 1, dialer.pools[0].closes())
	})
}

func TestRegistry_ConcurrentCreateSameKey(t *testing.T) {
	dialer := &fakeDialer{}
	reg := NewRegistryWithDialer(testLogger(), dialer.dial)

	const workers = 16
	var wg sync.WaitGroup
	pools := make([]Pool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pool, err := reg.Create(context.Background(), "project_1", "postgres://u:p@h:5432/db")
			require.NoError(t, err)
			pools[i] = pool
		}(i)
	}
	wg.Wait()

	// All callers share the one pool; construction ran exactly once.
	assert.Equal(t, 1, dialer.dialCount())
	for i := 1; i < workers; i++ {
		assert.Same(t, pools[0], pools[i])
	}
}

func TestRegistry_Shutdown(t *testing.T) {
	dialer := &fakeDialer{}
	reg := NewRegistryWithDialer(testLogger(), dialer.dial)
	ctx := context.Background()

	_, err := reg.Create(ctx, "project_1", "postgres://u:p@h:5432/db1")
	require.NoError(t, err)
	_, err = reg.Create(ctx, "project_2", "postgres://u:p@h:5432/db2")
	require.NoError(t, err)

	reg.Shutdown()

	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 1, dialer.pools[0].closes())
	assert.Equal(t, 1, dialer.pools[1].closes())
}

func TestPoolKey(t *testing.T) {
	assert.Equal(t, "project_42", PoolKey("42"))
}
