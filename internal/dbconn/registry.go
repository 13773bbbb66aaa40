package dbconn

import (
	"context"
	"sync"

	"github.com/pranshu05/BackendManager-sub003/internal/logger"
)

// Registry caches one long-lived pool per project key. Pools are created
// lazily on first use and live until Remove or Shutdown — never closed
// implicitly. Mutations are serialized by a mutex, which makes "create with
// an existing key returns the existing pool" atomic rather than best-effort.
type Registry struct {
	mu    sync.Mutex
	pools map[string]Pool
	dial  Dialer
	log   *logger.Logger
}

// PoolKey returns the registry key for a project.
func PoolKey(projectID string) string {
	return "project_" + projectID
}

// NewRegistry returns a Registry backed by the pgx dialer.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		pools: make(map[string]Pool),
		dial:  PgxDialer,
		log:   log,
	}
}

// NewRegistryWithDialer returns a Registry with a custom dialer, for tests.
func NewRegistryWithDialer(log *logger.Logger, dial Dialer) *Registry {
	return &Registry{
		pools: make(map[string]Pool),
		dial:  dial,
		log:   log,
	}
}

// Create returns the pool cached under key, dialing one first if absent.
// A second Create with the same key returns the existing pool unchanged and
// performs no reconnection, regardless of the connection string passed.
func (r *Registry) Create(ctx context.Context, key, dsn string) (Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pool, ok := r.pools[key]; ok {
		return pool, nil
	}

	pool, err := r.dial(ctx, WithSSLMode(dsn, sslModeRequire), RegistryPoolConfig())
	if err != nil {
		return nil, err
	}

	r.pools[key] = pool
	r.log.With().Str("key", key).Logger().Info("connection pool created")
	return pool, nil
}

// Get is a pure lookup with no side effects.
func (r *Registry) Get(key string) (Pool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.pools[key]
	return pool, ok
}

// Remove closes and forgets the pool under key. It reports whether a pool
// was present; removing an unknown key performs no teardown.
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	pool, ok := r.pools[key]
	if ok {
		delete(r.pools, key)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	pool.Close()
	r.log.With().Str("key", key).Logger().Info("connection pool removed")
	return true
}

// Shutdown closes every cached pool. Called once at process exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]Pool)
	r.mu.Unlock()

	for key, pool := range pools {
		pool.Close()
		r.log.With().Str("key", key).Logger().Debug("connection pool closed")
	}
}

// Len returns the number of cached pools.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}
