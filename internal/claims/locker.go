package claims

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"claims-platform/pkg/utils"
)

// Locker serializes logical updates per claim across API instances.
//
// The claims service takes the lock for the whole read-detect-enrich-write
// sequence of one update, which is how "at most one Record call per logical
// update" is kept true under concurrency.
type Locker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// RedisLocker is the production Locker, backed by SET NX PX plus an
// owner-checked release.
type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return utils.AcquireEntityLock(ctx, l.rdb, key, token, ttl)
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	return utils.ReleaseEntityLock(ctx, l.rdb, key, token)
}

// MemoryLocker is a single-process Locker for tests and local development.
type MemoryLocker struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{owners: make(map[string]string)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.owners[key]; held {
		return false, nil
	}
	l.owners[key] = token
	return true, nil
}

func (l *MemoryLocker) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owners[key] == token {
		delete(l.owners, key)
	}
	return nil
}
