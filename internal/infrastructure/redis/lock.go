package redis

import (
	"context"
	"fmt"
	"time"

	domainerrors "github.com/cassiomorais/pawapay/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lua script for safe lock release (only owner can release)
var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// DistributedLock is a single-owner Redis lock. The value is a random token
// so only the holder can release it.
type DistributedLock struct {
	client   redis.Cmdable
	key      string
	value    string
	ttl      time.Duration
	acquired bool
}

// NewDistributedLock creates a new distributed lock
func NewDistributedLock(client redis.Cmdable, key string, ttl time.Duration) *DistributedLock {
	return &DistributedLock{
		client: client,
		key:    fmt.Sprintf("lock:%s", key),
		value:  uuid.New().String(),
		ttl:    ttl,
	}
}

// Acquire attempts to acquire the lock
func (l *DistributedLock) Acquire(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", domainerrors.ErrLockAcquisitionFailed, err)
	}

	l.acquired = success
	return success, nil
}

// Release releases the lock
func (l *DistributedLock) Release(ctx context.Context) error {
	if !l.acquired {
		return nil
	}

	val, err := releaseLockScript.Run(ctx, l.client, []string{l.key}, l.value).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	l.acquired = false
	if val == 0 {
		return domainerrors.ErrLockNotHeld
	}
	return nil
}

// Locker hands out per-deposit locks.
type Locker struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewLocker(client redis.Cmdable, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// TryLock takes the lock for key without waiting. The returned release
// function is nil when the lock is held elsewhere.
func (l *Locker) TryLock(ctx context.Context, key string) (func(context.Context) error, error) {
	lock := NewDistributedLock(l.client, key, l.ttl)
	acquired, err := lock.Acquire(ctx)
	if err != nil || !acquired {
		return nil, err
	}
	return lock.Release, nil
}
