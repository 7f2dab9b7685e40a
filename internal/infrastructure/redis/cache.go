package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cassiomorais/pawapay/internal/domain/payment"
	"github.com/redis/go-redis/v9"
)

// StatusCache keeps status lookups that can no longer change. Only results
// for deposits found in a final status are stored.
type StatusCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewStatusCache(client redis.Cmdable, ttl time.Duration, prefix string) *StatusCache {
	if prefix == "" {
		prefix = "pawapay:deposit-status:"
	}
	return &StatusCache{client: client, ttl: ttl, prefix: prefix}
}

// Get returns the cached result for depositID and whether there was one.
func (c *StatusCache) Get(ctx context.Context, depositID string) (payment.DepositStatusResult, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+depositID).Bytes()
	if errors.Is(err, redis.Nil) {
		return payment.DepositStatusResult{}, false, nil
	}
	if err != nil {
		return payment.DepositStatusResult{}, false, fmt.Errorf("failed to read status cache: %w", err)
	}

	var result payment.DepositStatusResult
	if err := json.Unmarshal(data, &result); err != nil {
		return payment.DepositStatusResult{}, false, fmt.Errorf("failed to decode cached status: %w", err)
	}
	return result, true, nil
}

// Put stores result if it is final and reports whether it did.
func (c *StatusCache) Put(ctx context.Context, depositID string, result payment.DepositStatusResult) (bool, error) {
	if !result.IsFinal() {
		return false, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("failed to encode status: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+depositID, data, c.ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to write status cache: %w", err)
	}
	return true, nil
}
