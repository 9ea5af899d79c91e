package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "featuresgym:slots"

// SlotCache keeps computed slot availability per facility and day in Redis.
// Entries expire after ttl and are dropped on every booking mutation.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func Key(facilityID int, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, facilityID, date.Format(time.DateOnly))
}

// Get decodes the cached value into dst. A miss returns false and no error.
func (c *SlotCache) Get(ctx context.Context, facilityID int, date time.Time, dst any) (bool, error) {
	data, err := c.rdb.Get(ctx, Key(facilityID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached slots: %w", err)
	}
	return true, nil
}

func (c *SlotCache) Set(ctx context.Context, facilityID int, date time.Time, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(facilityID, date), data, c.ttl).Err()
}

func (c *SlotCache) Invalidate(ctx context.Context, facilityID int, dates ...time.Time) error {
	if len(dates) == 0 {
		return nil
	}
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, Key(facilityID, d))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Nop never hits. Used when Redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context, int, time.Time, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, int, time.Time, any) error         { return nil }
func (Nop) Invalidate(context.Context, int, ...time.Time) error    { return nil }
