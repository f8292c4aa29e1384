package cache

import (
	"context"
	"encoding/json"
	"time"

	"attendsync/app/services"

	"github.com/redis/go-redis/v9"
)

// RedisHealthCache keeps recent health assessments in redis so the admin
// dashboard's polling does not recompute window stats on every request. Any
// redis trouble is treated as a miss; health reads must never fail the caller.
type RedisHealthCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisHealthCache(rdb *redis.Client, ttl time.Duration) *RedisHealthCache {
	return &RedisHealthCache{rdb: rdb, ttl: ttl}
}

func key(serial string) string { return "attendsync:health:" + serial }

func (c *RedisHealthCache) Get(serial string) (*services.HealthAssessment, bool) {
	raw, err := c.rdb.Get(context.Background(), key(serial)).Bytes()
	if err != nil {
		return nil, false
	}
	var a services.HealthAssessment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false
	}
	return &a, true
}

func (c *RedisHealthCache) Put(a services.HealthAssessment) {
	raw, err := json.Marshal(a)
	if err != nil {
		return
	}
	_ = c.rdb.Set(context.Background(), key(a.DeviceSerial), raw, c.ttl).Err()
}
