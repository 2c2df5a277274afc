// Package cache содержит кэш сводки свободных мест в Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmeshcher/parking-system/internal/model"
)

const availabilityKey = "parking:availability"

// AvailabilityCache хранит сводку свободных мест в Redis с коротким TTL.
type AvailabilityCache struct {
	c   *redis.Client
	ttl time.Duration
}

// New создаёт кэш по адресу Redis с указанным временем жизни записи.
func New(addr string, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{
		c: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		ttl: ttl,
	}
}

// Get возвращает сводку из кэша. Второе значение — признак попадания.
func (a *AvailabilityCache) Get(ctx context.Context) (*model.Availability, bool, error) {
	val, err := a.c.Get(ctx, availabilityKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var av model.Availability
	if err := json.Unmarshal(val, &av); err != nil {
		return nil, false, fmt.Errorf("unmarshal availability: %w", err)
	}

	return &av, true, nil
}

// Set сохраняет сводку в кэш.
func (a *AvailabilityCache) Set(ctx context.Context, av *model.Availability) error {
	val, err := json.Marshal(av)
	if err != nil {
		return fmt.Errorf("marshal availability: %w", err)
	}

	if err := a.c.Set(ctx, availabilityKey, val, a.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis.
func (a *AvailabilityCache) Close() error {
	return a.c.Close()
}
