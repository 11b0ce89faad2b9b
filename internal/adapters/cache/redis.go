package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventbooking/internal/domain"
)

type redisEventCache struct {
	client *redis.Client
}

// NewRedisEventCache returns an EventCache backed by the given Redis URL
// (e.g. redis://localhost:6379/0).
func NewRedisEventCache(redisURL string) (domain.EventCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &redisEventCache{client: redis.NewClient(opt)}, nil
}

func eventKey(id string) string {
	return "event:" + id
}

func (c *redisEventCache) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	data, err := c.client.Get(ctx, eventKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	e := &domain.Event{}
	if err := json.Unmarshal(data, e); err != nil {
		// A corrupt entry behaves like a miss.
		return nil, nil
	}
	return e, nil
}

func (c *redisEventCache) SetEvent(ctx context.Context, event *domain.Event, ttl time.Duration) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, eventKey(event.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *redisEventCache) InvalidateEvent(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, eventKey(id)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}
