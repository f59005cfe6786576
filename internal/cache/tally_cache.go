// Package cache holds the Redis-backed live-tally cache. The cache serves
// hot poll reads during a live match; it is best-effort and never consulted
// on a correctness-critical path — the Mongo document stays the source of
// truth for every counter.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// TallyKeyPrefix is the key pattern for cached poll tallies
const TallyKeyPrefix = "matchvote:tally:%s"

// TallyCache caches derived poll tallies with a short TTL
type TallyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTallyCache creates a tally cache around a connected Redis client
func NewTallyCache(client *redis.Client, ttl time.Duration) *TallyCache {
	return &TallyCache{
		client: client,
		ttl:    ttl,
	}
}

// SetTally stores the tally for a poll, refreshing the TTL
func (c *TallyCache) SetTally(ctx context.Context, pollID string, tally *models.Tally) error {
	payload, err := json.Marshal(tally)
	if err != nil {
		return fmt.Errorf("failed to encode tally for poll %s: %w", pollID, err)
	}
	key := fmt.Sprintf(TallyKeyPrefix, pollID)
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache tally for poll %s: %w", pollID, err)
	}
	return nil
}

// GetTally retrieves the cached tally for a poll. Returns (nil, nil) on a
// cache miss.
func (c *TallyCache) GetTally(ctx context.Context, pollID string) (*models.Tally, error) {
	key := fmt.Sprintf(TallyKeyPrefix, pollID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached tally for poll %s: %w", pollID, err)
	}

	var tally models.Tally
	if err := json.Unmarshal(payload, &tally); err != nil {
		return nil, fmt.Errorf("failed to decode cached tally for poll %s: %w", pollID, err)
	}
	return &tally, nil
}

// Invalidate drops the cached tally for a poll, typically at close time
func (c *TallyCache) Invalidate(ctx context.Context, pollID string) error {
	key := fmt.Sprintf(TallyKeyPrefix, pollID)
	return c.client.Del(ctx, key).Err()
}
