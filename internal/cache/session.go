package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rapidread/rapidread/internal/model"
)

const (
	// sessionPrefix is the Redis key prefix for stored sessions.
	sessionPrefix = "session:"
)

// GetSession retrieves a stored session by token digest.
// Returns nil if not found or expired (not an error).
func (c *Cache) GetSession(ctx context.Context, digest string) (*model.Session, error) {
	key := sessionPrefix + digest

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Miss or expiry is not an error
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &sess, nil
}

// SetSession stores a session under the token digest with the given TTL.
// The TTL is the session expiry policy; there is no separate refresh path.
func (c *Cache) SetSession(ctx context.Context, digest string, sess *model.Session, ttl time.Duration) error {
	key := sessionPrefix + digest

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// DeleteSession removes a stored session. Used at logout.
func (c *Cache) DeleteSession(ctx context.Context, digest string) error {
	key := sessionPrefix + digest
	return c.client.Del(ctx, key).Err()
}
