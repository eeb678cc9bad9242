package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// GetState returns every field of the scheduler state hash. A missing hash
// yields an empty map.
func (c *Client) GetState(ctx context.Context) (map[string]string, error) {
	res, err := c.rdb.HGetAll(ctx, c.key("state")).Result()
	if errors.Is(err, redis.Nil) {
		return map[string]string{}, nil
	}
	return res, err
}

func (c *Client) SetState(ctx context.Context, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return retry(ctx, 3, func() error {
		return c.rdb.HSet(ctx, c.key("state"), fields).Err()
	})
}
