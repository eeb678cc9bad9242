package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// StoreStatus records the last probe snapshot of one endpoint.
func (c *Client) StoreStatus(ctx context.Context, endpointID string, statusCode int, latencyMs int64, checkedAt time.Time) error {
	key := c.key("probe", endpointID)

	return retry(ctx, 2, func() error {
		return c.rdb.HSet(ctx, key, map[string]any{
			"status_code": statusCode,
			"latency_ms":  latencyMs,
			"checked_at":  checkedAt.Unix(),
		}).Err()
	})
}

// GetStatus returns the last probe snapshot, or nil when the endpoint was
// never probed.
func (c *Client) GetStatus(ctx context.Context, endpointID string) (map[string]string, error) {
	res, err := c.rdb.HGetAll(ctx, c.key("probe", endpointID)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(res) == 0) {
		return nil, nil
	}
	return res, err
}

func (c *Client) DelStatus(ctx context.Context, endpointID string) error {
	return c.rdb.Del(ctx, c.key("probe", endpointID)).Err()
}
