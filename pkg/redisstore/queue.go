package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// PushQueue appends one encoded item to the tail of the named list.
func (c *Client) PushQueue(ctx context.Context, queue string, item []byte) error {
	return retry(ctx, 3, func() error {
		return c.rdb.RPush(ctx, c.key("queue", queue), item).Err()
	})
}

// PopQueue removes the head of the named list. ok is false when the list is
// empty. The pop is not retried: a retried LPOP could drop an item whose
// reply was lost.
func (c *Client) PopQueue(ctx context.Context, queue string) ([]byte, bool, error) {
	res, err := c.rdb.LPop(ctx, c.key("queue", queue)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

func (c *Client) QueueLen(ctx context.Context, queue string) (int64, error) {
	var n int64
	err := retry(ctx, 2, func() error {
		var err error
		n, err = c.rdb.LLen(ctx, c.key("queue", queue)).Result()
		return err
	})
	return n, err
}

// ClearQueue deletes every pending item of the named list.
func (c *Client) ClearQueue(ctx context.Context, queue string) error {
	return c.rdb.Del(ctx, c.key("queue", queue)).Err()
}
