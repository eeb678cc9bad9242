package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	retryBaseDelay = 50 * time.Millisecond
	retryMaxDelay  = 400 * time.Millisecond
)

// retry runs fn up to attempts times with doubling delays. Redis replies
// (WRONGTYPE, script errors) and redis.Nil are returned at once.
func retry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	delay := retryBaseDelay

	for i := range attempts {
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, retryMaxDelay)
	}

	return err
}

func retryable(err error) bool {
	if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var replyErr redis.Error
	return !errors.As(err, &replyErr)
}
