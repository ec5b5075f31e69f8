package limiter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "limiter:"

const redisTimeout = 300 * time.Millisecond

// Limiter counts lot creations per seller within the current hour window.
type Limiter struct {
	Redis *redis.Client
	Limit int
}

func (l *Limiter) Increment(ctx context.Context, accountID int64) (int, error) {
	key := sellerCounterKey(accountID)

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val, err := l.Redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("can't increment seller's counter: %w", err)
	}

	if val == 1 {
		if err := l.Redis.Expire(ctx, key, time.Hour).Err(); err != nil {
			return 0, fmt.Errorf("can't set counter expiration: %w", err)
		}
	}

	return int(val), nil
}

func (l *Limiter) LimitExceeded(ctx context.Context, accountID int64) (bool, error) {
	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	c, err := l.Redis.Get(ctx, sellerCounterKey(accountID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, err
	}

	return c > l.Limit, nil
}

// sellerCounterKey builds key which is used to store count of seller's lot
// creations per window. It consists of the account ID concatenated to the
// current timestamp rounded down to the hour.
func sellerCounterKey(accountID int64) string {
	now := time.Now().Truncate(time.Hour).Unix()
	return cacheKeyPrefix + strconv.FormatInt(accountID, 10) + ":" + strconv.FormatInt(now, 10)
}
