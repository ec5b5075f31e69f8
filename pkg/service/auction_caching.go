package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dutchhouse/auction/pkg/model"
)

const lotsKeyPrefix = "lots:"

// AuctionCaching is a caching layer which is intended to be called before
// AuctionGeneric. Lot reads are the hot path (pollers watching the price
// decay re-fetch lots constantly), so lot snapshots are kept in redis for a
// short TTL. A buy invalidates the cached lot. Errors occurring when calling
// redis are not returned.
type AuctionCaching struct {
	Auction

	Redis *redis.Client
	TTL   time.Duration
}

func (ac *AuctionCaching) Lot(ctx context.Context, index int64) (model.Lot, error) {
	key := lotCacheKey(index)

	val, err := ac.Redis.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		// do nothing
	case err != nil:
		slog.Error("can't get lot from redis", slog.Any("error", err))

	default:
		var lot model.Lot
		if err := json.Unmarshal([]byte(val), &lot); err != nil {
			slog.Error("can't unmarshal cached lot", slog.String("val", val), slog.Any("error", err))
			break
		}

		return lot, nil
	}

	// slower path - read from the ledger
	lot, err := ac.Auction.Lot(ctx, index)
	if err != nil {
		return model.Lot{}, err
	}

	if raw, err := json.Marshal(lot); err != nil {
		slog.Error("can't marshal lot for cache", slog.Any("error", err))
	} else if err := ac.Redis.Set(ctx, key, raw, ac.TTL).Err(); err != nil {
		slog.Error("can't set lot in redis", slog.Any("error", err))
	}

	return lot, nil
}

func (ac *AuctionCaching) Buy(ctx context.Context, buyer model.AccountID, index int64, paid uint64) (model.Receipt, error) {
	receipt, err := ac.Auction.Buy(ctx, buyer, index, paid)
	if err != nil {
		return model.Receipt{}, err
	}

	// the cached snapshot still says the lot is unsold
	if err := ac.Redis.Del(ctx, lotCacheKey(index)).Err(); err != nil {
		slog.Error("can't invalidate cached lot", slog.Any("error", err))
	}

	return receipt, nil
}

func lotCacheKey(index int64) string {
	return lotsKeyPrefix + strconv.FormatInt(index, 10)
}
