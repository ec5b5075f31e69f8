package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dutchhouse/auction/pkg/limiter"
	"github.com/dutchhouse/auction/pkg/model"
)

var ErrLimitExceeded = errors.New("seller exceeded his creation limit")

// AuctionLimiting is a wrapper over Auction service which makes sure that a
// seller can list no more than Limit lots per window. Keeps the creation
// endpoint from being used to flood the lot history, which is append-only
// and kept forever.
//
// If failed to check limits, the behavior depends on FailOpen flag. If set,
// current request is allowed. Otherwise, an error will be returned.
type AuctionLimiting struct {
	Auction

	Limiter  *limiter.Limiter
	FailOpen bool
}

func (al *AuctionLimiting) Create(ctx context.Context, seller model.AccountID, startPrice, discountRate uint64, duration time.Duration, description string) (int64, error) {
	exceeded, err := al.Limiter.LimitExceeded(ctx, int64(seller))
	if err != nil {
		if !al.FailOpen {
			return 0, fmt.Errorf("can't check if limit exceeded: %w", err)
		}

		slog.Error("can't check if limit exceeded", slog.Any("error", err))
	}

	if exceeded {
		return 0, ErrLimitExceeded
	}

	index, err := al.Auction.Create(ctx, seller, startPrice, discountRate, duration, description)
	if err != nil {
		return 0, err
	}

	if _, err := al.Limiter.Increment(ctx, int64(seller)); err != nil {
		slog.Error("can't increment seller's limit", slog.Any("error", err))
	}

	return index, nil
}
