package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dutchhouse/auction/pkg/model"
)

type AuctionLogging struct {
	Auction
}

func (al *AuctionLogging) Create(ctx context.Context, seller model.AccountID, startPrice, discountRate uint64, duration time.Duration, description string) (index int64, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("seller", int64(seller)),
			slog.Uint64("start_price", startPrice),
			slog.Uint64("discount_rate", discountRate),
			slog.Duration("duration", duration),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to create lot", slog.Any("error", err))
		} else {
			log.Debug("lot created", slog.Int64("index", index))
		}
	}(time.Now())

	return al.Auction.Create(ctx, seller, startPrice, discountRate, duration, description)
}

func (al *AuctionLogging) Buy(ctx context.Context, buyer model.AccountID, index int64, paid uint64) (receipt model.Receipt, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("buyer", int64(buyer)),
			slog.Int64("index", index),
			slog.Uint64("paid", paid),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to buy lot", slog.Any("error", err))
		} else {
			log.Debug("lot bought",
				slog.Uint64("final_price", receipt.FinalPrice),
				slog.Uint64("fee", receipt.Fee),
				slog.Uint64("refund", receipt.Refund),
			)
		}
	}(time.Now())

	return al.Auction.Buy(ctx, buyer, index, paid)
}

func (al *AuctionLogging) WithdrawRefund(ctx context.Context, caller model.AccountID) (amount uint64, err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("caller", int64(caller)),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to withdraw refund", slog.Any("error", err))
		} else {
			log.Debug("refund withdrawn", slog.Uint64("amount", amount))
		}
	}(time.Now())

	return al.Auction.WithdrawRefund(ctx, caller)
}

func (al *AuctionLogging) WithdrawIncomes(ctx context.Context, caller model.AccountID, amount uint64) (err error) {
	defer func(t0 time.Time) {
		log := slog.With(
			slog.Int64("caller", int64(caller)),
			slog.Uint64("amount", amount),
			slog.String("delay", time.Since(t0).String()),
		)

		if err != nil {
			log.Error("failed to withdraw incomes", slog.Any("error", err))
		} else {
			log.Debug("incomes withdrawn")
		}
	}(time.Now())

	return al.Auction.WithdrawIncomes(ctx, caller, amount)
}
