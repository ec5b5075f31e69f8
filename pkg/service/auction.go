package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dutchhouse/auction/pkg/database"
	"github.com/dutchhouse/auction/pkg/ledger"
	"github.com/dutchhouse/auction/pkg/model"
)

const (
	DefaultPageNum  = 1
	DefaultPageSize = 50
)

type Auction interface {
	Create(ctx context.Context, seller model.AccountID, startPrice, discountRate uint64, duration time.Duration, description string) (int64, error)
	Lot(ctx context.Context, index int64) (model.Lot, error)
	Price(ctx context.Context, index int64) (uint64, error)
	Buy(ctx context.Context, buyer model.AccountID, index int64, paid uint64) (model.Receipt, error)
	WithdrawRefund(ctx context.Context, caller model.AccountID) (uint64, error)
	WithdrawIncomes(ctx context.Context, caller model.AccountID, amount uint64) error
	PendingRefund(ctx context.Context, account model.AccountID) (uint64, error)
	ListPage(ctx context.Context, pageNum, pageSize int) ([]model.Lot, int, error)
}

// AuctionGeneric represents an implementation of Auction interface containing
// core logics which can be wrapped in other implementations contained in
// auction_*.go. The in-memory ledger is authoritative; lot history, the fee
// balance and pending refunds are written behind it so a restart can restore
// the state. A persistence failure is logged but never fails an operation
// that the ledger has already committed.
type AuctionGeneric struct {
	Ledger *ledger.Ledger
	Lots   database.LotRepository
	State  database.StateRepository
}

func (ag *AuctionGeneric) Create(ctx context.Context, seller model.AccountID, startPrice, discountRate uint64, duration time.Duration, description string) (int64, error) {
	index, err := ag.Ledger.CreateLot(ctx, seller, startPrice, discountRate, duration, description)
	if err != nil {
		return 0, err
	}

	lot, err := ag.Ledger.GetLot(index)
	if err == nil {
		err = ag.Lots.Add(ctx, lot)
	}
	logPersistErr("create", err)

	return index, nil
}

func (ag *AuctionGeneric) Lot(ctx context.Context, index int64) (model.Lot, error) {
	return ag.Ledger.GetLot(index)
}

func (ag *AuctionGeneric) Price(ctx context.Context, index int64) (uint64, error) {
	return ag.Ledger.GetPrice(index)
}

func (ag *AuctionGeneric) Buy(ctx context.Context, buyer model.AccountID, index int64, paid uint64) (model.Receipt, error) {
	receipt, err := ag.Ledger.Buy(ctx, buyer, index, paid)
	if err != nil {
		return model.Receipt{}, err
	}

	logPersistErr("buy", ag.Lots.MarkSold(ctx, index, receipt.FinalPrice))
	logPersistErr("buy", ag.State.SaveFeeBalance(ctx, ag.Ledger.FeeBalance()))

	if receipt.SellerPending {
		if lot, err := ag.Ledger.GetLot(index); err == nil {
			logPersistErr("buy", ag.State.SavePendingRefund(ctx, lot.Seller, ag.Ledger.PendingRefund(lot.Seller)))
		}
	}

	if receipt.BuyerPending {
		logPersistErr("buy", ag.State.SavePendingRefund(ctx, buyer, ag.Ledger.PendingRefund(buyer)))
	}

	return receipt, nil
}

func (ag *AuctionGeneric) WithdrawRefund(ctx context.Context, caller model.AccountID) (uint64, error) {
	amount, err := ag.Ledger.WithdrawRefund(ctx, caller)
	if err != nil {
		return 0, err
	}

	logPersistErr("withdraw_refund", ag.State.SavePendingRefund(ctx, caller, ag.Ledger.PendingRefund(caller)))

	return amount, nil
}

func (ag *AuctionGeneric) WithdrawIncomes(ctx context.Context, caller model.AccountID, amount uint64) error {
	if err := ag.Ledger.WithdrawIncomes(ctx, caller, amount); err != nil {
		return err
	}

	logPersistErr("withdraw_incomes", ag.State.SaveFeeBalance(ctx, ag.Ledger.FeeBalance()))

	return nil
}

func (ag *AuctionGeneric) PendingRefund(ctx context.Context, account model.AccountID) (uint64, error) {
	return ag.Ledger.PendingRefund(account), nil
}

func (ag *AuctionGeneric) ListPage(ctx context.Context, pageNum, pageSize int) ([]model.Lot, int, error) {
	return ag.Lots.GetPage(ctx, pageNum, pageSize)
}

func logPersistErr(op string, err error) {
	if err != nil {
		slog.Error("can't persist ledger state to DB", slog.String("op", op), slog.Any("error", err))
	}
}
