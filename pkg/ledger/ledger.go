package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dutchhouse/auction/pkg/clock"
	"github.com/dutchhouse/auction/pkg/model"
)

// Payments pushes funds between marketplace accounts and the ledger.
// Capture takes the tendered payment from a buyer, Transfer pays a
// recipient out. Either call may fail; the ledger handles the failure
// locally and never lets it corrupt its own state.
type Payments interface {
	Capture(ctx context.Context, from model.AccountID, amount uint64) error
	Transfer(ctx context.Context, to model.AccountID, amount uint64) error
}

// EventSink receives the ledger's events in emission order. Sink errors are
// logged and swallowed: the journal observes the ledger, it does not gate it.
type EventSink interface {
	Append(ctx context.Context, events ...model.Event) error
}

// Ledger is the descending-price auction state machine. It owns the lot
// sequence, the accrued platform fee and the pending-refund balances.
// Every mutating operation runs to completion under one mutex, which gives
// the serialized, no-partial-effects semantics the settlement rules assume:
// of two concurrent buys on the same lot exactly one observes the lot
// unsold.
type Ledger struct {
	mu       sync.RWMutex
	clock    clock.Clock
	payments Payments
	events   EventSink

	owner      model.AccountID
	lots       []model.Lot
	feeBalance uint64
	pending    map[model.AccountID]uint64
}

func New(owner model.AccountID, clk clock.Clock, payments Payments, events EventSink) *Ledger {
	return &Ledger{
		clock:    clk,
		payments: payments,
		events:   events,
		owner:    owner,
		pending:  make(map[model.AccountID]uint64),
	}
}

// Snapshot carries the durable part of the ledger state across restarts.
type Snapshot struct {
	Lots           []model.Lot
	FeeBalance     uint64
	PendingRefunds map[model.AccountID]uint64
}

// Restore replaces the ledger state with a previously persisted snapshot.
// Meant to be called once at boot, before the ledger is serving.
func (l *Ledger) Restore(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lots = append(l.lots[:0], s.Lots...)
	l.feeBalance = s.FeeBalance

	l.pending = make(map[model.AccountID]uint64, len(s.PendingRefunds))
	for acc, amount := range s.PendingRefunds {
		l.pending[acc] = amount
	}
}

// CreateLot appends a new lot and returns its index. Indices are gapless and
// strictly increasing; a lot is never removed or reordered afterwards.
func (l *Ledger) CreateLot(ctx context.Context, seller model.AccountID, startPrice, discountRate uint64, duration time.Duration, description string) (int64, error) {
	if err := model.ValidateCreation(startPrice, discountRate, duration); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	index := int64(len(l.lots))

	l.lots = append(l.lots, model.Lot{
		Index:        index,
		Seller:       seller,
		StartPrice:   startPrice,
		DiscountRate: discountRate,
		StartAt:      now,
		ExpiresAt:    now.Add(duration),
		Description:  description,
	})

	l.emit(ctx, model.NewAuctionCreatedEvent(index, description, startPrice, duration, now))

	return index, nil
}

// GetLot returns a copy of the lot at the given index.
func (l *Ledger) GetLot(index int64) (model.Lot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lot, err := l.lot(index)
	if err != nil {
		return model.Lot{}, err
	}

	return *lot, nil
}

// GetPrice returns the decayed price of the lot at the current instant.
// Pure read: same clock reading, same answer.
func (l *Ledger) GetPrice(index int64) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lot, err := l.lot(index)
	if err != nil {
		return 0, err
	}

	return lot.PriceAt(l.clock.Now()), nil
}

// Buy settles the lot at its current decayed price. The tendered amount is
// captured from the buyer first; then the lot flips to sold, the fee is
// accrued and the payout legs are pushed. A payout leg that cannot be
// delivered is credited to the recipient's pending refunds instead of
// unwinding the sale, so the sale commits exactly once no matter how the
// pushes go. All internal state is updated before any push is attempted.
func (l *Ledger) Buy(ctx context.Context, buyer model.AccountID, index int64, paid uint64) (model.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lot, err := l.lot(index)
	if err != nil {
		return model.Receipt{}, err
	}

	if lot.Stopped {
		return model.Receipt{}, model.StoppedAuctionError{Index: index}
	}

	now := l.clock.Now()
	if lot.Expired(now) {
		return model.Receipt{}, model.ExpiredTimeError{Index: index}
	}

	price := lot.PriceAt(now)
	if paid < price {
		return model.Receipt{}, model.InsufficientFundsError{Index: index, Paid: paid, CurrentPrice: price}
	}

	if err := l.payments.Capture(ctx, buyer, paid); err != nil {
		return model.Receipt{}, fmt.Errorf("can't capture payment from buyer: %w", err)
	}

	lot.Stopped = true
	lot.FinalPrice = price

	fee, proceeds, refund := model.SplitPayment(price, paid)
	l.feeBalance += fee

	receipt := model.Receipt{
		Index:          index,
		Buyer:          buyer,
		FinalPrice:     price,
		Fee:            fee,
		SellerProceeds: proceeds,
		Refund:         refund,
	}

	if err := l.payments.Transfer(ctx, lot.Seller, proceeds); err != nil {
		l.pending[lot.Seller] += proceeds
		receipt.SellerPending = true
		l.emit(ctx, model.MoneyTransferFailedEvent(index, lot.Seller, proceeds, err.Error(), now))
	}

	if refund > 0 {
		if err := l.payments.Transfer(ctx, buyer, refund); err != nil {
			l.pending[buyer] += refund
			receipt.BuyerPending = true
			l.emit(ctx, model.MoneyTransferFailedEvent(index, buyer, refund, err.Error(), now))
		}
	}

	l.emit(ctx, model.AuctionEndedEvent(index, price, buyer, now))

	return receipt, nil
}

// WithdrawRefund pays out the caller's pending refund. The balance is zeroed
// before the push; if the push fails the balance is restored and the
// operation reports failure, so a refund can neither be double-claimed nor
// silently lost.
func (l *Ledger) WithdrawRefund(ctx context.Context, caller model.AccountID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	amount := l.pending[caller]
	if amount == 0 {
		return 0, model.ErrNoPendingRefund
	}

	delete(l.pending, caller)

	if err := l.payments.Transfer(ctx, caller, amount); err != nil {
		l.pending[caller] = amount
		return 0, fmt.Errorf("can't push refund: %w", err)
	}

	return amount, nil
}

// WithdrawIncomes pays part of the accrued platform fee out to the owner.
// Same debit-before-push ordering as WithdrawRefund.
func (l *Ledger) WithdrawIncomes(ctx context.Context, caller model.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return model.NotAnOwnerError{Caller: caller}
	}

	if amount > l.feeBalance {
		return model.NotEnoughFundsError{Requested: amount}
	}

	l.feeBalance -= amount

	if err := l.payments.Transfer(ctx, caller, amount); err != nil {
		l.feeBalance += amount
		return fmt.Errorf("can't push incomes: %w", err)
	}

	return nil
}

// Counter returns the number of lots ever created.
func (l *Ledger) Counter() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return int64(len(l.lots))
}

func (l *Ledger) Owner() model.AccountID {
	return l.owner
}

func (l *Ledger) FeeBalance() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.feeBalance
}

func (l *Ledger) PendingRefund(account model.AccountID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.pending[account]
}

func (l *Ledger) lot(index int64) (*model.Lot, error) {
	if index < 0 || index >= int64(len(l.lots)) {
		return nil, model.NonExistentLotError{Index: index}
	}

	return &l.lots[index], nil
}

func (l *Ledger) emit(ctx context.Context, ev model.Event) {
	if l.events == nil {
		return
	}

	if err := l.events.Append(ctx, ev); err != nil {
		slog.Error("can't append event to journal", slog.Any("error", err))
	}
}
