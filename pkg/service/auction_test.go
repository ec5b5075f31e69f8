package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/dutchhouse/auction/pkg/ledger"
	"github.com/dutchhouse/auction/pkg/model"
)

const (
	owner  = model.AccountID(1)
	seller = model.AccountID(1001)
	buyer  = model.AccountID(1002)

	startPrice   = uint64(1_000_000_000)
	discountRate = uint64(10)
	duration     = 24 * time.Hour
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakePayments struct {
	failTransferTo map[model.AccountID]bool
}

func (p *fakePayments) Capture(context.Context, model.AccountID, uint64) error { return nil }

func (p *fakePayments) Transfer(_ context.Context, to model.AccountID, _ uint64) error {
	if p.failTransferTo[to] {
		return errors.New("recipient can't accept transfer")
	}

	return nil
}

type fakeLotRepo struct {
	added  []model.Lot
	sold   map[int64]uint64
	failed bool
}

func (r *fakeLotRepo) Add(_ context.Context, lot model.Lot) error {
	if r.failed {
		return errors.New("lots table unavailable")
	}

	r.added = append(r.added, lot)
	return nil
}

func (r *fakeLotRepo) MarkSold(_ context.Context, index int64, finalPrice uint64) error {
	if r.failed {
		return errors.New("lots table unavailable")
	}

	if r.sold == nil {
		r.sold = make(map[int64]uint64)
	}

	r.sold[index] = finalPrice
	return nil
}

func (r *fakeLotRepo) GetPage(_ context.Context, num, size int) ([]model.Lot, int, error) {
	offset := (num - 1) * size
	if offset >= len(r.added) {
		return nil, len(r.added), nil
	}

	end := offset + size
	if end > len(r.added) {
		end = len(r.added)
	}

	return r.added[offset:end], len(r.added), nil
}

func (r *fakeLotRepo) All(_ context.Context) ([]model.Lot, error) {
	return r.added, nil
}

type fakeStateRepo struct {
	feeBalance uint64
	pending    map[model.AccountID]uint64
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{pending: make(map[model.AccountID]uint64)}
}

func (r *fakeStateRepo) SaveFeeBalance(_ context.Context, balance uint64) error {
	r.feeBalance = balance
	return nil
}

func (r *fakeStateRepo) SavePendingRefund(_ context.Context, account model.AccountID, amount uint64) error {
	if amount == 0 {
		delete(r.pending, account)
		return nil
	}

	r.pending[account] = amount
	return nil
}

func (r *fakeStateRepo) Load(context.Context) (uint64, map[model.AccountID]uint64, error) {
	return r.feeBalance, r.pending, nil
}

func newTestAuction() (*AuctionGeneric, *fakePayments, *fakeLotRepo, *fakeStateRepo) {
	payments := &fakePayments{failTransferTo: make(map[model.AccountID]bool)}
	lots := &fakeLotRepo{}
	state := newFakeStateRepo()

	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	led := ledger.New(owner, clk, payments, nil)

	return &AuctionGeneric{Ledger: led, Lots: lots, State: state}, payments, lots, state
}

func TestCreatePersistsLot(t *testing.T) {
	svc, _, lots, _ := newTestAuction()
	ctx := context.Background()

	index, err := svc.Create(ctx, seller, startPrice, discountRate, duration, "oak table")
	assert.NoError(t, err)
	check.Equal(t, int64(0), index)

	assert.Equal(t, 1, len(lots.added))
	check.Equal(t, index, lots.added[0].Index)
	check.Equal(t, seller, lots.added[0].Seller)
	check.Equal(t, "oak table", lots.added[0].Description)
}

func TestCreateInvalidNotPersisted(t *testing.T) {
	svc, _, lots, _ := newTestAuction()

	_, err := svc.Create(context.Background(), seller, 100, discountRate, duration, "")
	check.Error(t, err)
	check.Equal(t, 0, len(lots.added))
}

func TestBuyPersistsSaleAndFee(t *testing.T) {
	svc, _, lots, state := newTestAuction()
	ctx := context.Background()

	index, err := svc.Create(ctx, seller, startPrice, discountRate, duration, "")
	assert.NoError(t, err)

	receipt, err := svc.Buy(ctx, buyer, index, startPrice)
	assert.NoError(t, err)

	check.Equal(t, receipt.FinalPrice, lots.sold[index])
	check.Equal(t, receipt.Fee, state.feeBalance)
	check.Equal(t, 0, len(state.pending))
}

func TestBuyPersistsPendingRefunds(t *testing.T) {
	svc, payments, _, state := newTestAuction()
	ctx := context.Background()

	index, err := svc.Create(ctx, seller, startPrice, discountRate, duration, "")
	assert.NoError(t, err)

	payments.failTransferTo[seller] = true
	payments.failTransferTo[buyer] = true

	receipt, err := svc.Buy(ctx, buyer, index, startPrice+500)
	assert.NoError(t, err)

	check.True(t, receipt.SellerPending)
	check.True(t, receipt.BuyerPending)
	check.Equal(t, receipt.SellerProceeds, state.pending[seller])
	check.Equal(t, uint64(500), state.pending[buyer])
}

func TestBuyPersistFailureDoesNotFailSale(t *testing.T) {
	svc, _, lots, _ := newTestAuction()
	ctx := context.Background()

	index, err := svc.Create(ctx, seller, startPrice, discountRate, duration, "")
	assert.NoError(t, err)

	// the ledger commits, the repository outage is only logged
	lots.failed = true

	_, err = svc.Buy(ctx, buyer, index, startPrice)
	check.NoError(t, err)

	_, err = svc.Buy(ctx, buyer, index, startPrice)
	check.Error(t, err)

	var target model.StoppedAuctionError
	check.True(t, errors.As(err, &target))
}

func TestWithdrawRefundClearsPersistedState(t *testing.T) {
	svc, payments, _, state := newTestAuction()
	ctx := context.Background()

	index, err := svc.Create(ctx, seller, startPrice, discountRate, duration, "")
	assert.NoError(t, err)

	payments.failTransferTo[buyer] = true

	_, err = svc.Buy(ctx, buyer, index, startPrice+500)
	assert.NoError(t, err)
	check.Equal(t, uint64(500), state.pending[buyer])

	payments.failTransferTo[buyer] = false

	amount, err := svc.WithdrawRefund(ctx, buyer)
	assert.NoError(t, err)
	check.Equal(t, uint64(500), amount)

	// the persisted pending balance follows the ledger down to zero
	check.Equal(t, 0, len(state.pending))

	pending, err := svc.PendingRefund(ctx, buyer)
	assert.NoError(t, err)
	check.Equal(t, uint64(0), pending)
}

func TestWithdrawIncomesPersistsFeeBalance(t *testing.T) {
	svc, _, _, state := newTestAuction()
	ctx := context.Background()

	index, err := svc.Create(ctx, seller, startPrice, discountRate, duration, "")
	assert.NoError(t, err)

	receipt, err := svc.Buy(ctx, buyer, index, startPrice)
	assert.NoError(t, err)

	assert.NoError(t, svc.WithdrawIncomes(ctx, owner, receipt.Fee))
	check.Equal(t, uint64(0), state.feeBalance)

	err = svc.WithdrawIncomes(ctx, buyer, 1)
	check.Error(t, err)

	var target model.NotAnOwnerError
	check.True(t, errors.As(err, &target))
}

func TestListPage(t *testing.T) {
	svc, _, _, _ := newTestAuction()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, seller, startPrice, discountRate, duration, "")
		assert.NoError(t, err)
	}

	page, total, err := svc.ListPage(ctx, 1, 2)
	assert.NoError(t, err)
	check.Equal(t, 3, total)
	check.Equal(t, 2, len(page))

	page, total, err = svc.ListPage(ctx, 2, 2)
	assert.NoError(t, err)
	check.Equal(t, 3, total)
	check.Equal(t, 1, len(page))
}
