package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/dutchhouse/auction/pkg/model"
	"github.com/dutchhouse/auction/pkg/service"
)

type stubAuction struct {
	createIndex int64
	createErr   error
	lot         model.Lot
	lotErr      error
	price       uint64
	priceErr    error
	receipt     model.Receipt
	buyErr      error
	refund      uint64
	refundErr   error
	incomesErr  error
	pending     uint64
	page        []model.Lot
	total       int
}

func (s *stubAuction) Create(context.Context, model.AccountID, uint64, uint64, time.Duration, string) (int64, error) {
	return s.createIndex, s.createErr
}

func (s *stubAuction) Lot(context.Context, int64) (model.Lot, error) { return s.lot, s.lotErr }

func (s *stubAuction) Price(context.Context, int64) (uint64, error) { return s.price, s.priceErr }

func (s *stubAuction) Buy(context.Context, model.AccountID, int64, uint64) (model.Receipt, error) {
	return s.receipt, s.buyErr
}

func (s *stubAuction) WithdrawRefund(context.Context, model.AccountID) (uint64, error) {
	return s.refund, s.refundErr
}

func (s *stubAuction) WithdrawIncomes(context.Context, model.AccountID, uint64) error {
	return s.incomesErr
}

func (s *stubAuction) PendingRefund(context.Context, model.AccountID) (uint64, error) {
	return s.pending, nil
}

func (s *stubAuction) ListPage(context.Context, int, int) ([]model.Lot, int, error) {
	return s.page, s.total, nil
}

func do(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestAuctionCreate(t *testing.T) {
	svc := &stubAuction{createIndex: 3}

	rec := do(AuctionCreate(svc), http.MethodPost,
		"/auctions/create?user_id=1001&start_price=1000000000&discount_rate=10&duration=86400&description=lamp")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	check.Equal(t, int64(3), resp["index"])
}

func TestAuctionCreateErrors(t *testing.T) {
	t.Run("wrong method", func(t *testing.T) {
		rec := do(AuctionCreate(&stubAuction{}), http.MethodGet, "/auctions/create")
		check.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("malformed params", func(t *testing.T) {
		rec := do(AuctionCreate(&stubAuction{}), http.MethodPost, "/auctions/create?user_id=abc")
		check.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid start price", func(t *testing.T) {
		svc := &stubAuction{createErr: model.InvalidStartPriceError{StartPrice: 100, MinRequired: 864000}}

		rec := do(AuctionCreate(svc), http.MethodPost,
			"/auctions/create?user_id=1001&start_price=100&discount_rate=10&duration=86400")
		check.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc := &stubAuction{createErr: service.ErrLimitExceeded}

		rec := do(AuctionCreate(svc), http.MethodPost,
			"/auctions/create?user_id=1001&start_price=1000000000&discount_rate=10&duration=86400")
		check.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestAuctionLot(t *testing.T) {
	svc := &stubAuction{lot: model.Lot{Index: 5, Seller: 1001, StartPrice: 1000}}

	rec := do(AuctionLot(svc), http.MethodGet, "/auctions/lot?index=5")
	assert.Equal(t, http.StatusOK, rec.Code)
	check.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var lot model.Lot
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&lot))
	check.Equal(t, svc.lot, lot)
}

func TestAuctionLotNotFound(t *testing.T) {
	svc := &stubAuction{lotErr: model.NonExistentLotError{Index: 42}}

	rec := do(AuctionLot(svc), http.MethodGet, "/auctions/lot?index=42")
	check.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuctionPrice(t *testing.T) {
	svc := &stubAuction{price: 999_568_000}

	rec := do(AuctionPrice(svc), http.MethodGet, "/auctions/price?index=0")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]uint64
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	check.Equal(t, uint64(999_568_000), resp["price"])
}

func TestAuctionBuy(t *testing.T) {
	svc := &stubAuction{receipt: model.Receipt{
		Index:          0,
		Buyer:          1002,
		FinalPrice:     1000,
		Fee:            100,
		SellerProceeds: 900,
		Refund:         50,
	}}

	rec := do(AuctionBuy(svc), http.MethodPost, "/auctions/buy?user_id=1002&index=0&paid=1050")
	assert.Equal(t, http.StatusOK, rec.Code)

	var receipt model.Receipt
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&receipt))
	check.Equal(t, svc.receipt, receipt)
}

func TestAuctionBuyPreconditions(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"stopped", model.StoppedAuctionError{Index: 0}, http.StatusPreconditionFailed},
		{"expired", model.ExpiredTimeError{Index: 0}, http.StatusPreconditionFailed},
		{"underpaid", model.InsufficientFundsError{Index: 0, Paid: 10, CurrentPrice: 100}, http.StatusPreconditionFailed},
		{"non-existent", model.NonExistentLotError{Index: 9}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(AuctionBuy(&stubAuction{buyErr: tc.err}), http.MethodPost,
				"/auctions/buy?user_id=1002&index=0&paid=10")
			check.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestRefundWithdraw(t *testing.T) {
	svc := &stubAuction{refund: 700}

	rec := do(RefundWithdraw(svc), http.MethodPost, "/refunds/withdraw?user_id=1002")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]uint64
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	check.Equal(t, uint64(700), resp["amount"])
}

func TestRefundWithdrawNothingPending(t *testing.T) {
	svc := &stubAuction{refundErr: model.ErrNoPendingRefund}

	rec := do(RefundWithdraw(svc), http.MethodPost, "/refunds/withdraw?user_id=1002")
	check.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestPendingRefund(t *testing.T) {
	svc := &stubAuction{pending: 500}

	rec := do(PendingRefund(svc), http.MethodGet, "/refunds/pending?user_id=1002")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]uint64
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	check.Equal(t, uint64(500), resp["amount"])
}

func TestIncomesWithdraw(t *testing.T) {
	rec := do(IncomesWithdraw(&stubAuction{}), http.MethodPost, "/incomes/withdraw?user_id=1&amount=100")
	check.Equal(t, http.StatusOK, rec.Code)
}

func TestIncomesWithdrawErrors(t *testing.T) {
	t.Run("not an owner", func(t *testing.T) {
		svc := &stubAuction{incomesErr: model.NotAnOwnerError{Caller: 1002}}

		rec := do(IncomesWithdraw(svc), http.MethodPost, "/incomes/withdraw?user_id=1002&amount=100")
		check.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("not enough funds", func(t *testing.T) {
		svc := &stubAuction{incomesErr: model.NotEnoughFundsError{Requested: 100}}

		rec := do(IncomesWithdraw(svc), http.MethodPost, "/incomes/withdraw?user_id=1&amount=100")
		check.Equal(t, http.StatusPreconditionFailed, rec.Code)
	})
}

func TestAuctionListPage(t *testing.T) {
	svc := &stubAuction{
		page:  []model.Lot{{Index: 0}, {Index: 1}},
		total: 7,
	}

	rec := do(AuctionListPage(svc), http.MethodGet, "/auctions?page_num=1&page_size=2")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ListPageResp[model.Lot]
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	check.Equal(t, 7, resp.Total)
	check.Equal(t, 2, len(resp.Page))
}

func TestAuctionListPageBadParams(t *testing.T) {
	rec := do(AuctionListPage(&stubAuction{}), http.MethodGet, "/auctions?page_num=x")
	check.Equal(t, http.StatusBadRequest, rec.Code)
}
