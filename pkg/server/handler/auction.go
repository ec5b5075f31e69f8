package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dutchhouse/auction/pkg/model"
	"github.com/dutchhouse/auction/pkg/service"
)

func AuctionCreate(svc service.Auction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()

		seller, err := parseAccountID(q, "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		startPrice, err := parseUint(q, "start_price")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		discountRate, err := parseUint(q, "discount_rate")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		durationSec, err := parseUint(q, "duration")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		index, err := svc.Create(r.Context(), seller, startPrice, discountRate,
			time.Duration(durationSec)*time.Second, q.Get("description"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, map[string]int64{"index": index})
	}
}

func AuctionLot(svc service.Auction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		index, err := strconv.ParseInt(r.URL.Query().Get("index"), 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("can't parse index: %v", err), http.StatusBadRequest)
			return
		}

		lot, err := svc.Lot(r.Context(), index)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, lot)
	}
}

func AuctionPrice(svc service.Auction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		index, err := strconv.ParseInt(r.URL.Query().Get("index"), 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("can't parse index: %v", err), http.StatusBadRequest)
			return
		}

		price, err := svc.Price(r.Context(), index)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, map[string]uint64{"price": price})
	}
}

func AuctionBuy(svc service.Auction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()

		buyer, err := parseAccountID(q, "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		index, err := strconv.ParseInt(q.Get("index"), 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("can't parse index: %v", err), http.StatusBadRequest)
			return
		}

		paid, err := parseUint(q, "paid")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		receipt, err := svc.Buy(r.Context(), buyer, index, paid)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, receipt)
	}
}

func RefundWithdraw(svc service.Auction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		caller, err := parseAccountID(r.URL.Query(), "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		amount, err := svc.WithdrawRefund(r.Context(), caller)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, map[string]uint64{"amount": amount})
	}
}

func PendingRefund(svc service.Auction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		account, err := parseAccountID(r.URL.Query(), "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		amount, err := svc.PendingRefund(r.Context(), account)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, map[string]uint64{"amount": amount})
	}
}

func IncomesWithdraw(svc service.Auction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()

		caller, err := parseAccountID(q, "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		amount, err := parseUint(q, "amount")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := svc.WithdrawIncomes(r.Context(), caller, amount); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, map[string]uint64{"amount": amount})
	}
}

func AuctionListPage(svc service.Auction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		pageNum, pageSize, err := parsePageParams(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var resp ListPageResp[model.Lot]

		resp.Page, resp.Total, err = svc.ListPage(r.Context(), pageNum, pageSize)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, resp)
	}
}
