package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dutchhouse/auction/pkg/database"
	"github.com/dutchhouse/auction/pkg/model"
	"github.com/dutchhouse/auction/pkg/service"
)

type ListPageResp[T any] struct {
	Page  []T `json:"page"`
	Total int `json:"total"`
}

// writeError maps the ledger's typed failures onto HTTP statuses. Every
// precondition violation carries its parameters in the message, so the body
// is just the error text.
func writeError(w http.ResponseWriter, err error) {
	var (
		invalidStart model.InvalidStartPriceError
		nonExistent  model.NonExistentLotError
		stopped      model.StoppedAuctionError
		expired      model.ExpiredTimeError
		insufficient model.InsufficientFundsError
		notOwner     model.NotAnOwnerError
		notEnough    model.NotEnoughFundsError
	)

	switch {
	case errors.As(err, &nonExistent):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &invalidStart):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &stopped),
		errors.As(err, &expired),
		errors.As(err, &insufficient),
		errors.As(err, &notEnough),
		errors.Is(err, model.ErrNoPendingRefund):
		http.Error(w, err.Error(), http.StatusPreconditionFailed)
	case errors.As(err, &notOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrLimitExceeded):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("can't encode response: %v", err), http.StatusInternalServerError)
	}
}

func parsePageParams(q url.Values) (pageNum, pageSize int, err error) {
	pageNum = service.DefaultPageNum
	pageSize = service.DefaultPageSize

	if pn := q.Get("page_num"); pn != "" {
		pageNum, err = strconv.Atoi(pn)
		if err != nil {
			return 0, 0, fmt.Errorf("can't parse page_num: %w", err)
		}
	}

	if ps := q.Get("page_size"); ps != "" {
		pageSize, err = strconv.Atoi(ps)
		if err != nil {
			return 0, 0, fmt.Errorf("can't parse page_size: %w", err)
		}
	}

	return pageNum, pageSize, nil
}

func parseAccountID(q url.Values, param string) (model.AccountID, error) {
	id, err := strconv.ParseInt(q.Get(param), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("can't parse %s: %w", param, err)
	}

	return model.AccountID(id), nil
}

func parseUint(q url.Values, param string) (uint64, error) {
	v, err := strconv.ParseUint(q.Get(param), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("can't parse %s: %w", param, err)
	}

	return v, nil
}
