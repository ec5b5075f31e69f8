package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dutchhouse/auction/pkg/service"
)

func AccountGet(svc service.Account) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "only GET method allowed", http.StatusMethodNotAllowed)
			return
		}

		id, err := parseAccountID(r.URL.Query(), "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		acc, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, acc)
	}
}

func AccountFreeze(svc service.Account) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()

		id, err := parseAccountID(q, "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		frozen, err := strconv.ParseBool(q.Get("frozen"))
		if err != nil {
			http.Error(w, fmt.Sprintf("can't parse frozen: %v", err), http.StatusBadRequest)
			return
		}

		if err := svc.SetFrozen(r.Context(), id, frozen); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func AccountDeposit(svc service.Account) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "only POST method allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()

		id, err := parseAccountID(q, "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		amount, err := parseUint(q, "amount")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := svc.Deposit(r.Context(), id, amount); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, map[string]uint64{"amount": amount})
	}
}
