package handler

import (
	"net/http"

	"github.com/dutchhouse/auction/pkg/model"
	"github.com/dutchhouse/auction/pkg/service"
)

func EventListPage(svc service.Events) http.HandlerFunc {
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

		var resp ListPageResp[model.Event]

		resp.Page, resp.Total, err = svc.ListPage(r.Context(), pageNum, pageSize)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, resp)
	}
}
