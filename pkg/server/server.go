package server

import (
	"net/http"
	"time"

	"github.com/dutchhouse/auction/pkg/server/handler"
	"github.com/dutchhouse/auction/pkg/server/middleware"
	"github.com/dutchhouse/auction/pkg/service"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
)

func New(addr string, auctionSvc service.Auction, eventsSvc service.Events, accountSvc service.Account) (*http.Server, error) {
	mux := http.NewServeMux()

	mux.Handle("/auctions/create", handler.AuctionCreate(auctionSvc))
	mux.Handle("/auctions/lot", handler.AuctionLot(auctionSvc))
	mux.Handle("/auctions/price", handler.AuctionPrice(auctionSvc))
	mux.Handle("/auctions/buy", handler.AuctionBuy(auctionSvc))
	mux.Handle("/auctions", handler.AuctionListPage(auctionSvc))
	mux.Handle("/refunds/withdraw", handler.RefundWithdraw(auctionSvc))
	mux.Handle("/refunds/pending", handler.PendingRefund(auctionSvc))
	mux.Handle("/incomes/withdraw", handler.IncomesWithdraw(auctionSvc))
	mux.Handle("/events", handler.EventListPage(eventsSvc))
	mux.Handle("/accounts/balance", handler.AccountGet(accountSvc))
	mux.Handle("/accounts/deposit", handler.AccountDeposit(accountSvc))
	mux.Handle("/accounts/freeze", handler.AccountFreeze(accountSvc))

	chain := middleware.Chain{
		middleware.Log,
		middleware.Recovery,
	}

	return &http.Server{
		Addr:         addr,
		Handler:      chain.Then(mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}, nil
}
