package service

import (
	"context"

	"github.com/dutchhouse/auction/pkg/database"
	"github.com/dutchhouse/auction/pkg/model"
)

type Account interface {
	Deposit(ctx context.Context, id model.AccountID, amount uint64) error
	Get(ctx context.Context, id model.AccountID) (model.Account, error)
	// SetFrozen toggles whether the account accepts push transfers.
	SetFrozen(ctx context.Context, id model.AccountID, frozen bool) error
}

type AccountGeneric struct {
	AccountRepository database.AccountRepository
}

func (ag *AccountGeneric) Deposit(ctx context.Context, id model.AccountID, amount uint64) error {
	return ag.AccountRepository.Deposit(ctx, id, amount)
}

func (ag *AccountGeneric) Get(ctx context.Context, id model.AccountID) (model.Account, error) {
	return ag.AccountRepository.Get(ctx, id)
}

func (ag *AccountGeneric) SetFrozen(ctx context.Context, id model.AccountID, frozen bool) error {
	return ag.AccountRepository.SetFrozen(ctx, id, frozen)
}
