package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dutchhouse/auction/pkg/model"
)

// ErrPaymentRejected is returned when a push transfer can't be delivered:
// the account is missing, frozen, or (for captures) underfunded.
var ErrPaymentRejected = errors.New("payment rejected")

type AccountRepository interface {
	Create(ctx context.Context, id model.AccountID, balance uint64) error
	Deposit(ctx context.Context, id model.AccountID, amount uint64) error
	SetFrozen(ctx context.Context, id model.AccountID, frozen bool) error
	Get(ctx context.Context, id model.AccountID) (model.Account, error)
}

// AccountDatabase keeps participant balances and a double-entry style
// journal of every capture and payout. It is the ledger's Payments
// collaborator: Capture debits a buyer, Transfer credits a recipient.
type AccountDatabase struct {
	DB *sql.DB
}

const (
	entryDebit  = "DEBIT"
	entryCredit = "CREDIT"
)

// Capture takes the tendered payment from the buyer's account. Fails when
// the account is missing, frozen or holds less than the tendered amount.
func (ad *AccountDatabase) Capture(ctx context.Context, from model.AccountID, amount uint64) error {
	return WithTx(ad.DB, func(tx *sql.Tx) error {
		const q = `
			update accounts
			set balance = balance - $1
			where id = $2
			  and not frozen
			  and balance >= $1
		`

		res, err := tx.ExecContext(ctx, q, int64(amount), int64(from))
		if err != nil {
			return fmt.Errorf("can't debit account: %w", err)
		}

		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("can't get affected rows: %w", err)
		} else if affected != 1 {
			return fmt.Errorf("account %d can't cover %d: %w", from, amount, ErrPaymentRejected)
		}

		return addJournalEntry(ctx, tx, from, amount, entryDebit)
	})
}

// Transfer pushes funds to the recipient's account. Fails when the account
// is missing or frozen; the caller decides what to do with the undelivered
// amount.
func (ad *AccountDatabase) Transfer(ctx context.Context, to model.AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}

	return WithTx(ad.DB, func(tx *sql.Tx) error {
		const q = `
			update accounts
			set balance = balance + $1
			where id = $2
			  and not frozen
		`

		res, err := tx.ExecContext(ctx, q, int64(amount), int64(to))
		if err != nil {
			return fmt.Errorf("can't credit account: %w", err)
		}

		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("can't get affected rows: %w", err)
		} else if affected != 1 {
			return fmt.Errorf("account %d can't receive %d: %w", to, amount, ErrPaymentRejected)
		}

		return addJournalEntry(ctx, tx, to, amount, entryCredit)
	})
}

func addJournalEntry(ctx context.Context, tx *sql.Tx, account model.AccountID, amount uint64, entryType string) error {
	const q = `
		insert into transfers (id, account_id, amount, entry_type, created_at)
		values ($1, $2, $3, $4, $5)
	`

	if _, err := tx.ExecContext(ctx, q, uuid.New(), int64(account), int64(amount), entryType, time.Now()); err != nil {
		return fmt.Errorf("can't insert journal entry: %w", err)
	}

	return nil
}

func (ad *AccountDatabase) Create(ctx context.Context, id model.AccountID, balance uint64) error {
	const q = `
		insert into accounts (id, balance, frozen, created_at)
		values ($1, $2, false, $3)
		on conflict (id) do nothing
	`

	if _, err := ad.DB.ExecContext(ctx, q, int64(id), int64(balance), time.Now()); err != nil {
		return fmt.Errorf("can't insert account: %w", err)
	}

	return nil
}

func (ad *AccountDatabase) Deposit(ctx context.Context, id model.AccountID, amount uint64) error {
	return ad.Transfer(ctx, id, amount)
}

func (ad *AccountDatabase) SetFrozen(ctx context.Context, id model.AccountID, frozen bool) error {
	const q = `
		update accounts
		set frozen = $1
		where id = $2
	`

	res, err := ad.DB.ExecContext(ctx, q, frozen, int64(id))
	if err != nil {
		return fmt.Errorf("can't update account: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected != 1 {
		return ErrNotFound
	}

	return nil
}

func (ad *AccountDatabase) Get(ctx context.Context, id model.AccountID) (model.Account, error) {
	const q = `
		select id, balance, frozen, created_at
		from accounts
		where id = $1
	`

	var (
		acc     model.Account
		accID   int64
		balance int64
	)

	err := ad.DB.QueryRowContext(ctx, q, int64(id)).Scan(&accID, &balance, &acc.Frozen, &acc.CreatedAt)
	if err != nil {
		return model.Account{}, mapError(err)
	}

	acc.ID = model.AccountID(accID)
	acc.Balance = uint64(balance)

	return acc, nil
}
