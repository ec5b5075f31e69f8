package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dutchhouse/auction/pkg/model"
)

// StateRepository persists the ledger's non-lot state (accrued fee balance
// and pending refunds) behind the in-memory ledger, so that a restarted
// instance can pick up where the previous one left off.
type StateRepository interface {
	SaveFeeBalance(ctx context.Context, balance uint64) error
	SavePendingRefund(ctx context.Context, account model.AccountID, amount uint64) error
	Load(ctx context.Context) (feeBalance uint64, pending map[model.AccountID]uint64, err error)
}

type StateDatabase struct {
	DB *sql.DB
}

func (sd *StateDatabase) SaveFeeBalance(ctx context.Context, balance uint64) error {
	const q = `
		insert into ledger_state (id, fee_balance)
		values (1, $1)
		on conflict (id) do update set fee_balance = excluded.fee_balance
	`

	if _, err := sd.DB.ExecContext(ctx, q, int64(balance)); err != nil {
		return fmt.Errorf("can't save fee balance: %w", err)
	}

	return nil
}

func (sd *StateDatabase) SavePendingRefund(ctx context.Context, account model.AccountID, amount uint64) error {
	if amount == 0 {
		const q = `
			delete from pending_refunds
			where account_id = $1
		`

		if _, err := sd.DB.ExecContext(ctx, q, int64(account)); err != nil {
			return fmt.Errorf("can't delete pending refund: %w", err)
		}

		return nil
	}

	const q = `
		insert into pending_refunds (account_id, amount)
		values ($1, $2)
		on conflict (account_id) do update set amount = excluded.amount
	`

	if _, err := sd.DB.ExecContext(ctx, q, int64(account), int64(amount)); err != nil {
		return fmt.Errorf("can't save pending refund: %w", err)
	}

	return nil
}

func (sd *StateDatabase) Load(ctx context.Context) (uint64, map[model.AccountID]uint64, error) {
	var fee int64

	err := sd.DB.QueryRowContext(ctx, `select fee_balance from ledger_state where id = 1`).Scan(&fee)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, nil, fmt.Errorf("can't load fee balance: %w", err)
	}

	rows, err := sd.DB.QueryContext(ctx, `select account_id, amount from pending_refunds`)
	if err != nil {
		return 0, nil, fmt.Errorf("can't query pending refunds: %w", err)
	}
	defer rows.Close()

	pending := make(map[model.AccountID]uint64)
	for rows.Next() {
		var account, amount int64
		if err := rows.Scan(&account, &amount); err != nil {
			return 0, nil, fmt.Errorf("can't scan pending refund: %w", err)
		}

		pending[model.AccountID(account)] = uint64(amount)
	}

	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("error iterating over pending refunds: %w", err)
	}

	return uint64(fee), pending, nil
}
