package database

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates every table the service relies on. Statements are
// idempotent, so the seeder can run it on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
		create table if not exists lots (
			idx           bigint primary key,
			seller        bigint not null,
			start_price   bigint not null,
			discount_rate bigint not null,
			start_at      timestamptz not null,
			expires_at    timestamptz not null,
			description   text not null,
			stopped       boolean not null default false,
			final_price   bigint not null default 0
		);

		create table if not exists events (
			id          bigserial primary key,
			kind        text not null,
			lot_index   bigint not null,
			created_at  timestamptz not null,
			description text not null default '',
			start_price bigint not null default 0,
			duration    bigint not null default 0,
			final_price bigint not null default 0,
			buyer       bigint not null default 0,
			recipient   bigint not null default 0,
			amount      bigint not null default 0,
			reason      text not null default ''
		);

		create table if not exists accounts (
			id         bigint primary key,
			balance    bigint not null default 0,
			frozen     boolean not null default false,
			created_at timestamptz not null
		);

		create table if not exists transfers (
			id         uuid primary key,
			account_id bigint not null,
			amount     bigint not null,
			entry_type text not null,
			created_at timestamptz not null
		);

		create table if not exists ledger_state (
			id          int primary key,
			fee_balance bigint not null default 0
		);

		create table if not exists pending_refunds (
			account_id bigint primary key,
			amount     bigint not null
		);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("can't create schema: %w", err)
	}

	return nil
}
