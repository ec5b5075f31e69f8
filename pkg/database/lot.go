package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dutchhouse/auction/pkg/model"
)

type LotRepository interface {
	// Add persists a freshly created lot under its ledger index.
	Add(ctx context.Context, lot model.Lot) error
	// MarkSold flips the lot to sold with its settlement price.
	MarkSold(ctx context.Context, index int64, finalPrice uint64) error
	GetPage(ctx context.Context, num, size int) ([]model.Lot, int, error)
	// All returns every lot ordered by index, for rebuilding the ledger at boot.
	All(ctx context.Context) ([]model.Lot, error)
}

type LotDatabase struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

func NewLotDatabase(db *sql.DB) (*LotDatabase, error) {
	ld := &LotDatabase{
		db,
		make(map[string]*sql.Stmt),
	}

	for _, s := range stmts {
		prepared, err := db.Prepare(s.query)
		if err != nil {
			return nil, fmt.Errorf("can't prepare query '%s': %w", s.name, err)
		}

		ld.stmts[s.name] = prepared
	}

	return ld, nil
}

type preparedStmt struct {
	name  string
	query string
}

var (
	stmts = []preparedStmt{
		{
			name: "add_lot",
			query: `
				insert into lots (idx, seller, start_price, discount_rate, start_at, expires_at, description, stopped, final_price)
				values ($1, $2, $3, $4, $5, $6, $7, false, 0)
			`,
		},
		{
			name: "mark_sold",
			query: `
				update lots
				set stopped = true, final_price = $1
				where idx = $2
				  and not stopped
			`,
		},
	}
)

func (l *LotDatabase) Add(ctx context.Context, lot model.Lot) error {
	res, err := l.stmts["add_lot"].ExecContext(ctx,
		lot.Index, int64(lot.Seller), int64(lot.StartPrice), int64(lot.DiscountRate),
		lot.StartAt, lot.ExpiresAt, lot.Description,
	)
	if err != nil {
		return fmt.Errorf("can't insert lot: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected != 1 {
		return fmt.Errorf("expected 1 lot to be inserted, got %d", affected)
	}

	return nil
}

func (l *LotDatabase) MarkSold(ctx context.Context, index int64, finalPrice uint64) error {
	res, err := l.stmts["mark_sold"].ExecContext(ctx, int64(finalPrice), index)
	if err != nil {
		return fmt.Errorf("can't update lot: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected != 1 {
		return fmt.Errorf("lot %d is missing or already marked sold: %w", index, ErrNotFound)
	}

	return nil
}

func (l *LotDatabase) GetPage(ctx context.Context, num, size int) ([]model.Lot, int, error) {
	q := `
		select count(*) from lots
	`
	var total int
	if err := l.db.QueryRowContext(ctx, q).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count lots: %w", err)
	}

	offset := (num - 1) * size
	q = `
		select idx, seller, start_price, discount_rate, start_at, expires_at, description, stopped, final_price
		from lots
		order by idx
		limit $1 offset $2
	`
	rows, err := l.db.QueryContext(ctx, q, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query lots: %w", err)
	}
	defer rows.Close()

	lots := make([]model.Lot, 0, size)
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, 0, err
		}

		lots = append(lots, lot)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over lots: %w", err)
	}

	return lots, total, nil
}

func (l *LotDatabase) All(ctx context.Context) ([]model.Lot, error) {
	q := `
		select idx, seller, start_price, discount_rate, start_at, expires_at, description, stopped, final_price
		from lots
		order by idx
	`
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("can't query lots: %w", err)
	}
	defer rows.Close()

	var lots []model.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}

		lots = append(lots, lot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over lots: %w", err)
	}

	return lots, nil
}

func scanLot(rows *sql.Rows) (model.Lot, error) {
	var (
		lot                                  model.Lot
		seller                               int64
		startPrice, discountRate, finalPrice int64
	)

	if err := rows.Scan(&lot.Index, &seller, &startPrice, &discountRate,
		&lot.StartAt, &lot.ExpiresAt, &lot.Description, &lot.Stopped, &finalPrice); err != nil {
		return model.Lot{}, fmt.Errorf("can't scan lot: %w", err)
	}

	lot.Seller = model.AccountID(seller)
	lot.StartPrice = uint64(startPrice)
	lot.DiscountRate = uint64(discountRate)
	lot.FinalPrice = uint64(finalPrice)

	return lot, nil
}
