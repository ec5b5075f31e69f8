package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dutchhouse/auction/pkg/model"
)

type EventRepository interface {
	Append(ctx context.Context, events ...model.Event) error
	GetPage(ctx context.Context, num, size int) ([]model.Event, int, error)
}

type EventDatabase struct {
	DB *sql.DB
}

func (ed *EventDatabase) Append(ctx context.Context, events ...model.Event) error {
	if len(events) == 0 {
		return nil
	}

	q := buildBatchQuery(len(events))

	args := make([]any, 0, len(events)*eventColumns)
	for _, ev := range events {
		args = append(args,
			string(ev.Kind), ev.LotIndex, ev.CreatedAt,
			ev.Description, int64(ev.StartPrice), int64(ev.Duration), int64(ev.FinalPrice),
			int64(ev.Buyer), int64(ev.Recipient), int64(ev.Amount), ev.Reason,
		)
	}

	res, err := ed.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert events: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if int(affected) != len(events) {
		return fmt.Errorf("expected %d records to be inserted, got %d", len(events), affected)
	}

	return nil
}

func (ed *EventDatabase) GetPage(ctx context.Context, num, size int) ([]model.Event, int, error) {
	q := `
		select count(*) from events
	`
	var total int
	if err := ed.DB.QueryRowContext(ctx, q).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count events: %w", err)
	}

	offset := (num - 1) * size
	q = `
		select id, kind, lot_index, created_at, description, start_price, duration, final_price, buyer, recipient, amount, reason
		from events
		order by id
		limit $1 offset $2
	`
	rows, err := ed.DB.QueryContext(ctx, q, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("can't query events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0, size)
	for rows.Next() {
		var (
			ev                               model.Event
			kind                             string
			startPrice, duration, finalPrice int64
			buyer, recipient, amount         int64
		)

		if err := rows.Scan(&ev.ID, &kind, &ev.LotIndex, &ev.CreatedAt,
			&ev.Description, &startPrice, &duration, &finalPrice,
			&buyer, &recipient, &amount, &ev.Reason); err != nil {
			return nil, 0, fmt.Errorf("can't scan event: %w", err)
		}

		ev.Kind = model.EventKind(kind)
		ev.StartPrice = uint64(startPrice)
		ev.Duration = uint64(duration)
		ev.FinalPrice = uint64(finalPrice)
		ev.Buyer = model.AccountID(buyer)
		ev.Recipient = model.AccountID(recipient)
		ev.Amount = uint64(amount)

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over events: %w", err)
	}

	return events, total, nil
}

const eventColumns = 11

func buildBatchQuery(rows int) string {
	sb := strings.Builder{}
	sb.WriteString("insert into events (kind, lot_index, created_at, description, start_price, duration, final_price, buyer, recipient, amount, reason) values ")

	phs := make([]string, 0, rows)

	for i := 0; i < rows; i++ {
		ph := make([]string, 0, eventColumns)
		for j := 0; j < eventColumns; j++ {
			ph = append(ph, fmt.Sprintf("$%d", i*eventColumns+j+1))
		}

		phs = append(phs, "("+strings.Join(ph, ", ")+")")
	}

	sb.WriteString(strings.Join(phs, ","))
	return sb.String()
}

// EventBatchingDatabase buffers events in memory and flushes them in batches,
// either when the buffer grows past batchSize or on every tick. The journal
// order inside the table follows insertion order of the serialized ledger,
// so batching never reorders events.
type EventBatchingDatabase struct {
	buffer    []model.Event
	ticker    *time.Ticker
	done      chan struct{}
	batchSize int
	mu        sync.Mutex

	*EventDatabase
}

func NewEventBatchingDatabase(db *sql.DB, batchSize int, flushInterval time.Duration) *EventBatchingDatabase {
	ed := &EventBatchingDatabase{
		buffer:    make([]model.Event, 0, batchSize),
		ticker:    time.NewTicker(flushInterval),
		done:      make(chan struct{}),
		batchSize: batchSize,

		EventDatabase: &EventDatabase{db},
	}

	go ed.loop()

	return ed
}

func (ed *EventBatchingDatabase) Append(ctx context.Context, events ...model.Event) error {
	if len(events) == 0 {
		return nil
	}

	ed.mu.Lock()
	ed.buffer = append(ed.buffer, events...)
	shouldFlush := len(ed.buffer) >= ed.batchSize
	ed.mu.Unlock()

	if shouldFlush {
		go func() {
			if err := ed.flush(); err != nil {
				slog.Error("can't flush events buffer", slog.Any("error", err))
			}
		}()
	}

	return nil
}

// Close flushes whatever is buffered and stops the background loop.
func (ed *EventBatchingDatabase) Close() error {
	ed.ticker.Stop()
	close(ed.done)

	return ed.flush()
}

func (ed *EventBatchingDatabase) loop() {
	for {
		select {
		case <-ed.done:
			return
		case <-ed.ticker.C:
			if err := ed.flush(); err != nil {
				slog.Error("can't flush events buffer", slog.Any("error", err))
			}
		}
	}
}

func (ed *EventBatchingDatabase) flush() error {
	ed.mu.Lock()
	if len(ed.buffer) == 0 {
		ed.mu.Unlock()
		return nil
	}

	batch := make([]model.Event, len(ed.buffer))
	copy(batch, ed.buffer)
	ed.buffer = ed.buffer[:0]
	ed.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.TODO(), time.Second*10)
	defer cancel()

	if err := ed.EventDatabase.Append(ctx, batch...); err != nil {
		return fmt.Errorf("can't insert batch: %w", err)
	}

	return nil
}
