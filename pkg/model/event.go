package model

import (
	"time"
)

type EventKind string

const (
	EventNewAuctionCreated   EventKind = "new_auction_created"
	EventAuctionEnded        EventKind = "auction_ended"
	EventMoneyTransferFailed EventKind = "money_transfer_failed"
)

// Event is one entry of the append-only event journal. Fields beyond Kind
// and LotIndex are populated depending on the kind; the struct is kept flat
// so it maps onto a single journal row.
type Event struct {
	ID         int64     `json:"id"`
	Kind       EventKind `json:"kind"`
	LotIndex   int64     `json:"lot_index"`
	CreatedAt  time.Time `json:"created_at"`

	Description string    `json:"description,omitempty"`
	StartPrice  uint64    `json:"start_price,omitempty"`
	Duration    uint64    `json:"duration,omitempty"` // seconds
	FinalPrice  uint64    `json:"final_price,omitempty"`
	Buyer       AccountID `json:"buyer,omitempty"`
	Recipient   AccountID `json:"recipient,omitempty"`
	Amount      uint64    `json:"amount,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

func NewAuctionCreatedEvent(index int64, description string, startPrice uint64, duration time.Duration, at time.Time) Event {
	return Event{
		Kind:        EventNewAuctionCreated,
		LotIndex:    index,
		CreatedAt:   at,
		Description: description,
		StartPrice:  startPrice,
		Duration:    uint64(duration / time.Second),
	}
}

func AuctionEndedEvent(index int64, finalPrice uint64, buyer AccountID, at time.Time) Event {
	return Event{
		Kind:       EventAuctionEnded,
		LotIndex:   index,
		CreatedAt:  at,
		FinalPrice: finalPrice,
		Buyer:      buyer,
	}
}

func MoneyTransferFailedEvent(index int64, recipient AccountID, amount uint64, reason string, at time.Time) Event {
	return Event{
		Kind:      EventMoneyTransferFailed,
		LotIndex:  index,
		CreatedAt: at,
		Recipient: recipient,
		Amount:    amount,
		Reason:    reason,
	}
}
