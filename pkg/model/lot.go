package model

import (
	"time"
)

// FeePercent is the platform's cut of every sale. Fixed by design, there is
// no governance over it.
const FeePercent = 10

// AccountID identifies a participant of the marketplace.
type AccountID int64

// Lot is a single item listed under descending-price rules. After creation
// only Stopped and FinalPrice ever change, both exactly once when the lot
// is sold.
type Lot struct {
	Index        int64     `json:"index"`
	Seller       AccountID `json:"seller"`
	StartPrice   uint64    `json:"start_price"`
	DiscountRate uint64    `json:"discount_rate"` // price units shaved off per second
	StartAt      time.Time `json:"start_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Description  string    `json:"description"`
	Stopped      bool      `json:"stopped"`
	FinalPrice   uint64    `json:"final_price"`
}

// ValidateCreation checks that the price curve cannot reach zero before the
// lot expires on its own.
func ValidateCreation(startPrice, discountRate uint64, duration time.Duration) error {
	min := discountRate * uint64(duration/time.Second)
	if startPrice < min {
		return InvalidStartPriceError{StartPrice: startPrice, MinRequired: min}
	}

	return nil
}

// PriceAt returns the decayed price at the given instant. Elapsed time is
// clamped to [0, duration], so the subtraction can't underflow even when the
// lot is already expired.
func (l *Lot) PriceAt(now time.Time) uint64 {
	if now.Before(l.StartAt) {
		return l.StartPrice
	}

	elapsed := uint64(now.Sub(l.StartAt) / time.Second)
	if max := uint64(l.ExpiresAt.Sub(l.StartAt) / time.Second); elapsed > max {
		elapsed = max
	}

	return l.StartPrice - l.DiscountRate*elapsed
}

// Expired reports whether the lot can no longer be bought at the given
// instant. Buying exactly at ExpiresAt is still allowed.
func (l *Lot) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// SplitPayment breaks the tendered amount into the platform fee, the
// seller's net proceeds and the buyer's change. Fee division truncates.
func SplitPayment(finalPrice, paid uint64) (fee, proceeds, refund uint64) {
	fee = finalPrice * FeePercent / 100
	proceeds = finalPrice - fee
	refund = paid - finalPrice

	return
}

// Receipt describes the settlement of a single successful buy. The Pending
// flags mark payout legs which could not be pushed to their recipient and
// were credited to pending refunds instead.
type Receipt struct {
	Index          int64     `json:"index"`
	Buyer          AccountID `json:"buyer"`
	FinalPrice     uint64    `json:"final_price"`
	Fee            uint64    `json:"fee"`
	SellerProceeds uint64    `json:"seller_proceeds"`
	Refund         uint64    `json:"refund"`
	SellerPending  bool      `json:"seller_pending"`
	BuyerPending   bool      `json:"buyer_pending"`
}
