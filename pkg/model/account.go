package model

import (
	"time"
)

// Account is a marketplace participant's balance record. A frozen account
// rejects push transfers, which is what forces the ledger onto the
// pending-refund fallback path.
type Account struct {
	ID        AccountID `json:"id"`
	Balance   uint64    `json:"balance"`
	Frozen    bool      `json:"frozen"`
	CreatedAt time.Time `json:"created_at"`
}
