package model

import (
	"errors"
	"fmt"
)

// ErrNoPendingRefund is returned when an account with nothing to claim calls
// the manual refund withdrawal.
var ErrNoPendingRefund = errors.New("no pending refund to withdraw")

// InvalidStartPriceError rejects a lot whose price curve would cross zero
// before the lot expires.
type InvalidStartPriceError struct {
	StartPrice  uint64
	MinRequired uint64
}

func (e InvalidStartPriceError) Error() string {
	return fmt.Sprintf("invalid start price %d: must be at least %d", e.StartPrice, e.MinRequired)
}

type NonExistentLotError struct {
	Index int64
}

func (e NonExistentLotError) Error() string {
	return fmt.Sprintf("lot %d does not exist", e.Index)
}

type StoppedAuctionError struct {
	Index int64
}

func (e StoppedAuctionError) Error() string {
	return fmt.Sprintf("lot %d has already been sold", e.Index)
}

type ExpiredTimeError struct {
	Index int64
}

func (e ExpiredTimeError) Error() string {
	return fmt.Sprintf("lot %d has expired", e.Index)
}

// InsufficientFundsError reports the tendered amount against the decayed
// price at the instant of the attempt.
type InsufficientFundsError struct {
	Index        int64
	Paid         uint64
	CurrentPrice uint64
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("lot %d: paid %d, current price is %d", e.Index, e.Paid, e.CurrentPrice)
}

type NotAnOwnerError struct {
	Caller AccountID
}

func (e NotAnOwnerError) Error() string {
	return fmt.Sprintf("account %d is not the ledger owner", e.Caller)
}

type NotEnoughFundsError struct {
	Requested uint64
}

func (e NotEnoughFundsError) Error() string {
	return fmt.Sprintf("requested %d exceeds the accrued fee balance", e.Requested)
}
