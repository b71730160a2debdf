package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoCart            = errors.New("no cart without an authenticated user")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrShoeNotFound      = errors.New("shoe not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")

	// Returned by the order repository when a guarded update inside the
	// checkout transaction affected zero rows. The whole transaction rolls
	// back; the caller surfaces it as a conflict, not a fatal failure.
	ErrStockConflict  = errors.New("stock changed during commit")
	ErrCouponConflict = errors.New("coupon usage limit reached during commit")
)

// StockExceededError rejects a quantity-changing mutation whose tentative
// quantity exceeds live availability. Cart state is left untouched.
type StockExceededError struct {
	ShoeID    uint64
	Size      string
	Available int64
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("insufficient stock for shoe %d size %s: %d available", e.ShoeID, e.Size, e.Available)
}

type CouponRejectReason string

const (
	CouponNotFound          CouponRejectReason = "not_found"
	CouponDisabled          CouponRejectReason = "disabled"
	CouponNotYetActive      CouponRejectReason = "not_yet_active"
	CouponExpired           CouponRejectReason = "expired"
	CouponLimitReached      CouponRejectReason = "limit_reached"
	CouponBelowMinimumSpend CouponRejectReason = "below_minimum_spend"
)

// CouponRejectionError carries the first failing eligibility check. The check
// order is part of the UX contract, so the reason is never recombined.
type CouponRejectionError struct {
	Code     string
	Reason   CouponRejectReason
	MinSpend int64 // set only for below_minimum_spend
}

func (e *CouponRejectionError) Error() string {
	if e.Reason == CouponBelowMinimumSpend {
		return fmt.Sprintf("coupon %s rejected: %s (minimum spend %d)", e.Code, e.Reason, e.MinSpend)
	}
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

// LineShortage reports one oversubscribed line found during commit-time
// re-validation.
type LineShortage struct {
	LineID    uint64 `json:"lineId"`
	ShoeID    uint64 `json:"shoeId"`
	Size      string `json:"size"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// CartConflictError means concurrent activity changed stock or coupon state
// since the cart was last synced. Recovery is a fresh sync plus user action,
// never a silent adjustment.
type CartConflictError struct {
	Shortages []LineShortage
}

func (e *CartConflictError) Error() string {
	if len(e.Shortages) == 0 {
		return "cart conflicts with concurrent activity, re-sync required"
	}
	return fmt.Sprintf("%d cart line(s) exceed current stock", len(e.Shortages))
}

// TransientError wraps a network or storage failure mid-mutation. Optimistic
// state has been rolled back, so a retry is safe.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalCommitError is a failure inside the atomic checkout step after
// validation passed. The transaction rolled back: nothing was reserved.
type FatalCommitError struct {
	Err error
}

func (e *FatalCommitError) Error() string {
	return fmt.Sprintf("order commit failed, nothing was reserved: %v", e.Err)
}

func (e *FatalCommitError) Unwrap() error { return e.Err }
