package domain

import "time"

// OrderPlacedEvent is published after the checkout transaction commits.
type OrderPlacedEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uint64    `json:"userId"`
	Total       int64     `json:"total"`
	CouponCode  string    `json:"couponCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
