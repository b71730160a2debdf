package http

import (
	"shoestore/internal/domain"
	"shoestore/internal/pricing"
)

type AddItemRequest struct {
	ShoeID   uint64 `json:"shoeId" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Color    string `json:"color" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type CheckoutRequest struct {
	CouponCode string `json:"couponCode"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CartResponse is the hydrated cart view. Totals come from the pricing
// engine; the invoice for a committed order carries the same numbers.
type CartResponse struct {
	Lines  []domain.CartLine     `json:"lines"`
	Coupon *domain.AppliedCoupon `json:"coupon,omitempty"`
	Totals pricing.Totals        `json:"totals"`
}
