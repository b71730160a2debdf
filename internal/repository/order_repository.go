package repository

import (
	"context"

	"shoestore/internal/domain"
)

type OrderRepository interface {
	// CommitOrder runs the atomic checkout step: guarded stock decrements,
	// guarded coupon usage increment, order snapshot insert, cart delete.
	// All of it commits or none of it does. Guard failures surface as
	// domain.ErrStockConflict / domain.ErrCouponConflict.
	CommitOrder(ctx context.Context, order *domain.Order, lines []domain.CartLine, applied *domain.AppliedCoupon) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatus persists status and timeline columns only; the snapshot
	// stays frozen.
	UpdateStatus(ctx context.Context, order *domain.Order) error
}
