package repository

import (
	"context"

	"shoestore/internal/domain"
)

type CouponRepository interface {
	// FindByCode looks up a coupon by its normalized code. Returns nil, nil
	// when no such coupon exists.
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
}
