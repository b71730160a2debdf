package services

import (
	"context"
	"time"

	"shoestore/internal/domain"
	"shoestore/internal/repository"

	"go.uber.org/zap"
)

// CouponValidator evaluates coupon eligibility against a subtotal. It is
// pure with respect to the coupon row: usage accounting happens only at
// commit, so a previewed-but-never-used coupon is never charged.
type CouponValidator struct {
	repo   repository.CouponRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewCouponValidator(repo repository.CouponRepository, logger *zap.Logger) *CouponValidator {
	return &CouponValidator{repo: repo, now: time.Now, logger: logger}
}

// Validate normalizes the code, looks it up, and runs the eligibility
// checks. Returns the coupon bound to the subtotal, or the first failing
// check as a CouponRejectionError.
func (v *CouponValidator) Validate(ctx context.Context, code string, subtotal int64) (*domain.AppliedCoupon, error) {
	normalized := domain.NormalizeCouponCode(code)

	coupon, err := v.repo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, &domain.TransientError{Op: "coupon lookup", Err: err}
	}
	if coupon == nil {
		return nil, &domain.CouponRejectionError{Code: normalized, Reason: domain.CouponNotFound}
	}

	applied, err := EvaluateCoupon(coupon, subtotal, v.now())
	if err != nil {
		v.logger.Debug("coupon rejected",
			zap.String("code", normalized),
			zap.Int64("subtotal", subtotal),
			zap.Error(err))
		return nil, err
	}
	return applied, nil
}

// EvaluateCoupon runs the eligibility checks over a loaded coupon row. The
// check order is fixed and the first failure wins; callers and users rely
// on which reason comes back.
func EvaluateCoupon(c *domain.Coupon, subtotal int64, now time.Time) (*domain.AppliedCoupon, error) {
	if !c.IsActive {
		return nil, &domain.CouponRejectionError{Code: c.Code, Reason: domain.CouponDisabled}
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return nil, &domain.CouponRejectionError{Code: c.Code, Reason: domain.CouponNotYetActive}
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return nil, &domain.CouponRejectionError{Code: c.Code, Reason: domain.CouponExpired}
	}
	if c.UsageLimitTotal != nil && c.TimesUsed >= *c.UsageLimitTotal {
		return nil, &domain.CouponRejectionError{Code: c.Code, Reason: domain.CouponLimitReached}
	}
	if c.MinSpendAmount != nil && subtotal < *c.MinSpendAmount {
		return nil, &domain.CouponRejectionError{Code: c.Code, Reason: domain.CouponBelowMinimumSpend, MinSpend: *c.MinSpendAmount}
	}

	applied := c.Apply(subtotal)
	return &applied, nil
}
