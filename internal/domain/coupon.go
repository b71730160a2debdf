package domain

import (
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

// Coupon is an admin-managed row. The pricing path never writes it; only the
// checkout transaction bumps TimesUsed, and only through a guarded update.
type Coupon struct {
	Code            string       `json:"code" gorm:"primaryKey;size:64"`
	DiscountType    DiscountType `json:"discountType" gorm:"type:enum('percentage','fixed_amount');not null"`
	DiscountValue   int64        `json:"discountValue" gorm:"not null"`
	StartsAt        *time.Time   `json:"startsAt"`
	ExpiresAt       *time.Time   `json:"expiresAt"`
	UsageLimitTotal *int64       `json:"usageLimitTotal"`
	TimesUsed       int64        `json:"timesUsed" gorm:"not null;default:0"`
	MinSpendAmount  *int64       `json:"minSpendAmount"`
	IsActive        bool         `json:"isActive" gorm:"not null;default:true"`
}

func (Coupon) TableName() string { return "coupons" }

// NormalizeCouponCode maps user input to the stored form: trimmed, upper-case.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// AppliedCoupon is an ephemeral binding of a coupon to a specific subtotal.
// DiscountAmount must be recomputed whenever the subtotal changes.
type AppliedCoupon struct {
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discountType"`
	DiscountValue  int64        `json:"discountValue"`
	DiscountAmount int64        `json:"discountAmount"`
}

// Recompute derives the discount for a new subtotal. Percentage coupons
// scale; fixed coupons stay constant until the clamp kicks in. The result
// never exceeds the subtotal.
func (a *AppliedCoupon) Recompute(subtotal int64) int64 {
	return discountFor(a.DiscountType, a.DiscountValue, subtotal)
}

// Apply binds the coupon to a subtotal. Eligibility is checked elsewhere.
func (c *Coupon) Apply(subtotal int64) AppliedCoupon {
	return AppliedCoupon{
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		DiscountAmount: discountFor(c.DiscountType, c.DiscountValue, subtotal),
	}
}

func discountFor(t DiscountType, value, subtotal int64) int64 {
	var amount int64
	switch t {
	case DiscountPercentage:
		amount = subtotal * value / 100
	case DiscountFixed:
		amount = value
	}
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}
