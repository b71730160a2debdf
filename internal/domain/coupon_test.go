package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCouponCode("  save10 "))
	assert.Equal(t, "FLAT500", NormalizeCouponCode("FLAT500"))
	assert.Equal(t, "", NormalizeCouponCode("   "))
}

func TestAppliedCoupon_Recompute(t *testing.T) {
	tests := []struct {
		name     string
		coupon   Coupon
		subtotal int64
		expected int64
	}{
		{"percentage truncates", Coupon{DiscountType: DiscountPercentage, DiscountValue: 10}, 1999, 199},
		{"percentage of zero", Coupon{DiscountType: DiscountPercentage, DiscountValue: 10}, 0, 0},
		{"hundred percent", Coupon{DiscountType: DiscountPercentage, DiscountValue: 100}, 2000, 2000},
		{"fixed within subtotal", Coupon{DiscountType: DiscountFixed, DiscountValue: 500}, 2000, 500},
		{"fixed clamped", Coupon{DiscountType: DiscountFixed, DiscountValue: 500}, 300, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applied := tt.coupon.Apply(tt.subtotal)
			assert.Equal(t, tt.expected, applied.DiscountAmount)
			assert.Equal(t, tt.expected, applied.Recompute(tt.subtotal))
		})
	}
}

func TestAppliedCoupon_RecomputeFollowsSubtotal(t *testing.T) {
	applied := (&Coupon{Code: "SAVE10", DiscountType: DiscountPercentage, DiscountValue: 10}).Apply(2000)
	assert.Equal(t, int64(200), applied.DiscountAmount)

	assert.Equal(t, int64(350), applied.Recompute(3500))
	assert.Equal(t, int64(0), applied.Recompute(0))
}
