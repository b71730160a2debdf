package pricing

import (
	"testing"

	"shoestore/internal/domain"

	"github.com/stretchr/testify/assert"
)

func line(price, qty int64) domain.CartLine {
	return domain.CartLine{UnitPrice: price, Quantity: qty}
}

func TestSubtotal(t *testing.T) {
	lines := []domain.CartLine{line(1500, 2), line(500, 1)}
	assert.Equal(t, int64(3500), Subtotal(lines))
	assert.Equal(t, int64(0), Subtotal(nil))
}

func TestPrice(t *testing.T) {
	rule := TieredRule{Flat: 99, FreeOver: 5000}

	tests := []struct {
		name     string
		lines    []domain.CartLine
		applied  *domain.AppliedCoupon
		expected Totals
	}{
		{
			name:     "no coupon, flat shipping",
			lines:    []domain.CartLine{line(1000, 2)},
			expected: Totals{Subtotal: 2000, Discount: 0, Shipping: 99, Total: 2099},
		},
		{
			name:  "ten percent coupon",
			lines: []domain.CartLine{line(1000, 2)},
			applied: &domain.AppliedCoupon{
				Code: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: 10,
			},
			expected: Totals{Subtotal: 2000, Discount: 200, Shipping: 99, Total: 1899},
		},
		{
			name:  "fixed coupon clamped to subtotal",
			lines: []domain.CartLine{line(300, 1)},
			applied: &domain.AppliedCoupon{
				Code: "FLAT500", DiscountType: domain.DiscountFixed, DiscountValue: 500,
			},
			expected: Totals{Subtotal: 300, Discount: 300, Shipping: 99, Total: 99},
		},
		{
			name:     "free shipping over threshold",
			lines:    []domain.CartLine{line(3000, 2)},
			expected: Totals{Subtotal: 6000, Discount: 0, Shipping: 0, Total: 6000},
		},
		{
			name:     "empty cart ships nothing",
			lines:    nil,
			expected: Totals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.lines, tt.applied, rule)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPrice_DiscountRecomputedOnCartChange(t *testing.T) {
	rule := TieredRule{Flat: 99}
	percent := &domain.AppliedCoupon{Code: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: 10}
	fixed := &domain.AppliedCoupon{Code: "FLAT500", DiscountType: domain.DiscountFixed, DiscountValue: 500}

	small := []domain.CartLine{line(1000, 1)}
	big := []domain.CartLine{line(1000, 4)}

	// Percentage coupons scale with the subtotal.
	assert.Equal(t, int64(100), Price(small, percent, rule).Discount)
	assert.Equal(t, int64(400), Price(big, percent, rule).Discount)

	// Fixed coupons stay constant until clamped.
	assert.Equal(t, int64(500), Price(small, fixed, rule).Discount)
	assert.Equal(t, int64(500), Price(big, fixed, rule).Discount)
	assert.Equal(t, int64(200), Price([]domain.CartLine{line(200, 1)}, fixed, rule).Discount)
}

func TestPrice_ViewAndInvoiceAgree(t *testing.T) {
	rule := TieredRule{Flat: 99, FreeOver: 5000}
	lines := []domain.CartLine{line(1999, 2), line(799, 3)}
	applied := &domain.AppliedCoupon{Code: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: 10}

	view := Price(lines, applied, rule)
	invoice := Price(lines, applied, rule)
	assert.Equal(t, view, invoice)
}

func TestPrice_TotalNeverNegative(t *testing.T) {
	applied := &domain.AppliedCoupon{Code: "HUGE", DiscountType: domain.DiscountFixed, DiscountValue: 100000}
	got := Price([]domain.CartLine{line(100, 1)}, applied, nil)
	assert.Equal(t, int64(100), got.Discount)
	assert.Equal(t, int64(0), got.Total)
}
