// Package pricing is the single source of monetary totals. Every surface
// that shows or records an amount (cart view, checkout, invoices) goes
// through Price; nothing else in the service computes a total.
package pricing

import "shoestore/internal/domain"

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// ShippingRule is supplied by the delivery side of the system; the engine
// only keys it on the subtotal.
type ShippingRule interface {
	Fee(subtotal int64) int64
}

// TieredRule charges a flat fee, waived at or above FreeOver (when set).
type TieredRule struct {
	Flat     int64
	FreeOver int64
}

func (r TieredRule) Fee(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	if r.FreeOver > 0 && subtotal >= r.FreeOver {
		return 0
	}
	return r.Flat
}

// Subtotal is always the exact sum over current lines; totals are never
// cached anywhere.
func Subtotal(lines []domain.CartLine) int64 {
	var sum int64
	for i := range lines {
		sum += lines[i].LineTotal()
	}
	return sum
}

// Price combines lines with an optionally applied coupon. The discount is
// re-derived against the current subtotal, so a coupon applied earlier never
// goes stale when the cart changes.
func Price(lines []domain.CartLine, applied *domain.AppliedCoupon, rule ShippingRule) Totals {
	subtotal := Subtotal(lines)

	var discount int64
	if applied != nil {
		discount = applied.Recompute(subtotal)
	}

	var shipping int64
	if rule != nil {
		shipping = rule.Fee(subtotal)
	}

	total := subtotal - discount + shipping
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    total,
	}
}
