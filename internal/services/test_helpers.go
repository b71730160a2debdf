package services

import (
	"time"

	"shoestore/internal/domain"
	"shoestore/internal/infra"
)

func CreateMockLine(id, shoeID uint64, size, color string, quantity, unitPrice, stock int64) domain.CartLine {
	return domain.CartLine{
		ID:            id,
		UserID:        TestUserID,
		ShoeID:        shoeID,
		Quantity:      quantity,
		Size:          size,
		Color:         color,
		Brand:         "TestBrand",
		ShoeName:      "Test Shoe",
		UnitPrice:     unitPrice,
		StockSnapshot: stock,
	}
}

func CreateMockShoe(id uint64, name string, price int64) *infra.ShoeInfo {
	return &infra.ShoeInfo{
		ID:    id,
		Name:  name,
		Brand: "TestBrand",
		Price: price,
		Image: "https://cdn.example.com/shoe.jpg",
	}
}

func CreateMockCoupon(code string, discountType domain.DiscountType, value int64) *domain.Coupon {
	return &domain.Coupon{
		Code:          domain.NormalizeCouponCode(code),
		DiscountType:  discountType,
		DiscountValue: value,
		IsActive:      true,
	}
}

func TimePtr(t time.Time) *time.Time { return &t }

func Int64Ptr(v int64) *int64 { return &v }

const (
	TestUserID    = uint64(1)
	TestShoeID    = uint64(10)
	TestSize      = "9"
	TestColor     = "black"
	TestUnitPrice = int64(1000)
)
