package mysql

import (
	"context"
	"errors"
	"log"

	"shoestore/internal/domain"
	"shoestore/internal/repository"

	"gorm.io/gorm"
)

type couponRepo struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) repository.CouponRepository {
	return &couponRepo{db: db}
}

func (r *couponRepo) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var c domain.Coupon
	err := r.db.WithContext(ctx).First(&c, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("coupon lookup error: %v", err)
		return nil, err
	}
	return &c, nil
}
