package mysql

import (
	"context"
	"errors"
	"log"

	"shoestore/internal/domain"
	"shoestore/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// CommitOrder is the atomic checkout step. Everything runs in one
// transaction; a guarded update that hits zero rows aborts the whole thing.
func (r *orderRepo) CommitOrder(ctx context.Context, order *domain.Order, lines []domain.CartLine, applied *domain.AppliedCoupon) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range lines {
			res := tx.Model(&domain.StockEntry{}).
				Where("shoe_id = ? AND size = ? AND quantity >= ?", lines[i].ShoeID, lines[i].Size, lines[i].Quantity).
				Update("quantity", gorm.Expr("quantity - ?", lines[i].Quantity))
			if res.Error != nil {
				log.Printf("stock decrement error: %v", res.Error)
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrStockConflict
			}
		}

		if applied != nil {
			res := tx.Model(&domain.Coupon{}).
				Where("code = ?", applied.Code).
				Where("usage_limit_total IS NULL OR times_used < usage_limit_total").
				Update("times_used", gorm.Expr("times_used + 1"))
			if res.Error != nil {
				log.Printf("coupon usage increment error: %v", res.Error)
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrCouponConflict
			}
		}

		if err := tx.Create(order).Error; err != nil {
			log.Printf("order insert error: %v", err)
			return err
		}

		if err := tx.Where("user_id = ?", order.UserID).Delete(&domain.CartLine{}).Error; err != nil {
			log.Printf("cart clear error: %v", err)
			return err
		}

		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":       order.Status,
			"paid_at":      order.PaidAt,
			"shipped_at":   order.ShippedAt,
			"delivered_at": order.DeliveredAt,
			"cancelled_at": order.CancelledAt,
			"updated_at":   order.UpdatedAt,
		}).Error
}
