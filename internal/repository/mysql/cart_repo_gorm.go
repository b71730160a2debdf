package mysql

import (
	"context"
	"log"

	"shoestore/internal/domain"
	"shoestore/internal/repository"

	"gorm.io/gorm"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

// Row shape of the combined cart-with-stock read.
type cartWithStockRow struct {
	ID            uint64
	UserID        uint64
	ShoeID        uint64
	Quantity      int64
	Size          string
	Color         string
	Brand         string
	ShoeName      string
	ShoePrice     int64
	ShoeImage     string
	StockQuantity int64
}

const cartWithStockQuery = `
SELECT ci.id, ci.user_id, ci.shoe_id, ci.quantity, ci.size, ci.color, ci.brand,
       s.name AS shoe_name, s.price AS shoe_price, s.image AS shoe_image,
       COALESCE(ss.quantity, 0) AS stock_quantity
FROM cart_items ci
JOIN shoes s ON s.id = ci.shoe_id
LEFT JOIN shoe_sizes ss ON ss.shoe_id = ci.shoe_id AND ss.size = ci.size
WHERE ci.user_id = ?
ORDER BY ci.id`

func (r *cartRepo) LoadCartWithStock(ctx context.Context, userID uint64) ([]domain.CartLine, error) {
	var rows []cartWithStockRow
	if err := r.db.WithContext(ctx).Raw(cartWithStockQuery, userID).Scan(&rows).Error; err != nil {
		log.Printf("LoadCartWithStock error: %v", err)
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, domain.CartLine{
			ID:            row.ID,
			UserID:        row.UserID,
			ShoeID:        row.ShoeID,
			Quantity:      row.Quantity,
			Size:          row.Size,
			Color:         row.Color,
			Brand:         row.Brand,
			ShoeName:      row.ShoeName,
			UnitPrice:     row.ShoePrice,
			ShoeImage:     row.ShoeImage,
			StockSnapshot: row.StockQuantity,
		})
	}
	return lines, nil
}

func (r *cartRepo) Insert(ctx context.Context, line *domain.CartLine) error {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		log.Printf("cart insert error: %v", err)
		return err
	}
	return nil
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, lineID uint64, quantity int64) error {
	res := r.db.WithContext(ctx).Model(&domain.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity)
	if res.Error != nil {
		log.Printf("cart update error: %v", res.Error)
		return res.Error
	}
	return nil
}

func (r *cartRepo) Delete(ctx context.Context, lineID uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.CartLine{}, lineID).Error
}

func (r *cartRepo) DeleteAll(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartLine{}).Error
}
