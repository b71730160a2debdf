package mysql

import (
	"context"
	"errors"
	"log"

	"shoestore/internal/domain"
	"shoestore/internal/repository"

	"gorm.io/gorm"
)

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) repository.StockRepository {
	return &stockRepo{db: db}
}

func (r *stockRepo) Available(ctx context.Context, shoeID uint64, size string) (int64, error) {
	var entry domain.StockEntry
	err := r.db.WithContext(ctx).
		Where("shoe_id = ? AND size = ?", shoeID, size).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		log.Printf("stock read error: %v", err)
		return 0, err
	}
	return entry.Quantity, nil
}
