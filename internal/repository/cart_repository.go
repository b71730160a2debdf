package repository

import (
	"context"

	"shoestore/internal/domain"
)

type CartRepository interface {
	// LoadCartWithStock hydrates a user's cart in one round trip: lines
	// joined with catalog fields and a live stock snapshot.
	LoadCartWithStock(ctx context.Context, userID uint64) ([]domain.CartLine, error)
	Insert(ctx context.Context, line *domain.CartLine) error
	UpdateQuantity(ctx context.Context, lineID uint64, quantity int64) error
	Delete(ctx context.Context, lineID uint64) error
	DeleteAll(ctx context.Context, userID uint64) error
}
