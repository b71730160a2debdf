package repository

import "context"

type StockRepository interface {
	// Available returns the remaining quantity for a (shoe, size). A missing
	// ledger row means zero availability, not an error.
	Available(ctx context.Context, shoeID uint64, size string) (int64, error)
}
