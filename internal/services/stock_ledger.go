package services

import (
	"context"
	"fmt"

	"shoestore/internal/domain"
	"shoestore/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StockReader is the availability contract consumed by the cart and checkout
// paths. Every quantity-changing mutation reads fresh through it.
type StockReader interface {
	Available(ctx context.Context, shoeID uint64, size string) (int64, error)
}

// StockLedger reads remaining quantity per (shoe, size). Reads are never
// cached; stock changes out-of-band. Concurrent reads for the same key are
// collapsed into one backend query, which is deduplication of in-flight
// work, not caching.
type StockLedger struct {
	repo   repository.StockRepository
	group  singleflight.Group
	logger *zap.Logger
}

func NewStockLedger(repo repository.StockRepository, logger *zap.Logger) *StockLedger {
	return &StockLedger{repo: repo, logger: logger}
}

// Available returns live availability. A read failure blocks the caller's
// mutation (fail-closed): unknown availability is never treated as infinite.
func (l *StockLedger) Available(ctx context.Context, shoeID uint64, size string) (int64, error) {
	key := fmt.Sprintf("%d/%s", shoeID, size)
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		return l.repo.Available(ctx, shoeID, size)
	})
	if err != nil {
		l.logger.Warn("stock read failed, blocking mutation",
			zap.Uint64("shoe_id", shoeID),
			zap.String("size", size),
			zap.Error(err))
		return 0, &domain.TransientError{Op: "stock read", Err: err}
	}
	return v.(int64), nil
}

var _ StockReader = (*StockLedger)(nil)
