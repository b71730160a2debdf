package services

import (
	"context"
	"errors"
	"time"

	"shoestore/internal/domain"
	"shoestore/internal/infra/rabbitmq"
	"shoestore/internal/pricing"
	"shoestore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService turns a validated cart plus an optional coupon into an
// immutable order. The cart-level stock checks are a UX convenience; the
// re-validation and guarded updates here are the actual correctness
// backstop under concurrent shoppers.
type CheckoutService struct {
	carts     *CartManager
	orders    repository.OrderRepository
	ledger    StockReader
	coupons   *CouponValidator
	publisher rabbitmq.PublisherInterface
	shipping  pricing.ShippingRule
	logger    *zap.Logger
}

func NewCheckoutService(
	carts *CartManager,
	orders repository.OrderRepository,
	ledger StockReader,
	coupons *CouponValidator,
	publisher rabbitmq.PublisherInterface,
	shipping pricing.ShippingRule,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		ledger:    ledger,
		coupons:   coupons,
		publisher: publisher,
		shipping:  shipping,
		logger:    logger,
	}
}

// Commit re-validates every line and the coupon, then commits the order in
// one atomic step. Any shortage aborts the whole commit; no partial order is
// ever created.
func (s *CheckoutService) Commit(ctx context.Context, userID uint64, couponCode string) (*domain.Order, error) {
	cart, err := s.carts.Cart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := cart.Lines()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Step 1: fresh stock check per line; report every shortage, not just
	// the first.
	var shortages []domain.LineShortage
	for i := range lines {
		available, err := s.ledger.Available(ctx, lines[i].ShoeID, lines[i].Size)
		if err != nil {
			return nil, err
		}
		if lines[i].Quantity > available {
			shortages = append(shortages, domain.LineShortage{
				LineID:    lines[i].ID,
				ShoeID:    lines[i].ShoeID,
				Size:      lines[i].Size,
				Requested: lines[i].Quantity,
				Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		s.carts.Invalidate(userID)
		return nil, &domain.CartConflictError{Shortages: shortages}
	}

	subtotal := pricing.Subtotal(lines)

	// Step 2: coupon re-validation against the final subtotal. Limits and
	// expiry may have moved since the shopper previewed the code.
	var applied *domain.AppliedCoupon
	if couponCode != "" {
		applied, err = s.coupons.Validate(ctx, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
	}

	totals := pricing.Price(lines, applied, s.shipping)

	orderID := uuid.New().String()
	order := &domain.Order{
		ID:          orderID,
		OrderNumber: domain.GenerateOrderNumber(orderID),
		UserID:      userID,
		Status:      domain.StatusPending,
		Subtotal:    totals.Subtotal,
		Discount:    totals.Discount,
		Shipping:    totals.Shipping,
		Total:       totals.Total,
		Items:       orderItems(lines),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if applied != nil {
		code := applied.Code
		order.CouponCode = &code
	}

	// Step 3: the atomic unit. Guard failures mean someone got there first;
	// anything else is fatal but side-effect free.
	if err := s.orders.CommitOrder(ctx, order, lines, applied); err != nil {
		s.carts.Invalidate(userID)
		if errors.Is(err, domain.ErrStockConflict) || errors.Is(err, domain.ErrCouponConflict) {
			s.logger.Info("checkout lost a race, asking for re-sync",
				zap.Uint64("user_id", userID),
				zap.Error(err))
			return nil, &domain.CartConflictError{}
		}
		s.logger.Error("checkout commit failed",
			zap.Uint64("user_id", userID),
			zap.Error(err))
		return nil, &domain.FatalCommitError{Err: err}
	}

	s.carts.Invalidate(userID)
	go s.publishOrderPlaced(context.Background(), order)

	s.logger.Info("order committed",
		zap.String("order_id", order.ID),
		zap.Uint64("user_id", userID),
		zap.Int64("total", order.Total))

	return order, nil
}

func orderItems(lines []domain.CartLine) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for i := range lines {
		items = append(items, domain.OrderItem{
			ShoeID:    lines[i].ShoeID,
			Name:      lines[i].ShoeName,
			Brand:     lines[i].Brand,
			Size:      lines[i].Size,
			Color:     lines[i].Color,
			Quantity:  lines[i].Quantity,
			UnitPrice: lines[i].UnitPrice,
		})
	}
	return items
}

func (s *CheckoutService) publishOrderPlaced(ctx context.Context, order *domain.Order) {
	evt := domain.OrderPlacedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		CreatedAt:   order.CreatedAt,
	}
	if order.CouponCode != nil {
		evt.CouponCode = *order.CouponCode
	}

	if err := s.publisher.Publish(ctx, "order.placed", evt); err != nil {
		s.logger.Error("failed to publish order.placed",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}
