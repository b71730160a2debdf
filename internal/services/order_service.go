package services

import (
	"context"

	"shoestore/internal/domain"
	"shoestore/internal/repository"

	"go.uber.org/zap"
)

// OrderService serves committed orders. Orders are frozen snapshots; the
// only mutation is a status transition.
type OrderService struct {
	repo   repository.OrderRepository
	logger *zap.Logger
}

func NewOrderService(repo repository.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// UpdateStatus applies one status transition, rejecting anything the state
// machine does not allow.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	o, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := o.Transition(to); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, o); err != nil {
		return nil, &domain.TransientError{Op: "order status update", Err: err}
	}

	s.logger.Info("order status updated",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)))

	return o, nil
}
