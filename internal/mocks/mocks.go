package mocks

import (
	"context"

	"shoestore/internal/domain"
	"shoestore/internal/infra"

	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) LoadCartWithStock(ctx context.Context, userID uint64) ([]domain.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *MockCartRepository) Insert(ctx context.Context, line *domain.CartLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, lineID uint64, quantity int64) error {
	args := m.Called(ctx, lineID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, lineID uint64) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteAll(ctx context.Context, userID uint64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockStockReader struct {
	mock.Mock
}

func (m *MockStockReader) Available(ctx context.Context, shoeID uint64, size string) (int64, error) {
	args := m.Called(ctx, shoeID, size)
	return args.Get(0).(int64), args.Error(1)
}

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CommitOrder(ctx context.Context, order *domain.Order, lines []domain.CartLine, applied *domain.AppliedCoupon) error {
	args := m.Called(ctx, order, lines, applied)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) GetShoeByID(ctx context.Context, id uint64) (*infra.ShoeInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.ShoeInfo), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}
