package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"shoestore/internal/domain"
	"shoestore/internal/mocks"
	"shoestore/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type checkoutFixture struct {
	cartRepo   *mocks.MockCartRepository
	ledger     *mocks.MockStockReader
	couponRepo *mocks.MockCouponRepository
	orderRepo  *mocks.MockOrderRepository
	publisher  *mocks.MockPublisher
	shipping   pricing.TieredRule
	service    *CheckoutService
}

func newCheckoutFixture(stored []domain.CartLine) *checkoutFixture {
	f := &checkoutFixture{
		cartRepo:   new(mocks.MockCartRepository),
		ledger:     new(mocks.MockStockReader),
		couponRepo: new(mocks.MockCouponRepository),
		orderRepo:  new(mocks.MockOrderRepository),
		publisher:  new(mocks.MockPublisher),
		shipping:   pricing.TieredRule{Flat: 99, FreeOver: 5000},
	}
	f.cartRepo.On("LoadCartWithStock", mock.Anything, TestUserID).Return(stored, nil)

	logger := zap.NewNop()
	carts := NewCartManager(f.cartRepo, f.ledger, new(mocks.MockCatalogClient), logger)
	coupons := NewCouponValidator(f.couponRepo, logger)
	f.service = NewCheckoutService(carts, f.orderRepo, f.ledger, coupons, f.publisher, f.shipping, logger)
	return f
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(nil)

	_, err := f.service.Commit(context.Background(), TestUserID, "")

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	f.orderRepo.AssertNotCalled(t, "CommitOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_Success(t *testing.T) {
	lines := []domain.CartLine{
		CreateMockLine(1, TestShoeID, TestSize, TestColor, 2, TestUnitPrice, 10),
		CreateMockLine(2, 11, "10", "white", 1, 500, 4),
	}
	f := newCheckoutFixture(lines)

	f.ledger.On("Available", mock.Anything, TestShoeID, TestSize).Return(int64(10), nil)
	f.ledger.On("Available", mock.Anything, uint64(11), "10").Return(int64(4), nil)
	f.orderRepo.On("CommitOrder", mock.Anything, mock.AnythingOfType("*domain.Order"), mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, "order.placed", mock.Anything).Return(nil).Maybe()

	order, err := f.service.Commit(context.Background(), TestUserID, "")

	assert.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Len(t, order.Items, 2)

	// The committed totals are the pricing engine's output, verbatim.
	expected := pricing.Price(lines, nil, f.shipping)
	assert.Equal(t, expected.Subtotal, order.Subtotal)
	assert.Equal(t, expected.Discount, order.Discount)
	assert.Equal(t, expected.Shipping, order.Shipping)
	assert.Equal(t, expected.Total, order.Total)

	time.Sleep(100 * time.Millisecond)
	f.orderRepo.AssertExpectations(t)
}

func TestCheckout_SuccessWithCoupon(t *testing.T) {
	lines := []domain.CartLine{CreateMockLine(1, TestShoeID, TestSize, TestColor, 2, TestUnitPrice, 10)}
	f := newCheckoutFixture(lines)

	f.ledger.On("Available", mock.Anything, TestShoeID, TestSize).Return(int64(10), nil)
	f.couponRepo.On("FindByCode", mock.Anything, "SAVE10").Return(CreateMockCoupon("SAVE10", domain.DiscountPercentage, 10), nil)
	f.orderRepo.On("CommitOrder", mock.Anything, mock.AnythingOfType("*domain.Order"), mock.Anything, mock.AnythingOfType("*domain.AppliedCoupon")).Return(nil)
	f.publisher.On("Publish", mock.Anything, "order.placed", mock.Anything).Return(nil).Maybe()

	order, err := f.service.Commit(context.Background(), TestUserID, "save10")

	assert.NoError(t, err)
	assert.Equal(t, int64(2000), order.Subtotal)
	assert.Equal(t, int64(200), order.Discount)
	assert.Equal(t, int64(1899), order.Total)
	assert.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)

	time.Sleep(100 * time.Millisecond)
	f.orderRepo.AssertExpectations(t)
}

func TestCheckout_ReValidationReportsEveryShortage(t *testing.T) {
	// Two lines raced other shoppers; both shortages must be reported and
	// nothing committed.
	lines := []domain.CartLine{
		CreateMockLine(1, TestShoeID, TestSize, TestColor, 2, TestUnitPrice, 10),
		CreateMockLine(2, 11, "10", "white", 3, 500, 4),
	}
	f := newCheckoutFixture(lines)

	f.ledger.On("Available", mock.Anything, TestShoeID, TestSize).Return(int64(0), nil)
	f.ledger.On("Available", mock.Anything, uint64(11), "10").Return(int64(1), nil)

	_, err := f.service.Commit(context.Background(), TestUserID, "")

	var conflict *domain.CartConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Len(t, conflict.Shortages, 2)
	assert.Equal(t, int64(0), conflict.Shortages[0].Available)
	assert.Equal(t, int64(2), conflict.Shortages[0].Requested)
	assert.Equal(t, int64(1), conflict.Shortages[1].Available)
	f.orderRepo.AssertNotCalled(t, "CommitOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_CouponRejectionAborts(t *testing.T) {
	lines := []domain.CartLine{CreateMockLine(1, TestShoeID, TestSize, TestColor, 2, TestUnitPrice, 10)}
	f := newCheckoutFixture(lines)

	expired := CreateMockCoupon("GONE", domain.DiscountPercentage, 10)
	expired.ExpiresAt = TimePtr(time.Now().Add(-time.Hour))

	f.ledger.On("Available", mock.Anything, TestShoeID, TestSize).Return(int64(10), nil)
	f.couponRepo.On("FindByCode", mock.Anything, "GONE").Return(expired, nil)

	_, err := f.service.Commit(context.Background(), TestUserID, "GONE")

	var rej *domain.CouponRejectionError
	assert.ErrorAs(t, err, &rej)
	assert.Equal(t, domain.CouponExpired, rej.Reason)
	f.orderRepo.AssertNotCalled(t, "CommitOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_StockGuardLossIsConflict(t *testing.T) {
	// Both shoppers passed the cart-level check; the transaction guard is
	// the backstop and the loser gets a conflict, not a fatal error.
	lines := []domain.CartLine{CreateMockLine(1, TestShoeID, TestSize, TestColor, 1, TestUnitPrice, 1)}
	f := newCheckoutFixture(lines)

	f.ledger.On("Available", mock.Anything, TestShoeID, TestSize).Return(int64(1), nil)
	f.orderRepo.On("CommitOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrStockConflict)

	_, err := f.service.Commit(context.Background(), TestUserID, "")

	var conflict *domain.CartConflictError
	assert.ErrorAs(t, err, &conflict)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_StorageFailureIsFatalAndSideEffectFree(t *testing.T) {
	lines := []domain.CartLine{CreateMockLine(1, TestShoeID, TestSize, TestColor, 1, TestUnitPrice, 5)}
	f := newCheckoutFixture(lines)

	f.ledger.On("Available", mock.Anything, TestShoeID, TestSize).Return(int64(5), nil)
	f.orderRepo.On("CommitOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("tx aborted"))

	_, err := f.service.Commit(context.Background(), TestUserID, "")

	var fatal *domain.FatalCommitError
	assert.ErrorAs(t, err, &fatal)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_LedgerFailureBlocksCommit(t *testing.T) {
	lines := []domain.CartLine{CreateMockLine(1, TestShoeID, TestSize, TestColor, 1, TestUnitPrice, 5)}
	f := newCheckoutFixture(lines)

	f.ledger.On("Available", mock.Anything, TestShoeID, TestSize).Return(int64(0), errors.New("ledger unreachable"))

	_, err := f.service.Commit(context.Background(), TestUserID, "")

	assert.Error(t, err)
	f.orderRepo.AssertNotCalled(t, "CommitOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
