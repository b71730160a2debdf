package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"pending skips to shipped", StatusPending, StatusShipped, false},
		{"pending skips to delivered", StatusPending, StatusDelivered, false},
		{"backwards", StatusShipped, StatusProcessing, false},
		{"cancel pending", StatusPending, StatusCancelled, true},
		{"cancel processing", StatusProcessing, StatusCancelled, true},
		{"cancel shipped", StatusShipped, StatusCancelled, true},
		{"cancel delivered", StatusDelivered, StatusCancelled, false},
		{"resurrect cancelled", StatusCancelled, StatusProcessing, false},
		{"delivered is final", StatusDelivered, StatusShipped, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrder_TransitionStampsTimeline(t *testing.T) {
	o := &Order{Status: StatusPending}

	assert.NoError(t, o.Transition(StatusProcessing))
	assert.NotNil(t, o.PaidAt)
	assert.Nil(t, o.ShippedAt)

	assert.NoError(t, o.Transition(StatusShipped))
	assert.NotNil(t, o.ShippedAt)

	assert.NoError(t, o.Transition(StatusDelivered))
	assert.NotNil(t, o.DeliveredAt)
	assert.True(t, o.Status.IsTerminal())

	assert.ErrorIs(t, o.Transition(StatusCancelled), ErrInvalidTransition)
	assert.Nil(t, o.CancelledAt)
}

func TestGenerateOrderNumber_DistinctForDistinctOrders(t *testing.T) {
	// Two commits in the same second must still produce distinct numbers.
	a := GenerateOrderNumber("0f8fad5b-d9cb-469f-a165-70867728950e")
	b := GenerateOrderNumber("7c9e6679-7425-40de-944b-e07fc1f90ae7")

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "0F8FAD5B")
	assert.Contains(t, b, "7C9E6679")
}

func TestOrder_CancelStampsOnce(t *testing.T) {
	o := &Order{Status: StatusProcessing}

	assert.NoError(t, o.Transition(StatusCancelled))
	first := o.CancelledAt
	assert.NotNil(t, first)

	assert.ErrorIs(t, o.Transition(StatusCancelled), ErrInvalidTransition)
	assert.Equal(t, first, o.CancelledAt)
}
