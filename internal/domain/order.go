package domain

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
// Forward path is pending → processing → shipped → delivered; cancelled is
// reachable from any non-terminal status.
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusShipped
	case StatusShipped:
		return to == StatusDelivered
	}
	return false
}

// Order is the immutable snapshot created at checkout. Line items and totals
// are frozen once written; only the status (and its timeline stamps) changes.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;size:36"`
	OrderNumber string      `json:"orderNumber" gorm:"uniqueIndex;size:40;not null"`
	UserID      uint64      `json:"userId" gorm:"not null;index"`
	Status      OrderStatus `json:"status" gorm:"type:enum('pending','processing','shipped','delivered','cancelled');default:'pending'"`
	Subtotal    int64       `json:"subtotal" gorm:"not null"`
	Discount    int64       `json:"discount" gorm:"not null"`
	Shipping    int64       `json:"shipping" gorm:"not null"`
	Total       int64       `json:"total" gorm:"not null"`
	CouponCode  *string     `json:"couponCode" gorm:"size:64"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	PaidAt      *time.Time `json:"paidAt"`
	ShippedAt   *time.Time `json:"shippedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	CancelledAt *time.Time `json:"cancelledAt"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   string `json:"orderId" gorm:"size:36;index;not null"`
	ShoeID    uint64 `json:"shoeId" gorm:"not null"`
	Name      string `json:"name" gorm:"size:200"`
	Brand     string `json:"brand" gorm:"size:64"`
	Size      string `json:"size" gorm:"size:16"`
	Color     string `json:"color" gorm:"size:32"`
	Quantity  int64  `json:"quantity" gorm:"not null"`
	UnitPrice int64  `json:"unitPrice" gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

// Transition moves the order to a new status, stamping the timeline.
func (o *Order) Transition(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return ErrInvalidTransition
	}
	now := time.Now()
	switch to {
	case StatusProcessing:
		if o.PaidAt == nil {
			o.PaidAt = &now
		}
	case StatusShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case StatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	case StatusCancelled:
		if o.CancelledAt == nil {
			o.CancelledAt = &now
		}
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}

// GenerateOrderNumber builds the human-readable number from the commit time
// and the order's ID, so two commits in the same second cannot collide under
// the unique index.
func GenerateOrderNumber(orderID string) string {
	suffix := orderID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102-150405"), strings.ToUpper(suffix))
}
