package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a manufacturing order.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusCompleted OrderStatus = "completed"
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusDraft || s == OrderStatusCompleted
}

// Label returns the display label.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusDraft:
		return "مسودة"
	case OrderStatusCompleted:
		return "مكتمل"
	default:
		return string(s)
	}
}

// CanTransitionTo reports whether the order may move from s to next.
// Draft -> Completed is the only transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderStatusDraft && next == OrderStatusCompleted
}

// ManufacturingOrder records one production run of a manufactured product.
type ManufacturingOrder struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Status         OrderStatus     `json:"status"`
	OutputQuantity decimal.Decimal `json:"output_quantity"`
	Notes          string          `json:"notes,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Items []*OrderItem `json:"items"`

	// Joined fields
	Product *Product `json:"product,omitempty"`
}

// IsDraft reports whether the order can still be edited.
func (o *ManufacturingOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// IsCompleted reports whether the order has been completed.
func (o *ManufacturingOrder) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// ItemFor returns the first line item consuming productID, or nil.
func (o *ManufacturingOrder) ItemFor(productID string) *OrderItem {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

// OrderItem is one raw material consumed by an order.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Position  int             `json:"position"`

	// Joined fields
	Product *Product `json:"product,omitempty"`
}

// OrderFilter defines filtering options for order queries.
type OrderFilter struct {
	ProductID *string
	Status    *OrderStatus
}

// OrderList is a paginated list of orders.
type OrderList struct {
	Orders   []*ManufacturingOrder
	Total    int
	Page     int
	PageSize int
}
