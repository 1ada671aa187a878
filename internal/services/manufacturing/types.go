package manufacturing

import "github.com/shopspring/decimal"

// OrderInput contains data for creating or editing a draft order.
type OrderInput struct {
	ProductID      string          `json:"product_id"`
	OutputQuantity decimal.Decimal `json:"output_quantity"`
	Notes          string          `json:"notes"`
	Items          []ItemInput     `json:"items"`
}

// ItemInput is one raw material line of an order.
type ItemInput struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}
