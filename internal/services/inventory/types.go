package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/models"
)

// ProductInput contains data for creating or updating a product.
type ProductInput struct {
	Name     string             `json:"name"`
	Type     models.ProductType `json:"type"`
	Unit     models.ProductUnit `json:"unit"`
	Barcode  *string            `json:"barcode,omitempty"`
	Price    decimal.Decimal    `json:"price"`
	Cost     decimal.Decimal    `json:"cost"`
	MinStock int                `json:"min_stock"`
}

// DocumentInput contains data for creating or editing a draft stock document.
type DocumentInput struct {
	Kind         models.DocumentKind `json:"kind"`
	Counterparty string              `json:"counterparty"`
	ProductType  *models.ProductType `json:"product_type,omitempty"`
	Notes        string              `json:"notes"`
	Items        []DocumentItemInput `json:"items"`
}

// DocumentItemInput is one product line. For stocktaking sheets a nil
// StockQuantity is filled from current inventory.
type DocumentItemInput struct {
	ProductID     string           `json:"product_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Price         decimal.Decimal  `json:"price"`
	StockQuantity *decimal.Decimal `json:"stock_quantity,omitempty"`
	RealQuantity  decimal.Decimal  `json:"real_quantity"`
}
