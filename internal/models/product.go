package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType distinguishes raw materials from manufactured goods.
type ProductType string

const (
	ProductTypeRaw          ProductType = "raw"
	ProductTypeManufactured ProductType = "manufactured"
)

func (t ProductType) String() string {
	return string(t)
}

// IsValid reports whether t is a known product type.
func (t ProductType) IsValid() bool {
	return t == ProductTypeRaw || t == ProductTypeManufactured
}

// Label returns the display label used on printed documents.
func (t ProductType) Label() string {
	switch t {
	case ProductTypeRaw:
		return "خام"
	case ProductTypeManufactured:
		return "مصنع"
	default:
		return string(t)
	}
}

// ProductUnit is the unit of measure a product is counted in.
type ProductUnit string

const (
	UnitKilogram   ProductUnit = "kg"
	UnitGram       ProductUnit = "g"
	UnitLiter      ProductUnit = "l"
	UnitMilliliter ProductUnit = "ml"
	UnitPiece      ProductUnit = "piece"
	UnitBox        ProductUnit = "box"
	UnitPackage    ProductUnit = "package"
)

func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether u is a known unit.
func (u ProductUnit) IsValid() bool {
	switch u {
	case UnitKilogram, UnitGram, UnitLiter, UnitMilliliter, UnitPiece, UnitBox, UnitPackage:
		return true
	}
	return false
}

// Product is a raw material or a manufactured good. Type never changes after creation.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      ProductType     `json:"type"`
	Unit      ProductUnit     `json:"unit"`
	Barcode   *string         `json:"barcode,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	MinStock  int             `json:"min_stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Joined fields
	Inventory *Inventory `json:"inventory,omitempty"`
}

// IsRaw reports whether the product is a raw material.
func (p *Product) IsRaw() bool {
	return p.Type == ProductTypeRaw
}

// IsManufactured reports whether the product is a manufactured good.
func (p *Product) IsManufactured() bool {
	return p.Type == ProductTypeManufactured
}

// IsBelowMinStock reports whether the joined inventory is under the minimum.
func (p *Product) IsBelowMinStock() bool {
	if p.Inventory == nil {
		return false
	}
	return p.Inventory.Quantity.LessThan(decimal.NewFromInt(int64(p.MinStock)))
}

// Inventory is the on-hand quantity of one product.
type Inventory struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductFilter defines filtering options for product queries.
type ProductFilter struct {
	Type       *ProductType
	NameSearch string
	LowStock   bool
}

// ProductList is a paginated list of products.
type ProductList struct {
	Products []*Product
	Total    int
	Page     int
	PageSize int
}
