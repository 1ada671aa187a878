package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/models"
)

// FixtureProduct creates a raw material with sensible defaults.
func FixtureProduct(overrides ...func(*models.Product)) *models.Product {
	id := uuid.New().String()
	now := time.Now().UTC()

	product := &models.Product{
		ID:        id,
		Name:      "Flour " + id[:8],
		Type:      models.ProductTypeRaw,
		Unit:      models.UnitKilogram,
		Price:     decimal.NewFromInt(20),
		Cost:      decimal.NewFromInt(15),
		MinStock:  5,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(product)
	}

	return product
}

// FixtureRawMaterial creates a named raw material.
func FixtureRawMaterial(name string, overrides ...func(*models.Product)) *models.Product {
	return FixtureProduct(append([]func(*models.Product){
		func(p *models.Product) {
			p.Name = name
		},
	}, overrides...)...)
}

// FixtureManufactured creates a manufactured product.
func FixtureManufactured(overrides ...func(*models.Product)) *models.Product {
	return FixtureProduct(append([]func(*models.Product){
		func(p *models.Product) {
			p.Name = "Bread " + p.ID[:8]
			p.Type = models.ProductTypeManufactured
			p.Unit = models.UnitPiece
			p.Price = decimal.NewFromInt(50)
			p.Cost = decimal.Zero
		},
	}, overrides...)...)
}

// FixtureInventory creates an inventory row for a product.
func FixtureInventory(productID string, qty decimal.Decimal) *models.Inventory {
	return &models.Inventory{
		ID:        uuid.New().String(),
		ProductID: productID,
		Quantity:  qty,
	}
}

// FixtureOrderItem creates an order line consuming qty of productID.
func FixtureOrderItem(productID string, qty decimal.Decimal) *models.OrderItem {
	return &models.OrderItem{
		ID:        uuid.New().String(),
		ProductID: productID,
		Quantity:  qty,
	}
}

// FixtureOrder creates a draft order of productID with the given output.
func FixtureOrder(productID string, output decimal.Decimal, items []*models.OrderItem, overrides ...func(*models.ManufacturingOrder)) *models.ManufacturingOrder {
	now := time.Now().UTC()

	order := &models.ManufacturingOrder{
		ID:             uuid.New().String(),
		ProductID:      productID,
		Status:         models.OrderStatusDraft,
		OutputQuantity: output,
		Items:          items,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, override := range overrides {
		override(order)
	}

	return order
}

// FixtureCompletedOrder creates a completed order finished at completedAt.
func FixtureCompletedOrder(productID string, output decimal.Decimal, items []*models.OrderItem, completedAt time.Time, overrides ...func(*models.ManufacturingOrder)) *models.ManufacturingOrder {
	return FixtureOrder(productID, output, items, append([]func(*models.ManufacturingOrder){
		func(o *models.ManufacturingOrder) {
			o.Status = models.OrderStatusCompleted
			o.CompletedAt = &completedAt
		},
	}, overrides...)...)
}

// FixtureDocumentItem creates a document line.
func FixtureDocumentItem(productID string, qty, price decimal.Decimal) *models.DocumentItem {
	return &models.DocumentItem{
		ID:        uuid.New().String(),
		ProductID: productID,
		Quantity:  qty,
		Price:     price,
		Total:     qty.Mul(price),
	}
}

// FixtureDocument creates a draft stock document of the given kind.
func FixtureDocument(kind models.DocumentKind, items []*models.DocumentItem, overrides ...func(*models.StockDocument)) *models.StockDocument {
	now := time.Now().UTC()

	doc := &models.StockDocument{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    models.DocumentStatusDraft,
		Total:     decimal.Zero,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(doc)
	}

	return doc
}

// Dec parses a decimal literal, panicking on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// StringPtr returns a pointer to a string value.
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to a time value.
func TimePtr(t time.Time) *time.Time {
	return &t
}
