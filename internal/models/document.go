package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind identifies the kind of stock movement a document records.
type DocumentKind string

const (
	DocumentRawEntrance          DocumentKind = "raw_entrance"
	DocumentManufacturedEntrance DocumentKind = "manufactured_entrance"
	DocumentRawOut               DocumentKind = "raw_out"
	DocumentManufacturedOut      DocumentKind = "manufactured_out"
	DocumentWaste                DocumentKind = "waste"
	DocumentStocktaking          DocumentKind = "stocktaking"
)

func (k DocumentKind) String() string {
	return string(k)
}

// IsValid reports whether k is a known document kind.
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentRawEntrance, DocumentManufacturedEntrance, DocumentRawOut,
		DocumentManufacturedOut, DocumentWaste, DocumentStocktaking:
		return true
	}
	return false
}

// IsEntrance reports whether closing the document adds stock.
func (k DocumentKind) IsEntrance() bool {
	return k == DocumentRawEntrance || k == DocumentManufacturedEntrance
}

// IsOut reports whether closing the document issues stock to a consumer.
func (k DocumentKind) IsOut() bool {
	return k == DocumentRawOut || k == DocumentManufacturedOut
}

// Cloneable reports whether documents of this kind may be copied into a new draft.
func (k DocumentKind) Cloneable() bool {
	return k.IsEntrance() || k.IsOut()
}

// Label returns the display label.
func (k DocumentKind) Label() string {
	switch k {
	case DocumentRawEntrance:
		return "إذن إضافة خامات"
	case DocumentManufacturedEntrance:
		return "إذن إضافة مصنعات"
	case DocumentRawOut:
		return "إذن صرف خامات"
	case DocumentManufacturedOut:
		return "إذن صرف مصنعات"
	case DocumentWaste:
		return "تالف"
	case DocumentStocktaking:
		return "جرد"
	default:
		return string(k)
	}
}

// DocumentStatus is the lifecycle state of a stock document.
type DocumentStatus string

const (
	DocumentStatusDraft  DocumentStatus = "draft"
	DocumentStatusClosed DocumentStatus = "closed"
)

func (s DocumentStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known document status.
func (s DocumentStatus) IsValid() bool {
	return s == DocumentStatusDraft || s == DocumentStatusClosed
}

// StockDocument is an entrance, out, waste or stocktaking sheet. Its inventory
// effect is applied exactly once, when it is closed.
type StockDocument struct {
	ID           string          `json:"id"`
	Kind         DocumentKind    `json:"kind"`
	Status       DocumentStatus  `json:"status"`
	Counterparty string          `json:"counterparty,omitempty"` // supplier or consumer
	ProductType  *ProductType    `json:"product_type,omitempty"` // waste and stocktaking scope
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes,omitempty"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Items []*DocumentItem `json:"items"`
}

// IsClosed reports whether the document has been applied to inventory.
func (d *StockDocument) IsClosed() bool {
	return d.Status == DocumentStatusClosed
}

// DocumentItem is one product line. StockQuantity and RealQuantity are only
// meaningful on stocktaking sheets.
type DocumentItem struct {
	ID            string          `json:"id"`
	DocumentID    string          `json:"document_id"`
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Total         decimal.Decimal `json:"total"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	RealQuantity  decimal.Decimal `json:"real_quantity"`
	Position      int             `json:"position"`

	// Joined fields
	Product *Product `json:"product,omitempty"`
}

// Variance is the stocktaking difference between counted and recorded stock.
func (i *DocumentItem) Variance() decimal.Decimal {
	return i.RealQuantity.Sub(i.StockQuantity)
}

// DocumentFilter defines filtering options for document queries.
type DocumentFilter struct {
	Kind   *DocumentKind
	Status *DocumentStatus
}
