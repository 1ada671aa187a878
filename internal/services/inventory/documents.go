package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services"
)

// ============================================================================
// DOCUMENTS
// ============================================================================

// CreateDocument stores a new draft stock document.
func (s *Service) CreateDocument(ctx context.Context, input DocumentInput) (*models.StockDocument, error) {
	doc := &models.StockDocument{
		ID:     s.idGenerator.NewID(),
		Status: models.DocumentStatusDraft,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.applyDocumentInput(ctx, tx, doc, input); err != nil {
			return err
		}
		return s.documents.Create(ctx, tx, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	return s.documents.GetByID(ctx, nil, doc.ID)
}

// GetDocument retrieves a document with its items.
func (s *Service) GetDocument(ctx context.Context, id string) (*models.StockDocument, error) {
	return s.documents.GetByID(ctx, nil, id)
}

// ListDocuments retrieves document headers and the total count.
func (s *Service) ListDocuments(ctx context.Context, filter models.DocumentFilter, page models.Pagination) ([]*models.StockDocument, int, error) {
	return s.documents.List(ctx, filter, page)
}

// UpdateDocument replaces the header and items of a draft. The kind of a
// document never changes.
func (s *Service) UpdateDocument(ctx context.Context, id string, input DocumentInput) (*models.StockDocument, error) {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		doc, err := s.loadDraft(ctx, tx, id)
		if err != nil {
			return err
		}
		input.Kind = doc.Kind
		if err := s.applyDocumentInput(ctx, tx, doc, input); err != nil {
			return err
		}
		return s.documents.UpdateDraft(ctx, tx, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}

	return s.documents.GetByID(ctx, nil, id)
}

// DeleteDocument removes a draft document.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.loadDraft(ctx, tx, id); err != nil {
			return err
		}
		return s.documents.DeleteDraft(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// CloseDocument applies a draft document to inventory and closes it.
//
// Entrances and outs create missing inventory rows before adjusting them.
// Waste and stocktaking skip products that have no inventory row.
func (s *Service) CloseDocument(ctx context.Context, id string) (*models.StockDocument, error) {
	var doc *models.StockDocument

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		doc, err = s.loadDraft(ctx, tx, id)
		if err != nil {
			return err
		}

		for _, item := range doc.Items {
			if err := s.applyItem(ctx, tx, doc.Kind, item); err != nil {
				return fmt.Errorf("applying %s: %w", item.ProductID, err)
			}
		}

		doc.Total = documentTotal(doc.Kind, doc.Items)
		return s.documents.MarkClosed(ctx, tx, doc.ID, doc.Total, s.clock.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("closing document: %w", err)
	}

	s.logger.Info("document closed",
		"document_id", doc.ID,
		"kind", doc.Kind,
		"items", len(doc.Items),
		"total", doc.Total.String(),
	)
	return s.documents.GetByID(ctx, nil, id)
}

// CloneDocument copies an entrance or out document into a new draft.
func (s *Service) CloneDocument(ctx context.Context, id string) (*models.StockDocument, error) {
	var clone *models.StockDocument

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		src, err := s.documents.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !src.Kind.Cloneable() {
			return fmt.Errorf("%w: %s documents cannot be cloned", services.ErrInvalidInput, src.Kind)
		}

		clone = &models.StockDocument{
			ID:           s.idGenerator.NewID(),
			Kind:         src.Kind,
			Status:       models.DocumentStatusDraft,
			Counterparty: src.Counterparty,
			ProductType:  src.ProductType,
			Total:        src.Total,
			Notes:        src.Notes,
		}
		for _, item := range src.Items {
			clone.Items = append(clone.Items, &models.DocumentItem{
				ID:        s.idGenerator.NewID(),
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Total:     item.Total,
			})
		}
		return s.documents.Create(ctx, tx, clone)
	})
	if err != nil {
		return nil, fmt.Errorf("cloning document: %w", err)
	}

	return s.documents.GetByID(ctx, nil, clone.ID)
}

func (s *Service) loadDraft(ctx context.Context, tx *sql.Tx, id string) (*models.StockDocument, error) {
	doc, err := s.documents.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if doc.IsClosed() {
		return nil, fmt.Errorf("document %s: %w", id, services.ErrDocumentClosed)
	}
	return doc, nil
}

func (s *Service) applyItem(ctx context.Context, tx *sql.Tx, kind models.DocumentKind, item *models.DocumentItem) error {
	var delta decimal.Decimal
	switch {
	case kind.IsEntrance():
		delta = item.Quantity
	case kind.IsOut(), kind == models.DocumentWaste:
		delta = item.Quantity.Neg()
	case kind == models.DocumentStocktaking:
		delta = item.Variance()
	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}

	if kind.IsEntrance() || kind.IsOut() {
		if _, err := s.products.FirstOrCreateInventory(ctx, tx, item.ProductID, s.idGenerator.NewID()); err != nil {
			return err
		}
	}

	_, err := s.products.AdjustInventory(ctx, tx, item.ProductID, delta)
	return err
}

// documentTotal prices a document: stocktaking sheets value the counted
// variance, everything else the moved quantity.
func documentTotal(kind models.DocumentKind, items []*models.DocumentItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(itemTotal(kind, item))
	}
	return total
}

func itemTotal(kind models.DocumentKind, item *models.DocumentItem) decimal.Decimal {
	if kind == models.DocumentStocktaking {
		return item.Variance().Mul(item.Price)
	}
	return item.Quantity.Mul(item.Price)
}

// requiredType returns the product type every line of a document must have,
// or nil when any type is allowed.
func requiredType(kind models.DocumentKind, scope *models.ProductType) *models.ProductType {
	raw, manufactured := models.ProductTypeRaw, models.ProductTypeManufactured
	switch kind {
	case models.DocumentRawEntrance, models.DocumentRawOut:
		return &raw
	case models.DocumentManufacturedEntrance, models.DocumentManufacturedOut:
		return &manufactured
	default:
		return scope
	}
}

func (s *Service) applyDocumentInput(ctx context.Context, tx *sql.Tx, doc *models.StockDocument, input DocumentInput) error {
	var errs []error

	if !input.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("unknown document kind %q", input.Kind))
	}
	if input.ProductType != nil && !input.ProductType.IsValid() {
		errs = append(errs, fmt.Errorf("unknown product type %q", *input.ProductType))
	}

	ids := make([]string, 0, len(input.Items))
	seen := make(map[string]bool, len(input.Items))
	for i, item := range input.Items {
		if seen[item.ProductID] {
			errs = append(errs, fmt.Errorf("item %d: product listed twice", i+1))
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)

		if item.Price.IsNegative() {
			errs = append(errs, fmt.Errorf("item %d: price must not be negative", i+1))
		}
		if input.Kind == models.DocumentStocktaking {
			if item.RealQuantity.IsNegative() {
				errs = append(errs, fmt.Errorf("item %d: counted quantity must not be negative", i+1))
			}
		} else if !item.Quantity.IsPositive() {
			errs = append(errs, fmt.Errorf("item %d: quantity must be greater than zero", i+1))
		}
	}

	products, err := s.products.GetByIDs(ctx, tx, ids)
	if err != nil {
		return err
	}

	want := requiredType(input.Kind, input.ProductType)
	for i, item := range input.Items {
		p := products[item.ProductID]
		if p == nil {
			errs = append(errs, fmt.Errorf("item %d: product %s does not exist", i+1, item.ProductID))
			continue
		}
		if want != nil && p.Type != *want {
			errs = append(errs, fmt.Errorf("item %d: %s is not %s", i+1, p.Name, *want))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", services.ErrInvalidInput, errors.Join(errs...))
	}

	doc.Kind = input.Kind
	doc.Counterparty = input.Counterparty
	doc.ProductType = input.ProductType
	doc.Notes = input.Notes
	doc.Items = make([]*models.DocumentItem, 0, len(input.Items))

	for _, in := range input.Items {
		item := &models.DocumentItem{
			ID:            s.idGenerator.NewID(),
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			Price:         in.Price,
			StockQuantity: decimal.Zero,
			RealQuantity:  decimal.Zero,
		}
		if input.Kind == models.DocumentStocktaking {
			item.Quantity = decimal.Zero
			item.RealQuantity = in.RealQuantity
			switch {
			case in.StockQuantity != nil:
				item.StockQuantity = *in.StockQuantity
			case products[in.ProductID].Inventory != nil:
				item.StockQuantity = products[in.ProductID].Inventory.Quantity
			}
		}
		item.Total = itemTotal(input.Kind, item)
		doc.Items = append(doc.Items, item)
	}
	doc.Total = documentTotal(doc.Kind, doc.Items)

	return nil
}
