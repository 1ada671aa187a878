package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/models"
)

// DocumentRepository handles stock document data access.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `
	id, kind, status, counterparty, product_type, total, notes, closed_at, created_at, updated_at`

// Create inserts a document and its items.
func (r *DocumentRepository) Create(ctx context.Context, tx *sql.Tx, d *models.StockDocument) error {
	query := `
		INSERT INTO stock_documents (
			id, kind, status, counterparty, product_type, total, notes, closed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ts := now()
	d.CreatedAt = ts
	d.UpdatedAt = ts

	_, err := conn(r.db, tx).ExecContext(ctx, query,
		d.ID,
		d.Kind,
		d.Status,
		nullableString(d.Counterparty),
		nullableProductType(d.ProductType),
		d.Total,
		nullableString(d.Notes),
		nullableTime(d.ClosedAt),
		formatTime(ts),
		formatTime(ts),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	return r.insertItems(ctx, tx, d.ID, d.Items)
}

func (r *DocumentRepository) insertItems(ctx context.Context, tx *sql.Tx, documentID string, items []*models.DocumentItem) error {
	query := `
		INSERT INTO stock_document_items (
			id, document_id, product_id, quantity, price, total, stock_quantity, real_quantity, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	execer := conn(r.db, tx)
	for i, item := range items {
		item.DocumentID = documentID
		item.Position = i
		if _, err := execer.ExecContext(ctx, query,
			item.ID, documentID, item.ProductID, item.Quantity, item.Price, item.Total,
			item.StockQuantity, item.RealQuantity, i,
		); err != nil {
			return fmt.Errorf("inserting document item: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a document with its items.
func (r *DocumentRepository) GetByID(ctx context.Context, tx *sql.Tx, id string) (*models.StockDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM stock_documents WHERE id = ?`

	d, err := scanDocument(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, tx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// List retrieves document headers, newest first.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter, page models.Pagination) ([]*models.StockDocument, int, error) {
	var conditions []string
	var args []any

	if filter.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, *filter.Kind)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stock_documents "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}

	query := `SELECT ` + documentColumns + ` FROM stock_documents ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.StockDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

// UpdateDraft saves the header and items of a draft document.
func (r *DocumentRepository) UpdateDraft(ctx context.Context, tx *sql.Tx, d *models.StockDocument) error {
	query := `
		UPDATE stock_documents SET counterparty = ?, product_type = ?, total = ?, notes = ?, updated_at = ?
		WHERE id = ? AND status = ?`

	d.UpdatedAt = now()
	res, err := conn(r.db, tx).ExecContext(ctx, query,
		nullableString(d.Counterparty), nullableProductType(d.ProductType), d.Total,
		nullableString(d.Notes), formatTime(d.UpdatedAt), d.ID, models.DocumentStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if err := checkAffected(res, fmt.Errorf("draft document %s: %w", d.ID, ErrNotFound)); err != nil {
		return err
	}

	if _, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM stock_document_items WHERE document_id = ?`, d.ID); err != nil {
		return fmt.Errorf("deleting document items: %w", err)
	}
	return r.insertItems(ctx, tx, d.ID, d.Items)
}

// MarkClosed closes a draft document and records its final total.
func (r *DocumentRepository) MarkClosed(ctx context.Context, tx *sql.Tx, id string, total decimal.Decimal, at time.Time) error {
	query := `
		UPDATE stock_documents SET status = ?, total = ?, closed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`

	res, err := conn(r.db, tx).ExecContext(ctx, query,
		models.DocumentStatusClosed, total, formatTime(at), formatTime(now()), id, models.DocumentStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("closing document: %w", err)
	}
	return checkAffected(res, fmt.Errorf("draft document %s: %w", id, ErrNotFound))
}

// DeleteDraft removes a draft document and its items.
func (r *DocumentRepository) DeleteDraft(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := conn(r.db, tx).ExecContext(ctx,
		`DELETE FROM stock_documents WHERE id = ? AND status = ?`, id, models.DocumentStatusDraft)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return checkAffected(res, fmt.Errorf("draft document %s: %w", id, ErrNotFound))
}

func (r *DocumentRepository) loadItems(ctx context.Context, tx *sql.Tx, d *models.StockDocument) error {
	query := `
		SELECT it.id, it.document_id, it.product_id, it.quantity, it.price, it.total,
			it.stock_quantity, it.real_quantity, it.position, p.name, p.type, p.unit
		FROM stock_document_items it
		JOIN products p ON p.id = it.product_id
		WHERE it.document_id = ?
		ORDER BY it.position`

	rows, err := conn(r.db, tx).QueryContext(ctx, query, d.ID)
	if err != nil {
		return fmt.Errorf("querying document items: %w", err)
	}
	defer rows.Close()

	d.Items = []*models.DocumentItem{}
	for rows.Next() {
		var item models.DocumentItem
		var product models.Product
		if err := rows.Scan(
			&item.ID, &item.DocumentID, &item.ProductID, &item.Quantity, &item.Price, &item.Total,
			&item.StockQuantity, &item.RealQuantity, &item.Position,
			&product.Name, &product.Type, &product.Unit,
		); err != nil {
			return fmt.Errorf("scanning document item: %w", err)
		}
		product.ID = item.ProductID
		item.Product = &product
		d.Items = append(d.Items, &item)
	}
	return rows.Err()
}

func scanDocument(row rowScanner) (*models.StockDocument, error) {
	var d models.StockDocument
	var counterparty, productType, notes, closedAt sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&d.ID, &d.Kind, &d.Status, &counterparty, &productType, &d.Total, &notes, &closedAt,
		&createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	d.Counterparty = counterparty.String
	if productType.Valid {
		pt := models.ProductType(productType.String)
		d.ProductType = &pt
	}
	d.Notes = notes.String
	d.ClosedAt = parseNullTime(closedAt)
	d.CreatedAt = parseTime(createdStr)
	d.UpdatedAt = parseTime(updatedStr)

	return &d, nil
}

func nullableProductType(pt *models.ProductType) sql.NullString {
	if pt == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*pt), Valid: true}
}
