package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habibGamal/preparation-system/internal/models"
)

// OrderRepository handles manufacturing order data access.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	o.id, o.product_id, o.status, o.output_quantity, o.notes, o.completed_at,
	o.created_at, o.updated_at, p.name, p.type, p.unit`

// Create inserts an order and its items.
func (r *OrderRepository) Create(ctx context.Context, tx *sql.Tx, o *models.ManufacturingOrder) error {
	query := `
		INSERT INTO manufacturing_orders (
			id, product_id, status, output_quantity, notes, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	ts := now()
	o.CreatedAt = ts
	o.UpdatedAt = ts

	_, err := conn(r.db, tx).ExecContext(ctx, query,
		o.ID,
		o.ProductID,
		o.Status,
		o.OutputQuantity,
		nullableString(o.Notes),
		nullableTime(o.CompletedAt),
		formatTime(ts),
		formatTime(ts),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return r.insertItems(ctx, tx, o.ID, o.Items)
}

func (r *OrderRepository) insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []*models.OrderItem) error {
	query := `
		INSERT INTO manufacturing_order_items (id, order_id, product_id, quantity, position)
		VALUES (?, ?, ?, ?, ?)`

	execer := conn(r.db, tx)
	for i, item := range items {
		item.OrderID = orderID
		item.Position = i
		if _, err := execer.ExecContext(ctx, query, item.ID, orderID, item.ProductID, item.Quantity, i); err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, tx *sql.Tx, id string) (*models.ManufacturingOrder, error) {
	query := `SELECT ` + orderColumns + `
		FROM manufacturing_orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.id = ?`

	o, err := scanOrder(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, tx, []*models.ManufacturingOrder{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// List retrieves orders with filtering and pagination, newest first.
// Items are loaded for the returned page.
func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter, page models.Pagination) (*models.OrderList, error) {
	var conditions []string
	var args []any

	if filter.ProductID != nil {
		conditions = append(conditions, "o.product_id = ?")
		args = append(args, *filter.ProductID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "o.status = ?")
		args = append(args, *filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM manufacturing_orders o "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM manufacturing_orders o
		JOIN products p ON p.id = o.product_id
		` + where + `
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT ? OFFSET ?`
	args = append(args, page.Limit(), page.Offset())

	orders, err := r.queryOrders(ctx, nil, query, args...)
	if err != nil {
		return nil, err
	}

	return &models.OrderList{Orders: orders, Total: total, Page: page.Page, PageSize: page.Limit()}, nil
}

// FindCompleted returns up to limit completed orders of a product, most
// recently completed first, with items loaded.
func (r *OrderRepository) FindCompleted(ctx context.Context, tx *sql.Tx, productID string, limit int) ([]*models.ManufacturingOrder, error) {
	query := `SELECT ` + orderColumns + `
		FROM manufacturing_orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.product_id = ? AND o.status = ?
		ORDER BY o.completed_at DESC, o.id DESC
		LIMIT ?`

	return r.queryOrders(ctx, tx, query, productID, models.OrderStatusCompleted, limit)
}

// CountCompleted returns the number of completed orders of a product.
func (r *OrderRepository) CountCompleted(ctx context.Context, tx *sql.Tx, productID string) (int, error) {
	query := `SELECT COUNT(*) FROM manufacturing_orders WHERE product_id = ? AND status = ?`

	var n int
	if err := conn(r.db, tx).QueryRowContext(ctx, query, productID, models.OrderStatusCompleted).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting completed orders: %w", err)
	}
	return n, nil
}

// UpdateDraft saves output, notes and items of a draft order. Completed
// orders are left untouched and reported as not found.
func (r *OrderRepository) UpdateDraft(ctx context.Context, tx *sql.Tx, o *models.ManufacturingOrder) error {
	query := `
		UPDATE manufacturing_orders SET output_quantity = ?, notes = ?, updated_at = ?
		WHERE id = ? AND status = ?`

	o.UpdatedAt = now()
	res, err := conn(r.db, tx).ExecContext(ctx, query,
		o.OutputQuantity, nullableString(o.Notes), formatTime(o.UpdatedAt), o.ID, models.OrderStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}
	if err := checkAffected(res, fmt.Errorf("draft order %s: %w", o.ID, ErrNotFound)); err != nil {
		return err
	}

	if _, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM manufacturing_order_items WHERE order_id = ?`, o.ID); err != nil {
		return fmt.Errorf("deleting order items: %w", err)
	}
	return r.insertItems(ctx, tx, o.ID, o.Items)
}

// MarkCompleted moves a draft order to completed.
func (r *OrderRepository) MarkCompleted(ctx context.Context, tx *sql.Tx, id string, at time.Time) error {
	query := `
		UPDATE manufacturing_orders SET status = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`

	res, err := conn(r.db, tx).ExecContext(ctx, query,
		models.OrderStatusCompleted, formatTime(at), formatTime(now()), id, models.OrderStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("completing order: %w", err)
	}
	return checkAffected(res, fmt.Errorf("draft order %s: %w", id, ErrNotFound))
}

// DeleteDraft removes a draft order and its items.
func (r *OrderRepository) DeleteDraft(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := conn(r.db, tx).ExecContext(ctx,
		`DELETE FROM manufacturing_orders WHERE id = ? AND status = ?`, id, models.OrderStatusDraft)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	return checkAffected(res, fmt.Errorf("draft order %s: %w", id, ErrNotFound))
}

func (r *OrderRepository) queryOrders(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]*models.ManufacturingOrder, error) {
	rows, err := conn(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}

	var orders []*models.ManufacturingOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	// Closed before loading items: the single connection must be free.
	rows.Close()

	if err := r.loadItems(ctx, tx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, tx *sql.Tx, orders []*models.ManufacturingOrder) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*models.ManufacturingOrder, len(orders))
	args := make([]any, len(orders))
	for i, o := range orders {
		o.Items = []*models.OrderItem{}
		byID[o.ID] = o
		args[i] = o.ID
	}

	query := `
		SELECT it.id, it.order_id, it.product_id, it.quantity, it.position,
			p.name, p.type, p.unit
		FROM manufacturing_order_items it
		JOIN products p ON p.id = it.product_id
		WHERE it.order_id IN (` + placeholders(len(orders)) + `)
		ORDER BY it.order_id, it.position`

	rows, err := conn(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var product models.Product
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Position,
			&product.Name, &product.Type, &product.Unit,
		); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		product.ID = item.ProductID
		item.Product = &product
		if o := byID[item.OrderID]; o != nil {
			o.Items = append(o.Items, &item)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*models.ManufacturingOrder, error) {
	var o models.ManufacturingOrder
	var notes, completedAt sql.NullString
	var createdStr, updatedStr string
	var product models.Product

	err := row.Scan(
		&o.ID, &o.ProductID, &o.Status, &o.OutputQuantity, &notes, &completedAt,
		&createdStr, &updatedStr, &product.Name, &product.Type, &product.Unit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning order: %w", err)
	}

	o.Notes = notes.String
	o.CompletedAt = parseNullTime(completedAt)
	o.CreatedAt = parseTime(createdStr)
	o.UpdatedAt = parseTime(updatedStr)
	product.ID = o.ProductID
	o.Product = &product

	return &o, nil
}
