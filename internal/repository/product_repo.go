package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/models"
)

// ProductRepository handles product and inventory data access.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ============================================================================
// PRODUCTS
// ============================================================================

const productColumns = `
	p.id, p.name, p.type, p.unit, p.barcode, p.price, p.cost, p.min_stock,
	p.created_at, p.updated_at,
	i.id, i.quantity, i.created_at, i.updated_at`

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, tx *sql.Tx, p *models.Product) error {
	query := `
		INSERT INTO products (
			id, name, type, unit, barcode, price, cost, min_stock, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ts := now()
	p.CreatedAt = ts
	p.UpdatedAt = ts

	_, err := conn(r.db, tx).ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Type,
		p.Unit,
		nullableStringPtr(p.Barcode),
		p.Price,
		p.Cost,
		p.MinStock,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

// GetByID retrieves a product with its inventory row, if any.
func (r *ProductRepository) GetByID(ctx context.Context, tx *sql.Tx, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN inventories i ON i.product_id = p.id
		WHERE p.id = ?`

	p, err := scanProduct(conn(r.db, tx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, err
}

// GetByIDs retrieves several products keyed by ID. Unknown IDs are omitted.
func (r *ProductRepository) GetByIDs(ctx context.Context, tx *sql.Tx, ids []string) (map[string]*models.Product, error) {
	out := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN inventories i ON i.product_id = p.id
		WHERE p.id IN (` + placeholders(len(ids)) + `)`

	rows, err := conn(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// List retrieves products with filtering and pagination, ordered by name.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter, page models.Pagination) (*models.ProductList, error) {
	var conditions []string
	var args []any

	if filter.Type != nil {
		conditions = append(conditions, "p.type = ?")
		args = append(args, *filter.Type)
	}
	if filter.NameSearch != "" {
		conditions = append(conditions, "p.name LIKE ?")
		args = append(args, "%"+filter.NameSearch+"%")
	}
	if filter.LowStock {
		conditions = append(conditions, "CAST(COALESCE(i.quantity, '0') AS REAL) < p.min_stock")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM products p LEFT JOIN inventories i ON i.product_id = p.id ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN inventories i ON i.product_id = p.id
		` + where + `
		ORDER BY p.name, p.id
		LIMIT ? OFFSET ?`
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	list := &models.ProductList{Total: total, Page: page.Page, PageSize: page.Limit()}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list.Products = append(list.Products, p)
	}
	return list, rows.Err()
}

// Update saves the mutable product fields. Type is never updated.
func (r *ProductRepository) Update(ctx context.Context, tx *sql.Tx, p *models.Product) error {
	query := `
		UPDATE products SET
			name = ?, unit = ?, barcode = ?, price = ?, cost = ?, min_stock = ?, updated_at = ?
		WHERE id = ?`

	p.UpdatedAt = now()
	res, err := conn(r.db, tx).ExecContext(ctx, query,
		p.Name, p.Unit, nullableStringPtr(p.Barcode), p.Price, p.Cost, p.MinStock,
		formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return checkAffected(res, fmt.Errorf("product %s: %w", p.ID, ErrNotFound))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var barcode, invID, invQty, invCreated, invUpdated sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Unit, &barcode, &p.Price, &p.Cost, &p.MinStock,
		&createdStr, &updatedStr,
		&invID, &invQty, &invCreated, &invUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning product: %w", err)
	}

	if barcode.Valid {
		p.Barcode = &barcode.String
	}
	p.CreatedAt = parseTime(createdStr)
	p.UpdatedAt = parseTime(updatedStr)

	if invID.Valid {
		qty, err := decimal.NewFromString(invQty.String)
		if err != nil {
			return nil, fmt.Errorf("parsing inventory quantity: %w", err)
		}
		p.Inventory = &models.Inventory{
			ID:        invID.String,
			ProductID: p.ID,
			Quantity:  qty,
			CreatedAt: parseTime(invCreated.String),
			UpdatedAt: parseTime(invUpdated.String),
		}
	}

	return &p, nil
}

// ============================================================================
// INVENTORY
// ============================================================================

// CreateInventory inserts an inventory row.
func (r *ProductRepository) CreateInventory(ctx context.Context, tx *sql.Tx, inv *models.Inventory) error {
	query := `
		INSERT INTO inventories (id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	ts := now()
	inv.CreatedAt = ts
	inv.UpdatedAt = ts

	_, err := conn(r.db, tx).ExecContext(ctx, query,
		inv.ID, inv.ProductID, inv.Quantity, formatTime(ts), formatTime(ts),
	)
	if err != nil {
		return fmt.Errorf("inserting inventory: %w", err)
	}
	return nil
}

// GetInventory retrieves the inventory row of a product.
func (r *ProductRepository) GetInventory(ctx context.Context, tx *sql.Tx, productID string) (*models.Inventory, error) {
	query := `
		SELECT id, product_id, quantity, created_at, updated_at
		FROM inventories
		WHERE product_id = ?`

	var inv models.Inventory
	var createdStr, updatedStr string
	err := conn(r.db, tx).QueryRowContext(ctx, query, productID).Scan(
		&inv.ID, &inv.ProductID, &inv.Quantity, &createdStr, &updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("inventory for product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning inventory: %w", err)
	}
	inv.CreatedAt = parseTime(createdStr)
	inv.UpdatedAt = parseTime(updatedStr)
	return &inv, nil
}

// AdjustInventory adds delta to a product's on-hand quantity. It reports
// false and changes nothing when the product has no inventory row.
func (r *ProductRepository) AdjustInventory(ctx context.Context, tx *sql.Tx, productID string, delta decimal.Decimal) (bool, error) {
	inv, err := r.GetInventory(ctx, tx, productID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := r.SetInventoryQuantity(ctx, tx, productID, inv.Quantity.Add(delta)); err != nil {
		return false, err
	}
	return true, nil
}

// FirstOrCreateInventory returns the product's inventory row, creating it with
// quantity zero under newID if missing.
func (r *ProductRepository) FirstOrCreateInventory(ctx context.Context, tx *sql.Tx, productID, newID string) (*models.Inventory, error) {
	inv, err := r.GetInventory(ctx, tx, productID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	inv = &models.Inventory{ID: newID, ProductID: productID, Quantity: decimal.Zero}
	if err := r.CreateInventory(ctx, tx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// SetInventoryQuantity overwrites a product's on-hand quantity.
func (r *ProductRepository) SetInventoryQuantity(ctx context.Context, tx *sql.Tx, productID string, qty decimal.Decimal) error {
	query := `UPDATE inventories SET quantity = ?, updated_at = ? WHERE product_id = ?`

	res, err := conn(r.db, tx).ExecContext(ctx, query, qty, formatTime(now()), productID)
	if err != nil {
		return fmt.Errorf("updating inventory: %w", err)
	}
	return checkAffected(res, fmt.Errorf("inventory for product %s: %w", productID, ErrNotFound))
}
