package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/habibGamal/preparation-system/internal/models"
)

// RecipeRepository handles recipe data access.
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

const recipeColumns = `
	r.id, r.product_id, r.name, r.expected_output_quantity, r.is_auto_calculated,
	r.calculated_from_orders_count, r.last_calculated_at, r.notes,
	r.created_at, r.updated_at, p.name, p.type, p.unit`

// GetByProductID retrieves the recipe of a product with its items.
func (r *RecipeRepository) GetByProductID(ctx context.Context, tx *sql.Tx, productID string) (*models.Recipe, error) {
	return r.getOne(ctx, tx, productID, false)
}

// GetAutoCalculatedByProductID retrieves the product's recipe only when it was
// produced by the calculator.
func (r *RecipeRepository) GetAutoCalculatedByProductID(ctx context.Context, tx *sql.Tx, productID string) (*models.Recipe, error) {
	return r.getOne(ctx, tx, productID, true)
}

func (r *RecipeRepository) getOne(ctx context.Context, tx *sql.Tx, productID string, autoOnly bool) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
		FROM manufacturing_recipes r
		JOIN products p ON p.id = r.product_id
		WHERE r.product_id = ?`
	if autoOnly {
		query += ` AND r.is_auto_calculated = 1`
	}

	recipe, err := scanRecipe(conn(r.db, tx).QueryRowContext(ctx, query, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe for product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, tx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// List retrieves all recipes ordered by product name, without items.
func (r *RecipeRepository) List(ctx context.Context) ([]*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + `
		FROM manufacturing_recipes r
		JOIN products p ON p.id = r.product_id
		ORDER BY p.name, r.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

// Upsert creates the product's recipe or overwrites its header. On return
// rec.ID and rec.CreatedAt hold the stored values.
func (r *RecipeRepository) Upsert(ctx context.Context, tx *sql.Tx, rec *models.Recipe) error {
	query := `
		INSERT INTO manufacturing_recipes (
			id, product_id, name, expected_output_quantity, is_auto_calculated,
			calculated_from_orders_count, last_calculated_at, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			name = excluded.name,
			expected_output_quantity = excluded.expected_output_quantity,
			is_auto_calculated = excluded.is_auto_calculated,
			calculated_from_orders_count = excluded.calculated_from_orders_count,
			last_calculated_at = excluded.last_calculated_at,
			notes = excluded.notes,
			updated_at = excluded.updated_at`

	ts := now()
	rec.UpdatedAt = ts

	db := conn(r.db, tx)
	_, err := db.ExecContext(ctx, query,
		rec.ID,
		rec.ProductID,
		rec.Name,
		rec.ExpectedOutputQuantity,
		boolToInt(rec.IsAutoCalculated),
		rec.CalculatedFromOrdersCount,
		nullableTime(rec.LastCalculatedAt),
		nullableString(rec.Notes),
		formatTime(ts),
		formatTime(ts),
	)
	if err != nil {
		return fmt.Errorf("upserting recipe: %w", err)
	}

	var createdStr string
	err = db.QueryRowContext(ctx,
		`SELECT id, created_at FROM manufacturing_recipes WHERE product_id = ?`, rec.ProductID,
	).Scan(&rec.ID, &createdStr)
	if err != nil {
		return fmt.Errorf("reading upserted recipe: %w", err)
	}
	rec.CreatedAt = parseTime(createdStr)
	return nil
}

// ReplaceItems deletes every item of the recipe and inserts items in order.
func (r *RecipeRepository) ReplaceItems(ctx context.Context, tx *sql.Tx, recipeID string, items []*models.RecipeItem) error {
	db := conn(r.db, tx)
	if _, err := db.ExecContext(ctx, `DELETE FROM manufacturing_recipe_items WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("deleting recipe items: %w", err)
	}

	query := `
		INSERT INTO manufacturing_recipe_items (id, recipe_id, product_id, quantity, usage_frequency, position)
		VALUES (?, ?, ?, ?, ?, ?)`

	for i, item := range items {
		item.RecipeID = recipeID
		item.Position = i
		if _, err := db.ExecContext(ctx, query,
			item.ID, recipeID, item.ProductID, item.ConsumptionRate, item.UsageFrequency, i,
		); err != nil {
			return fmt.Errorf("inserting recipe item: %w", err)
		}
	}
	return nil
}

// Delete removes a product's recipe and its items.
func (r *RecipeRepository) Delete(ctx context.Context, tx *sql.Tx, productID string) error {
	res, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM manufacturing_recipes WHERE product_id = ?`, productID)
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}
	return checkAffected(res, fmt.Errorf("recipe for product %s: %w", productID, ErrNotFound))
}

func (r *RecipeRepository) loadItems(ctx context.Context, tx *sql.Tx, recipe *models.Recipe) error {
	query := `
		SELECT it.id, it.recipe_id, it.product_id, it.quantity, it.usage_frequency, it.position,
			p.name, p.type, p.unit
		FROM manufacturing_recipe_items it
		JOIN products p ON p.id = it.product_id
		WHERE it.recipe_id = ?
		ORDER BY it.position`

	rows, err := conn(r.db, tx).QueryContext(ctx, query, recipe.ID)
	if err != nil {
		return fmt.Errorf("querying recipe items: %w", err)
	}
	defer rows.Close()

	recipe.Items = []*models.RecipeItem{}
	for rows.Next() {
		var item models.RecipeItem
		var product models.Product
		if err := rows.Scan(
			&item.ID, &item.RecipeID, &item.ProductID, &item.ConsumptionRate, &item.UsageFrequency, &item.Position,
			&product.Name, &product.Type, &product.Unit,
		); err != nil {
			return fmt.Errorf("scanning recipe item: %w", err)
		}
		product.ID = item.ProductID
		item.Product = &product
		recipe.Items = append(recipe.Items, &item)
	}
	return rows.Err()
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	var rec models.Recipe
	var auto int
	var lastCalc, notes sql.NullString
	var createdStr, updatedStr string
	var product models.Product

	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.Name, &rec.ExpectedOutputQuantity, &auto,
		&rec.CalculatedFromOrdersCount, &lastCalc, &notes,
		&createdStr, &updatedStr, &product.Name, &product.Type, &product.Unit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning recipe: %w", err)
	}

	rec.IsAutoCalculated = auto != 0
	rec.LastCalculatedAt = parseNullTime(lastCalc)
	rec.Notes = notes.String
	rec.CreatedAt = parseTime(createdStr)
	rec.UpdatedAt = parseTime(updatedStr)
	product.ID = rec.ProductID
	rec.Product = &product

	return &rec, nil
}
