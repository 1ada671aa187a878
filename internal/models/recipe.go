package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is the inferred consumption profile of one manufactured product.
// There is at most one recipe per product.
type Recipe struct {
	ID                        string          `json:"id"`
	ProductID                 string          `json:"product_id"`
	Name                      string          `json:"name"`
	ExpectedOutputQuantity    decimal.Decimal `json:"expected_output_quantity"`
	IsAutoCalculated          bool            `json:"is_auto_calculated"`
	CalculatedFromOrdersCount int             `json:"calculated_from_orders_count"`
	LastCalculatedAt          *time.Time      `json:"last_calculated_at,omitempty"`
	Notes                     string          `json:"notes,omitempty"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`

	Items []*RecipeItem `json:"items"`

	// Joined fields
	Product *Product `json:"product,omitempty"`
}

// ItemFor returns the recipe line for productID, or nil.
func (r *Recipe) ItemFor(productID string) *RecipeItem {
	for _, item := range r.Items {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

// RecipeItem is the averaged consumption of one raw material per unit of output.
type RecipeItem struct {
	ID              string          `json:"id"`
	RecipeID        string          `json:"recipe_id"`
	ProductID       string          `json:"product_id"`
	ConsumptionRate decimal.Decimal `json:"consumption_rate"`
	UsageFrequency  decimal.Decimal `json:"usage_frequency"`
	Position        int             `json:"position"`

	// Joined fields
	Product *Product `json:"product,omitempty"`
}

// IngredientType classifies an ingredient by how often it shows up in orders.
type IngredientType string

const (
	IngredientRequired IngredientType = "required"
	IngredientOptional IngredientType = "optional"
	IngredientRare     IngredientType = "rare"
)

func (t IngredientType) String() string {
	return string(t)
}

// Label returns the display label.
func (t IngredientType) Label() string {
	switch t {
	case IngredientRequired:
		return "أساسي"
	case IngredientOptional:
		return "اختياري"
	case IngredientRare:
		return "نادر"
	default:
		return string(t)
	}
}

// ClassifyIngredient maps a usage frequency percentage to an ingredient type.
func ClassifyIngredient(usageFrequency decimal.Decimal, s Settings) IngredientType {
	switch {
	case usageFrequency.GreaterThanOrEqual(s.RequiredThreshold):
		return IngredientRequired
	case usageFrequency.GreaterThanOrEqual(s.IncludeThreshold):
		return IngredientOptional
	default:
		return IngredientRare
	}
}

// RecipeStatus summarizes whether a product's recipe can still change.
type RecipeStatus struct {
	ProductID         string `json:"product_id"`
	CompletedOrders   int    `json:"completed_orders"`
	HasEnoughOrders   bool   `json:"has_enough_orders"`
	HasReachedMaximum bool   `json:"has_reached_maximum"`
	HasRecipe         bool   `json:"has_recipe"`
}

// Frozen reports whether automatic recalculation has stopped for good.
func (s RecipeStatus) Frozen() bool {
	return s.HasReachedMaximum
}
