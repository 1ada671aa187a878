package recipes

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/models"
)

// CompareToRecipe lists how order deviates from recipe. It touches no storage.
//
// Recipe lines are checked first, in recipe order, followed by order lines the
// recipe does not know about.
func CompareToRecipe(order *models.ManufacturingOrder, recipe *models.Recipe, s models.Settings) []models.VarianceWarning {
	warnings := []models.VarianceWarning{}
	if recipe == nil || !order.OutputQuantity.IsPositive() {
		return warnings
	}

	for _, ri := range recipe.Items {
		expected := ri.ConsumptionRate.Mul(order.OutputQuantity)
		name := productName(ri.Product, ri.ProductID)

		if oi := order.ItemFor(ri.ProductID); oi != nil {
			variance := VariancePercent(oi.Quantity, expected)
			if variance.Abs().GreaterThan(s.VarianceThreshold) {
				exp := expected.Round(2)
				v := variance.Round(1)
				warnings = append(warnings, models.VarianceWarning{
					Type:        models.WarningRawMaterial,
					ProductID:   ri.ProductID,
					ProductName: name,
					Expected:    exp,
					Actual:      oi.Quantity,
					Variance:    v,
					Message: fmt.Sprintf("%s: متوقع %s، فعلي %s (انحراف %s%%)",
						name, exp.String(), oi.Quantity.String(), v.Abs().String()),
				})
			}
			continue
		}

		if ri.UsageFrequency.GreaterThanOrEqual(s.RequiredThreshold) {
			exp := expected.Round(2)
			warnings = append(warnings, models.VarianceWarning{
				Type:        models.WarningMissingIngredient,
				ProductID:   ri.ProductID,
				ProductName: name,
				Expected:    exp,
				Actual:      decimal.Zero,
				Variance:    models.Hundred.Neg(),
				Message:     fmt.Sprintf("%s: خام أساسي غير موجود (متوقع %s)", name, exp.String()),
			})
		}
	}

	for _, oi := range order.Items {
		if recipe.ItemFor(oi.ProductID) != nil {
			continue
		}
		name := productName(oi.Product, oi.ProductID)
		warnings = append(warnings, models.VarianceWarning{
			Type:        models.WarningExtraIngredient,
			ProductID:   oi.ProductID,
			ProductName: name,
			Expected:    decimal.Zero,
			Actual:      oi.Quantity,
			Variance:    models.Hundred,
			Message:     fmt.Sprintf("%s: خام إضافي غير متوقع (كمية %s)", name, oi.Quantity.String()),
		})
	}

	return warnings
}

// VariancePercent returns (actual - expected) / expected * 100. With a zero
// expectation it is 100 when anything was used and 0 otherwise.
func VariancePercent(actual, expected decimal.Decimal) decimal.Decimal {
	if expected.IsZero() {
		if actual.IsPositive() {
			return models.Hundred
		}
		return decimal.Zero
	}
	return actual.Sub(expected).Div(expected).Mul(models.Hundred)
}

func productName(p *models.Product, id string) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	return id
}
