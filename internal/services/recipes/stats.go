package recipes

import (
	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/models"
)

// IngredientStats is the averaged usage of one raw material over a window of
// completed orders.
type IngredientStats struct {
	ProductID string
	// AvgRate is the mean quantity per unit of output over the orders that
	// used the ingredient, rounded to 3 places.
	AvgRate decimal.Decimal
	// Frequency is the share of orders that used the ingredient, as a
	// percentage rounded to 2 places.
	Frequency decimal.Decimal
	Orders    int

	// window is the number of orders in the window, the frequency
	// denominator.
	window int
}

// Included reports whether the ingredient's unrounded usage frequency reaches
// threshold percent, that is Orders*100 >= threshold*window.
func (s IngredientStats) Included(threshold decimal.Decimal) bool {
	used := decimal.NewFromInt(int64(s.Orders)).Mul(models.Hundred)
	return used.GreaterThanOrEqual(threshold.Mul(decimal.NewFromInt(int64(s.window))))
}

// WindowStats summarizes a window of completed orders.
type WindowStats struct {
	Orders         int
	ExpectedOutput decimal.Decimal
	Ingredients    []IngredientStats
}

// ComputeStats averages output and per-ingredient consumption over orders.
// Ingredients are returned in first-seen order. Orders with output <= 0 still
// count towards the frequency denominator but contribute no rates.
func ComputeStats(orders []*models.ManufacturingOrder) WindowStats {
	stats := WindowStats{Orders: len(orders), ExpectedOutput: decimal.Zero}
	if len(orders) == 0 {
		return stats
	}

	total := decimal.NewFromInt(int64(len(orders)))

	outputSum := decimal.Zero
	for _, o := range orders {
		outputSum = outputSum.Add(o.OutputQuantity)
	}
	stats.ExpectedOutput = outputSum.Div(total).Round(2)

	type acc struct {
		sum   decimal.Decimal
		count int
	}
	var order []string
	rates := make(map[string]*acc)

	for _, o := range orders {
		if !o.OutputQuantity.IsPositive() {
			continue
		}
		for _, item := range o.Items {
			a, ok := rates[item.ProductID]
			if !ok {
				a = &acc{sum: decimal.Zero}
				rates[item.ProductID] = a
				order = append(order, item.ProductID)
			}
			a.sum = a.sum.Add(item.Quantity.Div(o.OutputQuantity))
			a.count++
		}
	}

	stats.Ingredients = make([]IngredientStats, 0, len(order))
	for _, id := range order {
		a := rates[id]
		count := decimal.NewFromInt(int64(a.count))
		stats.Ingredients = append(stats.Ingredients, IngredientStats{
			ProductID: id,
			AvgRate:   a.sum.Div(count).Round(3),
			Frequency: count.Div(total).Mul(models.Hundred).Round(2),
			Orders:    a.count,
			window:    len(orders),
		})
	}

	return stats
}
