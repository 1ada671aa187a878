package recipes

import (
	"testing"

	"github.com/habibGamal/preparation-system/internal/models"
)

func order(output string, items ...*models.OrderItem) *models.ManufacturingOrder {
	return &models.ManufacturingOrder{ProductID: "cake", OutputQuantity: dec(output), Items: items}
}

func item(productID, qty string) *models.OrderItem {
	return &models.OrderItem{ProductID: productID, Quantity: dec(qty), Product: &models.Product{ID: productID, Name: productID}}
}

func TestComputeStats(t *testing.T) {
	t.Run("Empty window", func(t *testing.T) {
		stats := ComputeStats(nil)
		if stats.Orders != 0 || !stats.ExpectedOutput.IsZero() || len(stats.Ingredients) != 0 {
			t.Errorf("ComputeStats(nil) = %+v", stats)
		}
	})

	t.Run("First-seen order and rounding", func(t *testing.T) {
		stats := ComputeStats([]*models.ManufacturingOrder{
			order("3", item("salt", "1"), item("flour", "7")),
			order("3", item("flour", "8")),
			order("4", item("flour", "9")),
		})

		if !stats.ExpectedOutput.Equal(dec("3.33")) {
			t.Errorf("ExpectedOutput = %s, want 3.33", stats.ExpectedOutput)
		}
		if len(stats.Ingredients) != 2 || stats.Ingredients[0].ProductID != "salt" {
			t.Fatalf("Ingredients = %+v", stats.Ingredients)
		}

		salt, flour := stats.Ingredients[0], stats.Ingredients[1]
		// 1/3
		if !salt.AvgRate.Equal(dec("0.333")) || !salt.Frequency.Equal(dec("33.33")) {
			t.Errorf("salt = %s @ %s%%", salt.AvgRate, salt.Frequency)
		}
		// (7/3 + 8/3 + 9/4) / 3 = 2.4166...
		if !flour.AvgRate.Equal(dec("2.417")) || !flour.Frequency.Equal(dec("100")) || flour.Orders != 3 {
			t.Errorf("flour = %s @ %s%% over %d", flour.AvgRate, flour.Frequency, flour.Orders)
		}
	})
}

func TestIngredientStats_Included(t *testing.T) {
	// Vanilla in 2 of 3 orders is 66.666...% and reported as 66.67.
	stats := ComputeStats([]*models.ManufacturingOrder{
		order("1", item("flour", "1"), item("vanilla", "0.1")),
		order("1", item("flour", "1"), item("vanilla", "0.1")),
		order("2", item("flour", "2")),
	})
	vanilla := stats.Ingredients[1]
	if !vanilla.Frequency.Equal(dec("66.67")) {
		t.Fatalf("Frequency = %s, want 66.67", vanilla.Frequency)
	}

	tests := []struct {
		threshold string
		want      bool
	}{
		{"0", true},
		{"66.66", true},
		{"66.666", true},
		{"66.67", false},
		{"100", false},
	}
	for _, tt := range tests {
		if got := vanilla.Included(dec(tt.threshold)); got != tt.want {
			t.Errorf("Included(%s) = %v, want %v", tt.threshold, got, tt.want)
		}
	}

	if flour := stats.Ingredients[0]; !flour.Included(dec("100")) {
		t.Error("ingredient in every order should reach 100")
	}
}

func TestVariancePercent(t *testing.T) {
	tests := []struct {
		name     string
		actual   string
		expected string
		want     string
	}{
		{"over", "5", "3", "66.7"},
		{"under", "2", "4", "-50"},
		{"exact", "4", "4", "0"},
		{"zero expected with usage", "1", "0", "100"},
		{"zero expected without usage", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VariancePercent(dec(tt.actual), dec(tt.expected)).Round(1)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("VariancePercent(%s, %s) = %s, want %s", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestCompareToRecipe(t *testing.T) {
	settings := models.DefaultSettings()
	recipe := &models.Recipe{
		IsAutoCalculated: true,
		Items: []*models.RecipeItem{
			{ProductID: "flour", ConsumptionRate: dec("2"), UsageFrequency: dec("100"), Product: &models.Product{Name: "Flour"}},
			{ProductID: "vanilla", ConsumptionRate: dec("0.1"), UsageFrequency: dec("40"), Product: &models.Product{Name: "Vanilla"}},
			{ProductID: "eggs", ConsumptionRate: dec("0.5"), UsageFrequency: dec("70"), Product: &models.Product{Name: "Eggs"}},
		},
	}

	t.Run("Within threshold is silent", func(t *testing.T) {
		// 10% exactly is not above the threshold.
		warnings := CompareToRecipe(order("10", item("flour", "22"), item("eggs", "5")), recipe, settings)
		if len(warnings) != 0 {
			t.Errorf("warnings = %+v", warnings)
		}
	})

	t.Run("Optional ingredient may be absent", func(t *testing.T) {
		warnings := CompareToRecipe(order("10", item("flour", "20"), item("eggs", "5")), recipe, settings)
		if len(warnings) != 0 {
			t.Errorf("warnings = %+v", warnings)
		}
	})

	t.Run("Mixed warnings in order", func(t *testing.T) {
		warnings := CompareToRecipe(order("10", item("flour", "15"), item("salt", "0.25")), recipe, settings)
		if len(warnings) != 3 {
			t.Fatalf("got %d warnings, want 3: %+v", len(warnings), warnings)
		}

		want := []struct {
			typ      models.WarningType
			variance string
			message  string
		}{
			{models.WarningRawMaterial, "-25", "Flour: متوقع 20، فعلي 15 (انحراف 25%)"},
			{models.WarningMissingIngredient, "-100", "Eggs: خام أساسي غير موجود (متوقع 5)"},
			{models.WarningExtraIngredient, "100", "salt: خام إضافي غير متوقع (كمية 0.25)"},
		}
		for i, w := range want {
			got := warnings[i]
			if got.Type != w.typ || !got.Variance.Equal(dec(w.variance)) || got.Message != w.message {
				t.Errorf("warning %d = {%s %s %q}, want {%s %s %q}", i, got.Type, got.Variance, got.Message, w.typ, w.variance, w.message)
			}
		}
		if warnings[0].IsOverConsumption() {
			t.Error("under consumption reported as over")
		}
	})

	t.Run("Nil recipe", func(t *testing.T) {
		if got := CompareToRecipe(order("1", item("flour", "1")), nil, settings); len(got) != 0 {
			t.Errorf("warnings = %+v", got)
		}
	})
}
