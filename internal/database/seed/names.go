// Package seed provides demo data for a small bakery kitchen.
package seed

import "github.com/habibGamal/preparation-system/internal/models"

// Material is a raw material in the demo catalog.
type Material struct {
	Name     string
	Unit     models.ProductUnit
	Cost     string
	MinStock int
	// Opening is the quantity received on the opening stock entrance.
	Opening string
}

// Ingredient is one line of a Formula. Rate is the quantity consumed per unit
// of output. Optional ingredients appear in only some orders.
type Ingredient struct {
	Material string
	Rate     string
	Optional bool
}

// Formula describes how a manufactured product is really made in the demo
// kitchen. Generated orders scatter around these rates.
type Formula struct {
	Name        string
	Unit        models.ProductUnit
	Price       string
	BatchSize   int
	Ingredients []Ingredient
}

// Materials is the raw material catalog.
var Materials = []Material{
	{Name: "دقيق فاخر", Unit: models.UnitKilogram, Cost: "22.50", MinStock: 50, Opening: "250"},
	{Name: "سكر", Unit: models.UnitKilogram, Cost: "31", MinStock: 25, Opening: "120"},
	{Name: "زبدة", Unit: models.UnitKilogram, Cost: "180", MinStock: 10, Opening: "40"},
	{Name: "بيض", Unit: models.UnitPiece, Cost: "4.25", MinStock: 120, Opening: "600"},
	{Name: "لبن", Unit: models.UnitLiter, Cost: "28", MinStock: 20, Opening: "80"},
	{Name: "خميرة", Unit: models.UnitGram, Cost: "0.35", MinStock: 500, Opening: "3000"},
	{Name: "ملح", Unit: models.UnitGram, Cost: "0.02", MinStock: 1000, Opening: "5000"},
	{Name: "سمسم", Unit: models.UnitKilogram, Cost: "95", MinStock: 3, Opening: "12"},
	{Name: "فانيليا", Unit: models.UnitGram, Cost: "1.80", MinStock: 100, Opening: "400"},
	{Name: "شوكولاتة", Unit: models.UnitKilogram, Cost: "240", MinStock: 5, Opening: "20"},
	{Name: "Cream cheese", Unit: models.UnitKilogram, Cost: "210", MinStock: 4, Opening: "15"},
}

// Formulas is the manufactured product catalog.
var Formulas = []Formula{
	{
		Name: "عيش فينو", Unit: models.UnitPiece, Price: "2.50", BatchSize: 120,
		Ingredients: []Ingredient{
			{Material: "دقيق فاخر", Rate: "0.06"},
			{Material: "خميرة", Rate: "1.2"},
			{Material: "ملح", Rate: "1"},
			{Material: "سكر", Rate: "0.004"},
			{Material: "سمسم", Rate: "0.002", Optional: true},
		},
	},
	{
		Name: "كعك بالسمسم", Unit: models.UnitPiece, Price: "6", BatchSize: 60,
		Ingredients: []Ingredient{
			{Material: "دقيق فاخر", Rate: "0.045"},
			{Material: "زبدة", Rate: "0.018"},
			{Material: "سكر", Rate: "0.01"},
			{Material: "سمسم", Rate: "0.006"},
			{Material: "فانيليا", Rate: "0.3", Optional: true},
		},
	},
	{
		Name: "كيكة شوكولاتة", Unit: models.UnitPiece, Price: "145", BatchSize: 8,
		Ingredients: []Ingredient{
			{Material: "دقيق فاخر", Rate: "0.35"},
			{Material: "سكر", Rate: "0.3"},
			{Material: "بيض", Rate: "6"},
			{Material: "زبدة", Rate: "0.2"},
			{Material: "لبن", Rate: "0.25"},
			{Material: "شوكولاتة", Rate: "0.15"},
			{Material: "فانيليا", Rate: "2", Optional: true},
		},
	},
	{
		Name: "Cheesecake", Unit: models.UnitPiece, Price: "210", BatchSize: 6,
		Ingredients: []Ingredient{
			{Material: "Cream cheese", Rate: "0.6"},
			{Material: "سكر", Rate: "0.18"},
			{Material: "بيض", Rate: "4"},
			{Material: "زبدة", Rate: "0.08"},
			{Material: "فانيليا", Rate: "1.5"},
		},
	},
}

// Suppliers receive the opening raw entrance documents.
var Suppliers = []string{
	"مطاحن مصر الوسطى",
	"شركة الدلتا للسكر",
	"Cairo Dairy Co.",
	"مخازن الجملة",
}
