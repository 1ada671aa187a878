package models

import (
	"github.com/shopspring/decimal"
)

// WarningType identifies why an order deviates from its recipe.
type WarningType string

const (
	WarningRawMaterial       WarningType = "raw_material"
	WarningMissingIngredient WarningType = "missing_ingredient"
	WarningExtraIngredient   WarningType = "extra_ingredient"
)

func (t WarningType) String() string {
	return string(t)
}

// VarianceWarning is produced per analysis call and never stored.
type VarianceWarning struct {
	Type        WarningType     `json:"type"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product"`
	Expected    decimal.Decimal `json:"expected"`
	Actual      decimal.Decimal `json:"actual"`
	Variance    decimal.Decimal `json:"variance"`
	Message     string          `json:"message"`
}

// IsOverConsumption reports whether more was used than expected.
func (w VarianceWarning) IsOverConsumption() bool {
	return w.Variance.IsPositive()
}
