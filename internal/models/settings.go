package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SettingKey names a row in the settings table.
type SettingKey string

const (
	SettingMinimumOrdersForRecipe       SettingKey = "minimum_orders_for_recipe"
	SettingMaximumOrdersForRecipe       SettingKey = "maximum_orders_for_recipe"
	SettingVarianceWarningThreshold     SettingKey = "variance_warning_threshold"
	SettingAutoUpdateRecipeOnCompletion SettingKey = "auto_update_recipe_on_completion"
	SettingRequiredIngredientThreshold  SettingKey = "required_ingredient_threshold"
	SettingIncludeIngredientThreshold   SettingKey = "include_ingredient_threshold"
)

// AllSettingKeys lists every known key in display order.
func AllSettingKeys() []SettingKey {
	return []SettingKey{
		SettingMinimumOrdersForRecipe,
		SettingMaximumOrdersForRecipe,
		SettingVarianceWarningThreshold,
		SettingAutoUpdateRecipeOnCompletion,
		SettingRequiredIngredientThreshold,
		SettingIncludeIngredientThreshold,
	}
}

func (k SettingKey) String() string {
	return string(k)
}

// Label returns the display label.
func (k SettingKey) Label() string {
	switch k {
	case SettingMinimumOrdersForRecipe:
		return "الحد الأدنى من الأوامر للوصفة"
	case SettingMaximumOrdersForRecipe:
		return "الحد الأقصى من الأوامر للوصفة"
	case SettingVarianceWarningThreshold:
		return "عتبة تحذير التباين (%)"
	case SettingAutoUpdateRecipeOnCompletion:
		return "تحديث الوصفة تلقائيًا"
	case SettingRequiredIngredientThreshold:
		return "عتبة المكون المطلوب (%)"
	case SettingIncludeIngredientThreshold:
		return "عتبة تضمين المكون (%)"
	default:
		return string(k)
	}
}

// Setting is a raw key/value row.
type Setting struct {
	Key   SettingKey `json:"key"`
	Value string     `json:"value"`
}

// Settings is the resolved set of recipe thresholds handed to every engine call.
type Settings struct {
	MinimumOrders     int             `json:"minimum_orders_for_recipe"`
	MaximumOrders     int             `json:"maximum_orders_for_recipe"`
	VarianceThreshold decimal.Decimal `json:"variance_warning_threshold"`
	AutoUpdateRecipe  bool            `json:"auto_update_recipe_on_completion"`
	RequiredThreshold decimal.Decimal `json:"required_ingredient_threshold"`
	IncludeThreshold  decimal.Decimal `json:"include_ingredient_threshold"`
}

// DefaultSettings returns the factory thresholds.
func DefaultSettings() Settings {
	return Settings{
		MinimumOrders:     3,
		MaximumOrders:     10,
		VarianceThreshold: decimal.NewFromFloat(10.0),
		AutoUpdateRecipe:  true,
		RequiredThreshold: decimal.NewFromInt(70),
		IncludeThreshold:  decimal.NewFromInt(30),
	}
}

// Validate checks the thresholds are usable.
func (s Settings) Validate() error {
	var errs []error
	hundred := decimal.NewFromInt(100)

	if s.MinimumOrders < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1", SettingMinimumOrdersForRecipe))
	}
	if s.MaximumOrders < s.MinimumOrders {
		errs = append(errs, fmt.Errorf("%s must not be below %s", SettingMaximumOrdersForRecipe, SettingMinimumOrdersForRecipe))
	}
	if s.VarianceThreshold.IsNegative() {
		errs = append(errs, fmt.Errorf("%s must be non-negative", SettingVarianceWarningThreshold))
	}
	if s.RequiredThreshold.IsNegative() || s.RequiredThreshold.GreaterThan(hundred) {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 100", SettingRequiredIngredientThreshold))
	}
	if s.IncludeThreshold.IsNegative() || s.IncludeThreshold.GreaterThan(hundred) {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 100", SettingIncludeIngredientThreshold))
	}

	return errors.Join(errs...)
}

// Values renders the settings as table rows.
func (s Settings) Values() map[SettingKey]string {
	return map[SettingKey]string{
		SettingMinimumOrdersForRecipe:       fmt.Sprintf("%d", s.MinimumOrders),
		SettingMaximumOrdersForRecipe:       fmt.Sprintf("%d", s.MaximumOrders),
		SettingVarianceWarningThreshold:     s.VarianceThreshold.String(),
		SettingAutoUpdateRecipeOnCompletion: fmt.Sprintf("%t", s.AutoUpdateRecipe),
		SettingRequiredIngredientThreshold:  s.RequiredThreshold.String(),
		SettingIncludeIngredientThreshold:   s.IncludeThreshold.String(),
	}
}
