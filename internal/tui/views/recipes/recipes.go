// Package recipes provides TUI views for calculated recipes.
package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/recipes"
	"github.com/habibGamal/preparation-system/internal/tui/components"
	"github.com/habibGamal/preparation-system/internal/util"
)

// RecipeView lists recipes and shows the detail of the selected one.
type RecipeView struct {
	service  *recipes.Service
	products *inventory.Service
	table    *components.Table
	recipes  []*models.Recipe
	clock    util.Clock
	err      error

	// Detail state, filled by LoadDetail.
	detail *models.Recipe
	status *models.RecipeStatus
}

// NewRecipeView creates a new recipe view.
func NewRecipeView(service *recipes.Service, products *inventory.Service) *RecipeView {
	columns := []components.Column{
		{Title: "Product", Width: 28},
		{Title: "Output", Width: 10, Align: lipgloss.Right},
		{Title: "Orders", Width: 7, Align: lipgloss.Right},
		{Title: "Auto", Width: 5, Align: lipgloss.Center},
		{Title: "Calculated", Width: 17},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	return &RecipeView{
		service:  service,
		products: products,
		table:    table,
		clock:    util.SystemClock{},
	}
}

// SetClock sets the clock used for relative times.
func (v *RecipeView) SetClock(c util.Clock) {
	v.clock = c
}

// Load fetches the recipe list.
func (v *RecipeView) Load(ctx context.Context) error {
	v.err = nil

	list, err := v.service.ListRecipes(ctx)
	if err != nil {
		v.err = err
		return err
	}
	v.SetRecipes(list)
	return nil
}

// SetRecipes replaces the listed recipes.
func (v *RecipeView) SetRecipes(list []*models.Recipe) {
	v.recipes = list

	rows := make([][]string, len(list))
	for i, r := range list {
		name := r.Name
		if r.Product != nil {
			name = r.Product.Name
		}
		auto := "no"
		if r.IsAutoCalculated {
			auto = "yes"
		}
		calculated := "-"
		if r.LastCalculatedAt != nil {
			calculated = util.FormatDateTime(*r.LastCalculatedAt)
		}
		rows[i] = []string{
			name,
			r.ExpectedOutputQuantity.String(),
			fmt.Sprintf("%d", r.CalculatedFromOrdersCount),
			auto,
			calculated,
		}
	}
	v.table.SetRows(rows)
}

// MoveUp moves the selection up.
func (v *RecipeView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *RecipeView) MoveDown() {
	v.table.MoveDown()
}

// Selected returns the highlighted recipe.
func (v *RecipeView) Selected() *models.Recipe {
	if v.table.SelectedRow() == nil {
		return nil
	}
	return v.recipes[v.table.Selected()]
}

// LoadDetail loads the full recipe and gate status of the highlighted row.
func (v *RecipeView) LoadDetail(ctx context.Context, settings models.Settings) error {
	sel := v.Selected()
	if sel == nil {
		return nil
	}

	product, err := v.products.GetProduct(ctx, sel.ProductID)
	if err != nil {
		return err
	}
	recipe, err := v.service.GetRecipeForProduct(ctx, product)
	if err != nil {
		return err
	}
	status, err := v.service.Status(ctx, product, settings)
	if err != nil {
		return err
	}

	recipe.Product = product
	v.detail = recipe
	v.status = status
	return nil
}

// Recalculate rebuilds the highlighted product's recipe and reloads the
// detail. It returns false when the product lacks enough completed orders.
func (v *RecipeView) Recalculate(ctx context.Context, settings models.Settings) (bool, error) {
	sel := v.Selected()
	if sel == nil {
		return false, nil
	}

	product, err := v.products.GetProduct(ctx, sel.ProductID)
	if err != nil {
		return false, err
	}
	recipe, err := v.service.CalculateRecipe(ctx, product, settings)
	if err != nil {
		return false, err
	}
	if recipe == nil {
		return false, nil
	}
	if err := v.Load(ctx); err != nil {
		return true, err
	}
	return true, v.LoadDetail(ctx, settings)
}

// Detail returns the loaded recipe and status.
func (v *RecipeView) Detail() (*models.Recipe, *models.RecipeStatus) {
	return v.detail, v.status
}

// Render renders the recipe list.
func (v *RecipeView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	if height > 10 {
		v.table.SetVisibleRows(height - 8)
	}

	var b strings.Builder

	title := "=== RECIPES ==="
	if n := v.table.RowCount(); n > 0 {
		title = fmt.Sprintf("=== RECIPES (%d) ===", n)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(labelStyle.Render("No recipes yet. Complete manufacturing orders to build one."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.Render())
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(helpStyle.Render("Enter:Detail r:Recalc"))
	} else {
		b.WriteString(helpStyle.Render("Up/Down:Select  Enter:Detail  r:Recalculate"))
	}

	return b.String()
}

// RenderDetail renders the loaded recipe with each ingredient's
// classification under settings.
func (v *RecipeView) RenderDetail(settings models.Settings) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	recipe := v.detail
	if recipe == nil {
		return helpStyle.Render("No recipe selected")
	}

	var b strings.Builder

	name := recipe.Name
	if recipe.Product != nil {
		name = recipe.Product.Name
	}
	b.WriteString(titleStyle.Render("=== RECIPE: " + name + " ==="))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Expected output:") + " " + valueStyle.Render(recipe.ExpectedOutputQuantity.String()) + "\n")
	b.WriteString(labelStyle.Render("Based on orders:") + " " + valueStyle.Render(fmt.Sprintf("%d", recipe.CalculatedFromOrdersCount)) + "\n")
	if recipe.LastCalculatedAt != nil {
		at := *recipe.LastCalculatedAt
		b.WriteString(labelStyle.Render("Last calculated:") + " " +
			valueStyle.Render(util.FormatDateTime(at)+" ("+util.RelativeTimeString(at, v.clock.Now())+")") + "\n")
	}

	if s := v.status; s != nil {
		state := valueStyle.Render("updating")
		if s.Frozen() {
			state = warnStyle.Render("frozen")
		}
		b.WriteString(labelStyle.Render("Completed orders:") + " " +
			valueStyle.Render(fmt.Sprintf("%d / %d", s.CompletedOrders, settings.MaximumOrders)) + " (" + state + ")\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("INGREDIENTS"))
	b.WriteString("\n")

	table := components.NewTable([]components.Column{
		{Title: "Ingredient", Width: 24},
		{Title: "Per unit", Width: 12, Align: lipgloss.Right},
		{Title: "Used in", Width: 8, Align: lipgloss.Right},
		{Title: "Type", Width: 8},
	})
	table.SetVisibleRows(len(recipe.Items) + 1)
	rows := make([][]string, len(recipe.Items))
	for i, item := range recipe.Items {
		ingredient := item.ProductID
		if item.Product != nil {
			ingredient = item.Product.Name
		}
		rows[i] = []string{
			ingredient,
			item.ConsumptionRate.String(),
			item.UsageFrequency.StringFixed(0) + "%",
			models.ClassifyIngredient(item.UsageFrequency, settings).Label(),
		}
	}
	table.SetRows(rows)
	b.WriteString(table.Render())

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Esc:Back  r:Recalculate"))

	return b.String()
}

// Table exposes the list table for theming.
func (v *RecipeView) Table() *components.Table {
	return v.table
}
