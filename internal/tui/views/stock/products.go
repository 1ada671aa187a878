// Package stock provides TUI views for products, inventory and stock
// documents.
package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/tui/components"
)

var typeCycle = []*models.ProductType{
	nil,
	ptr(models.ProductTypeRaw),
	ptr(models.ProductTypeManufactured),
}

func ptr[T any](v T) *T { return &v }

// ProductView lists products with their inventory.
type ProductView struct {
	service  *inventory.Service
	table    *components.Table
	products []*models.Product
	page     models.Pagination
	typeIdx  int
	lowStock bool
	search   string
	err      error
}

// NewProductView creates a new product view.
func NewProductView(service *inventory.Service) *ProductView {
	columns := []components.Column{
		{Title: "Name", Width: 26},
		{Title: "Type", Width: 8},
		{Title: "Unit", Width: 7},
		{Title: "Stock", Width: 10, Align: lipgloss.Right},
		{Title: "Min", Width: 5, Align: lipgloss.Right},
		{Title: "Cost", Width: 9, Align: lipgloss.Right},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	return &ProductView{
		service: service,
		table:   table,
		page:    models.Pagination{Page: 1, PageSize: 20},
	}
}

// Load fetches the current page of products.
func (v *ProductView) Load(ctx context.Context) error {
	v.err = nil

	filter := models.ProductFilter{
		Type:       typeCycle[v.typeIdx],
		NameSearch: v.search,
		LowStock:   v.lowStock,
	}
	list, err := v.service.ListProducts(ctx, filter, v.page)
	if err != nil {
		v.err = err
		return err
	}
	if len(list.Products) == 0 && v.page.Page > 1 {
		v.page.Page--
		return v.Load(ctx)
	}

	v.SetProducts(list.Products)
	v.table.SetPagination(list.Page, v.page.TotalPages(list.Total), list.Total)
	return nil
}

// SetProducts replaces the listed products.
func (v *ProductView) SetProducts(list []*models.Product) {
	v.products = list

	rows := make([][]string, len(list))
	for i, p := range list {
		stock := "-"
		if p.Inventory != nil {
			stock = p.Inventory.Quantity.String()
			if p.IsBelowMinStock() {
				stock = "!" + stock
			}
		}
		rows[i] = []string{
			p.Name,
			p.Type.Label(),
			string(p.Unit),
			stock,
			fmt.Sprintf("%d", p.MinStock),
			p.Cost.StringFixed(2),
		}
	}
	v.table.SetRows(rows)
}

// CycleType steps the type filter through all, raw and manufactured.
func (v *ProductView) CycleType() {
	v.typeIdx = (v.typeIdx + 1) % len(typeCycle)
	v.resetPage()
}

// ToggleLowStock toggles the below-minimum filter.
func (v *ProductView) ToggleLowStock() {
	v.lowStock = !v.lowStock
	v.resetPage()
}

// SetSearch filters products by name.
func (v *ProductView) SetSearch(q string) {
	v.search = strings.TrimSpace(q)
	v.resetPage()
}

func (v *ProductView) resetPage() {
	v.page.Page = 1
	v.table.GoToTop()
}

// NextPage moves to the next page.
func (v *ProductView) NextPage() {
	v.page.Page++
}

// PrevPage moves to the previous page.
func (v *ProductView) PrevPage() {
	if v.page.Page > 1 {
		v.page.Page--
	}
}

// MoveUp moves the selection up.
func (v *ProductView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *ProductView) MoveDown() {
	v.table.MoveDown()
}

// Selected returns the highlighted product.
func (v *ProductView) Selected() *models.Product {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.products) {
		return v.products[idx]
	}
	return nil
}

// Render renders the product list.
func (v *ProductView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	if height > 12 {
		v.table.SetVisibleRows(height - 10)
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== INVENTORY ==="))
	b.WriteString("\n\n")

	var filters []string
	if t := typeCycle[v.typeIdx]; t != nil {
		filters = append(filters, "type="+t.Label())
	}
	if v.lowStock {
		filters = append(filters, "below minimum")
	}
	if v.search != "" {
		filters = append(filters, fmt.Sprintf("name~%q", v.search))
	}
	if len(filters) > 0 {
		b.WriteString(labelStyle.Render("Filter: "))
		b.WriteString(valueStyle.Render(strings.Join(filters, ", ")))
		b.WriteString("\n\n")
	}

	if v.err != nil {
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(labelStyle.Render("No products found."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.Render())
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(helpStyle.Render("t:Type l:Low /:Find"))
	} else {
		b.WriteString(helpStyle.Render("Up/Down:Select  t:Type  l:Low stock  /:Search  PgUp/Dn:Page"))
	}

	return b.String()
}

// Table exposes the list table for theming.
func (v *ProductView) Table() *components.Table {
	return v.table
}
