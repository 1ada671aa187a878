// Package orders provides TUI views for manufacturing orders.
package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
	"github.com/habibGamal/preparation-system/internal/tui/components"
	"github.com/habibGamal/preparation-system/internal/util"
)

// statusCycle is the order in which the "f" key steps through filters.
var statusCycle = []*models.OrderStatus{
	nil,
	ptr(models.OrderStatusDraft),
	ptr(models.OrderStatusCompleted),
}

func ptr[T any](v T) *T { return &v }

// OrderView lists manufacturing orders and shows variance for the selected one.
type OrderView struct {
	service *manufacturing.Service
	table   *components.Table
	orders  []*models.ManufacturingOrder
	page    models.Pagination
	filter  int
	err     error

	detail   *models.ManufacturingOrder
	warnings []models.VarianceWarning
}

// NewOrderView creates a new order view.
func NewOrderView(service *manufacturing.Service) *OrderView {
	columns := []components.Column{
		{Title: "Product", Width: 26},
		{Title: "Output", Width: 10, Align: lipgloss.Right},
		{Title: "Items", Width: 5, Align: lipgloss.Right},
		{Title: "Status", Width: 8},
		{Title: "Date", Width: 17},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	return &OrderView{
		service: service,
		table:   table,
		page:    models.Pagination{Page: 1, PageSize: 20},
	}
}

// Load fetches the current page of orders.
func (v *OrderView) Load(ctx context.Context) error {
	v.err = nil

	list, err := v.service.ListOrders(ctx, models.OrderFilter{Status: statusCycle[v.filter]}, v.page)
	if err != nil {
		v.err = err
		return err
	}
	if len(list.Orders) == 0 && v.page.Page > 1 {
		v.page.Page--
		return v.Load(ctx)
	}

	v.SetOrders(list.Orders)
	v.table.SetPagination(list.Page, v.page.TotalPages(list.Total), list.Total)
	return nil
}

// SetOrders replaces the listed orders.
func (v *OrderView) SetOrders(list []*models.ManufacturingOrder) {
	v.orders = list

	rows := make([][]string, len(list))
	for i, o := range list {
		name := o.ProductID
		if o.Product != nil {
			name = o.Product.Name
		}
		date := util.FormatDateTime(o.CreatedAt)
		if o.CompletedAt != nil {
			date = util.FormatDateTime(*o.CompletedAt)
		}
		rows[i] = []string{
			name,
			o.OutputQuantity.String(),
			fmt.Sprintf("%d", len(o.Items)),
			o.Status.Label(),
			date,
		}
	}
	v.table.SetRows(rows)
}

// CycleFilter steps through all, draft and completed.
func (v *OrderView) CycleFilter() {
	v.filter = (v.filter + 1) % len(statusCycle)
	v.page.Page = 1
	v.table.GoToTop()
}

// Filter returns the active status filter, nil for all.
func (v *OrderView) Filter() *models.OrderStatus {
	return statusCycle[v.filter]
}

// NextPage moves to the next page.
func (v *OrderView) NextPage() {
	v.page.Page++
}

// PrevPage moves to the previous page.
func (v *OrderView) PrevPage() {
	if v.page.Page > 1 {
		v.page.Page--
	}
}

// MoveUp moves the selection up.
func (v *OrderView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *OrderView) MoveDown() {
	v.table.MoveDown()
}

// Selected returns the highlighted order.
func (v *OrderView) Selected() *models.ManufacturingOrder {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.orders) {
		return v.orders[idx]
	}
	return nil
}

// LoadDetail loads the highlighted order with its variance warnings.
func (v *OrderView) LoadDetail(ctx context.Context, settings models.Settings) error {
	sel := v.Selected()
	if sel == nil {
		return nil
	}

	order, err := v.service.GetOrder(ctx, sel.ID)
	if err != nil {
		return err
	}
	warnings, err := v.service.VarianceWarnings(ctx, order.ID, settings)
	if err != nil {
		return err
	}

	v.detail = order
	v.warnings = warnings
	return nil
}

// Detail returns the loaded order and its warnings.
func (v *OrderView) Detail() (*models.ManufacturingOrder, []models.VarianceWarning) {
	return v.detail, v.warnings
}

// CompleteSelected completes the highlighted draft and returns its variance
// warnings against the recipe as it stands after completion.
func (v *OrderView) CompleteSelected(ctx context.Context, settings models.Settings) (*models.ManufacturingOrder, []models.VarianceWarning, error) {
	sel := v.Selected()
	if sel == nil {
		return nil, nil, nil
	}
	if err := v.service.CompleteOrder(ctx, sel.ID, settings); err != nil {
		return nil, nil, err
	}
	if err := v.LoadDetail(ctx, settings); err != nil {
		return nil, nil, err
	}
	return v.detail, v.warnings, v.Load(ctx)
}

// CloneSelected copies the highlighted order into a new draft.
func (v *OrderView) CloneSelected(ctx context.Context) (*models.ManufacturingOrder, error) {
	sel := v.Selected()
	if sel == nil {
		return nil, nil
	}
	clone, err := v.service.Clone(ctx, sel.ID)
	if err != nil {
		return nil, err
	}
	return clone, v.Load(ctx)
}

// Render renders the order list.
func (v *OrderView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	if height > 12 {
		v.table.SetVisibleRows(height - 10)
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== MANUFACTURING ORDERS ==="))
	b.WriteString("\n\n")

	filter := "all"
	if f := v.Filter(); f != nil {
		filter = f.Label()
	}
	b.WriteString(labelStyle.Render("Status: "))
	b.WriteString(valueStyle.Render(filter))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(labelStyle.Render("No orders found."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.Render())
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(helpStyle.Render("c:Done n:Clone f:Filter"))
	} else {
		b.WriteString(helpStyle.Render("Enter:Detail  c:Complete  n:Clone  f:Filter  PgUp/Dn:Page"))
	}

	return b.String()
}

// RenderDetail renders the loaded order and its variance warnings.
func (v *OrderView) RenderDetail() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(18)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	critStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	order := v.detail
	if order == nil {
		return helpStyle.Render("No order selected")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== ORDER DETAILS ==="))
	b.WriteString("\n\n")

	name := order.ProductID
	if order.Product != nil {
		name = order.Product.Name
	}
	b.WriteString(labelStyle.Render("Product:") + " " + valueStyle.Render(name) + "\n")
	b.WriteString(labelStyle.Render("Output:") + " " + valueStyle.Render(order.OutputQuantity.String()) + "\n")
	b.WriteString(labelStyle.Render("Status:") + " " + valueStyle.Render(order.Status.Label()) + "\n")
	if order.CompletedAt != nil {
		b.WriteString(labelStyle.Render("Completed:") + " " + valueStyle.Render(util.FormatDateTime(*order.CompletedAt)) + "\n")
	}
	if order.Notes != "" {
		b.WriteString(labelStyle.Render("Notes:") + " " + valueStyle.Render(order.Notes) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("RAW MATERIALS"))
	b.WriteString("\n")
	for _, item := range order.Items {
		ingredient := item.ProductID
		if item.Product != nil {
			ingredient = item.Product.Name
		}
		b.WriteString("  " + labelStyle.Render(ingredient) + " " + valueStyle.Render(item.Quantity.String()) + "\n")
	}
	if len(order.Items) == 0 {
		b.WriteString("  " + labelStyle.Render("none") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("VARIANCE"))
	b.WriteString("\n")
	if len(v.warnings) == 0 {
		b.WriteString("  " + valueStyle.Render("Within recipe.") + "\n")
	}
	for _, w := range v.warnings {
		style := warnStyle
		if w.Type != models.WarningRawMaterial {
			style = critStyle
		}
		b.WriteString("  " + style.Render("! "+w.Message) + "\n")
	}

	b.WriteString("\n")
	if order.IsDraft() {
		b.WriteString(helpStyle.Render("Esc:Back  c:Complete  n:Clone"))
	} else {
		b.WriteString(helpStyle.Render("Esc:Back  n:Clone"))
	}

	return b.String()
}

// Table exposes the list table for theming.
func (v *OrderView) Table() *components.Table {
	return v.table
}
