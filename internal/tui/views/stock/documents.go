package stock

import (
	"context"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/tui/components"
	"github.com/habibGamal/preparation-system/internal/util"
)

var kindCycle = []*models.DocumentKind{
	nil,
	ptr(models.DocumentRawEntrance),
	ptr(models.DocumentManufacturedEntrance),
	ptr(models.DocumentRawOut),
	ptr(models.DocumentManufacturedOut),
	ptr(models.DocumentWaste),
	ptr(models.DocumentStocktaking),
}

// DocumentView lists stock documents and shows the selected one.
type DocumentView struct {
	service   *inventory.Service
	table     *components.Table
	documents []*models.StockDocument
	page      models.Pagination
	kindIdx   int
	err       error

	detail *models.StockDocument
}

// NewDocumentView creates a new document view.
func NewDocumentView(service *inventory.Service) *DocumentView {
	columns := []components.Column{
		{Title: "Kind", Width: 18},
		{Title: "Counterparty", Width: 18},
		{Title: "Total", Width: 11, Align: lipgloss.Right},
		{Title: "Status", Width: 6},
		{Title: "Date", Width: 10},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	return &DocumentView{
		service: service,
		table:   table,
		page:    models.Pagination{Page: 1, PageSize: 20},
	}
}

// Load fetches the current page of documents.
func (v *DocumentView) Load(ctx context.Context) error {
	v.err = nil

	docs, total, err := v.service.ListDocuments(ctx, models.DocumentFilter{Kind: kindCycle[v.kindIdx]}, v.page)
	if err != nil {
		v.err = err
		return err
	}
	if len(docs) == 0 && v.page.Page > 1 {
		v.page.Page--
		return v.Load(ctx)
	}

	v.SetDocuments(docs)
	v.table.SetPagination(v.page.Page, v.page.TotalPages(total), total)
	return nil
}

// SetDocuments replaces the listed documents.
func (v *DocumentView) SetDocuments(docs []*models.StockDocument) {
	v.documents = docs

	rows := make([][]string, len(docs))
	for i, d := range docs {
		counterparty := d.Counterparty
		if counterparty == "" {
			counterparty = "-"
		}
		status := "draft"
		date := util.FormatDate(d.CreatedAt)
		if d.IsClosed() {
			status = "closed"
			date = util.FormatDate(*d.ClosedAt)
		}
		rows[i] = []string{
			d.Kind.Label(),
			counterparty,
			d.Total.StringFixed(2),
			status,
			date,
		}
	}
	v.table.SetRows(rows)
}

// CycleKind steps the kind filter through every document kind.
func (v *DocumentView) CycleKind() {
	v.kindIdx = (v.kindIdx + 1) % len(kindCycle)
	v.page.Page = 1
	v.table.GoToTop()
}

// NextPage moves to the next page.
func (v *DocumentView) NextPage() {
	v.page.Page++
}

// PrevPage moves to the previous page.
func (v *DocumentView) PrevPage() {
	if v.page.Page > 1 {
		v.page.Page--
	}
}

// MoveUp moves the selection up.
func (v *DocumentView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *DocumentView) MoveDown() {
	v.table.MoveDown()
}

// Selected returns the highlighted document.
func (v *DocumentView) Selected() *models.StockDocument {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.documents) {
		return v.documents[idx]
	}
	return nil
}

// LoadDetail loads the highlighted document with its items.
func (v *DocumentView) LoadDetail(ctx context.Context) error {
	sel := v.Selected()
	if sel == nil {
		return nil
	}
	doc, err := v.service.GetDocument(ctx, sel.ID)
	if err != nil {
		return err
	}
	v.detail = doc
	return nil
}

// Detail returns the loaded document.
func (v *DocumentView) Detail() *models.StockDocument {
	return v.detail
}

// CloseSelected applies the highlighted draft to inventory.
func (v *DocumentView) CloseSelected(ctx context.Context) (*models.StockDocument, error) {
	sel := v.Selected()
	if sel == nil {
		return nil, nil
	}
	doc, err := v.service.CloseDocument(ctx, sel.ID)
	if err != nil {
		return nil, err
	}
	v.detail = doc
	return doc, v.Load(ctx)
}

// CloneSelected copies the highlighted entrance or out document into a new
// draft.
func (v *DocumentView) CloneSelected(ctx context.Context) (*models.StockDocument, error) {
	sel := v.Selected()
	if sel == nil {
		return nil, nil
	}
	doc, err := v.service.CloneDocument(ctx, sel.ID)
	if err != nil {
		return nil, err
	}
	return doc, v.Load(ctx)
}

// Render renders the document list.
func (v *DocumentView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	if height > 12 {
		v.table.SetVisibleRows(height - 10)
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== STOCK DOCUMENTS ==="))
	b.WriteString("\n\n")

	kind := "all"
	if k := kindCycle[v.kindIdx]; k != nil {
		kind = k.Label()
	}
	b.WriteString(labelStyle.Render("Kind: "))
	b.WriteString(valueStyle.Render(kind))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(labelStyle.Render("No documents found."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.Render())
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(helpStyle.Render("x:Close n:Clone k:Kind"))
	} else {
		b.WriteString(helpStyle.Render("Enter:Detail  x:Close  n:Clone  k:Kind  PgUp/Dn:Page"))
	}

	return b.String()
}

// RenderDetail renders the loaded document.
func (v *DocumentView) RenderDetail() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	doc := v.detail
	if doc == nil {
		return helpStyle.Render("No document selected")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("=== " + doc.Kind.Label() + " ==="))
	b.WriteString("\n\n")

	if doc.Counterparty != "" {
		b.WriteString(labelStyle.Render("Counterparty:") + " " + valueStyle.Render(doc.Counterparty) + "\n")
	}
	if doc.ProductType != nil {
		b.WriteString(labelStyle.Render("Scope:") + " " + valueStyle.Render(doc.ProductType.Label()) + "\n")
	}
	b.WriteString(labelStyle.Render("Created:") + " " + valueStyle.Render(util.FormatDateTime(doc.CreatedAt)) + "\n")
	if doc.ClosedAt != nil {
		b.WriteString(labelStyle.Render("Closed:") + " " + valueStyle.Render(util.FormatDateTime(*doc.ClosedAt)) + "\n")
	}
	b.WriteString(labelStyle.Render("Total:") + " " + valueStyle.Render(doc.Total.StringFixed(2)) + "\n")
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("ITEMS"))
	b.WriteString("\n")

	var columns []components.Column
	if doc.Kind == models.DocumentStocktaking {
		columns = []components.Column{
			{Title: "Product", Width: 22},
			{Title: "Stock", Width: 9, Align: lipgloss.Right},
			{Title: "Real", Width: 9, Align: lipgloss.Right},
			{Title: "Diff", Width: 9, Align: lipgloss.Right},
			{Title: "Price", Width: 9, Align: lipgloss.Right},
		}
	} else {
		columns = []components.Column{
			{Title: "Product", Width: 22},
			{Title: "Quantity", Width: 10, Align: lipgloss.Right},
			{Title: "Price", Width: 9, Align: lipgloss.Right},
			{Title: "Total", Width: 11, Align: lipgloss.Right},
		}
	}
	table := components.NewTable(columns)
	table.SetVisibleRows(len(doc.Items) + 1)

	rows := make([][]string, len(doc.Items))
	for i, item := range doc.Items {
		name := item.ProductID
		if item.Product != nil {
			name = item.Product.Name
		}
		if doc.Kind == models.DocumentStocktaking {
			rows[i] = []string{name, item.StockQuantity.String(), item.RealQuantity.String(),
				item.Variance().String(), item.Price.StringFixed(2)}
		} else {
			rows[i] = []string{name, item.Quantity.String(), item.Price.StringFixed(2), item.Total.StringFixed(2)}
		}
	}
	table.SetRows(rows)
	b.WriteString(table.Render())

	b.WriteString("\n")
	var help []string
	help = append(help, "Esc:Back")
	if !doc.IsClosed() {
		help = append(help, "x:Close")
	}
	if doc.Kind.Cloneable() {
		help = append(help, "n:Clone")
	}
	b.WriteString(helpStyle.Render(strings.Join(help, "  ")))

	return b.String()
}

// Table exposes the list table for theming.
func (v *DocumentView) Table() *components.Table {
	return v.table
}
