package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
	"github.com/habibGamal/preparation-system/internal/services/recipes"
	"github.com/habibGamal/preparation-system/internal/testutil"
	"github.com/habibGamal/preparation-system/internal/util"
)

func TestOrderView_EmptyRender(t *testing.T) {
	view := NewOrderView(nil)
	output := view.Render(120, 40)

	for _, want := range []string{"MANUFACTURING ORDERS", "Status: all", "No orders found", "PgUp/Dn:Page"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if !strings.Contains(view.Render(50, 40), "c:Done") {
		t.Error("expected compact help text on narrow terminal")
	}
}

func TestOrderView_CycleFilter(t *testing.T) {
	view := NewOrderView(nil)

	want := []*models.OrderStatus{ptr(models.OrderStatusDraft), ptr(models.OrderStatusCompleted), nil}
	for i, w := range want {
		view.CycleFilter()
		got := view.Filter()
		if (got == nil) != (w == nil) || (got != nil && *got != *w) {
			t.Errorf("step %d: filter = %v, want %v", i, got, w)
		}
	}
}

func TestOrderView_RenderDetail(t *testing.T) {
	view := NewOrderView(nil)
	if !strings.Contains(view.RenderDetail(), "No order selected") {
		t.Error("expected placeholder without detail")
	}

	view.detail = &models.ManufacturingOrder{
		Status:         models.OrderStatusDraft,
		OutputQuantity: testutil.Dec("40"),
		Product:        &models.Product{Name: "كيك"},
		Items: []*models.OrderItem{
			{ProductID: "flour", Quantity: testutil.Dec("12"), Product: &models.Product{Name: "دقيق"}},
		},
	}
	view.warnings = []models.VarianceWarning{
		{Type: models.WarningRawMaterial, Message: "دقيق: متوقع 10، فعلي 12 (انحراف 20%)"},
	}

	output := view.RenderDetail()
	for _, want := range []string{"ORDER DETAILS", "كيك", "40", "دقيق", "انحراف 20%", "c:Complete"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in detail output:\n%s", want, output)
		}
	}

	view.warnings = nil
	view.detail.Status = models.OrderStatusCompleted
	output = view.RenderDetail()
	if !strings.Contains(output, "Within recipe.") {
		t.Error("expected clean variance message")
	}
	if strings.Contains(output, "c:Complete") {
		t.Error("completed orders should not offer completion")
	}
}

func TestOrderView_CompleteAndClone(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Close(t) })

	clock := util.NewFixedClock(time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC))
	inv := inventory.NewService(db.DB, inventory.WithClock(clock))
	mfg := manufacturing.NewService(db.DB, recipes.NewService(db.DB, recipes.WithClock(clock)), manufacturing.WithClock(clock))
	settings := models.DefaultSettings()

	cake, err := inv.CreateProduct(ctx, inventory.ProductInput{Name: "Cake", Type: models.ProductTypeManufactured, Unit: models.UnitPiece})
	if err != nil {
		t.Fatal(err)
	}
	sugar, err := inv.CreateProduct(ctx, inventory.ProductInput{Name: "Sugar", Type: models.ProductTypeRaw, Unit: models.UnitKilogram})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mfg.CreateOrder(ctx, manufacturing.OrderInput{
		ProductID:      cake.ID,
		OutputQuantity: testutil.Dec("8"),
		Items:          []manufacturing.ItemInput{{ProductID: sugar.ID, Quantity: testutil.Dec("2")}},
	}); err != nil {
		t.Fatal(err)
	}

	view := NewOrderView(mfg)
	if err := view.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	order, warnings, err := view.CompleteSelected(ctx, settings)
	if err != nil {
		t.Fatalf("CompleteSelected: %v", err)
	}
	if !order.IsCompleted() {
		t.Errorf("status = %s, want completed", order.Status)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings without a recipe, got %+v", warnings)
	}

	if _, _, err := view.CompleteSelected(ctx, settings); err == nil {
		t.Error("expected completing a completed order to fail")
	}

	clone, err := view.CloneSelected(ctx)
	if err != nil {
		t.Fatalf("CloneSelected: %v", err)
	}
	if !clone.IsDraft() || clone.ID == order.ID {
		t.Errorf("clone = %+v", clone)
	}
	if view.table.RowCount() != 2 {
		t.Errorf("rows = %d, want 2", view.table.RowCount())
	}
}
