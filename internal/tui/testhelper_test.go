package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/config"
	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
	"github.com/habibGamal/preparation-system/internal/util"
)

var testTime = time.Date(2025, 3, 14, 6, 30, 0, 0, time.UTC)

// newTestApp creates an App backed by a migrated in-memory database. The
// window is set to 120x40 and marked ready.
func newTestApp(t *testing.T) *App {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	app := New(db, config.Default(), util.NewFixedClock(testTime))

	app.width = 120
	app.height = 40
	app.ready = true

	return app
}

// send delivers msg to the app and runs the resulting commands to completion.
func send(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	drain(app, cmd)
}

// drain runs cmd synchronously and feeds its messages back into the app.
// Ticks are dropped so tests never wait on the clock.
func drain(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil, tickMsg, tea.QuitMsg:
	case tea.BatchMsg:
		for _, c := range msg {
			drain(app, c)
		}
	default:
		_, next := app.Update(msg)
		drain(app, next)
	}
}

// keyMsg creates a tea.KeyMsg for a regular character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// specialKeyMsg creates a tea.KeyMsg for a special key type.
func specialKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}

// seedBakery creates bread and flour with three completed orders at a flour
// rate of 0.25 per loaf, which builds the bread recipe, plus one draft using
// 8 flour for 20 loaves.
func seedBakery(t *testing.T, app *App) (bread, flour *models.Product) {
	t.Helper()
	ctx := context.Background()
	clock := app.clock.(*util.FixedClock)

	var err error
	bread, err = app.inventorySvc.CreateProduct(ctx, inventory.ProductInput{
		Name: "عيش بلدي", Type: models.ProductTypeManufactured, Unit: models.UnitPiece,
	})
	if err != nil {
		t.Fatal(err)
	}
	flour, err = app.inventorySvc.CreateProduct(ctx, inventory.ProductInput{
		Name: "دقيق", Type: models.ProductTypeRaw, Unit: models.UnitKilogram,
		MinStock: 50,
	})
	if err != nil {
		t.Fatal(err)
	}

	settings := models.DefaultSettings()
	for range 3 {
		clock.Advance(time.Hour)
		order, err := app.orderSvc.CreateOrder(ctx, manufacturing.OrderInput{
			ProductID:      bread.ID,
			OutputQuantity: decimal.NewFromInt(20),
			Items:          []manufacturing.ItemInput{{ProductID: flour.ID, Quantity: decimal.NewFromInt(5)}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := app.orderSvc.CompleteOrder(ctx, order.ID, settings); err != nil {
			t.Fatal(err)
		}
	}

	clock.Advance(time.Hour)
	if _, err := app.orderSvc.CreateOrder(ctx, manufacturing.OrderInput{
		ProductID:      bread.ID,
		OutputQuantity: decimal.NewFromInt(20),
		Items:          []manufacturing.ItemInput{{ProductID: flour.ID, Quantity: decimal.NewFromInt(8)}},
	}); err != nil {
		t.Fatal(err)
	}

	return bread, flour
}
