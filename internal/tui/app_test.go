package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/habibGamal/preparation-system/internal/models"
)

func TestModule_String(t *testing.T) {
	tests := []struct {
		module Module
		want   string
	}{
		{ModuleDashboard, "dashboard"},
		{ModuleRecipes, "recipes"},
		{ModuleDocuments, "documents"},
		{ModuleQuit, "quit"},
		{Module(42), "module(42)"},
	}
	for _, tt := range tests {
		if got := tt.module.String(); got != tt.want {
			t.Errorf("Module(%d).String() = %q, want %q", int(tt.module), got, tt.want)
		}
	}
}

func TestApp_ViewBeforeReady(t *testing.T) {
	app := newTestApp(t)
	app.ready = false

	if got := app.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}

	send(app, tea.WindowSizeMsg{Width: 100, Height: 30})
	if !app.ready || app.width != 100 || app.height != 30 {
		t.Errorf("window size not applied: ready=%v %dx%d", app.ready, app.width, app.height)
	}
}

func TestApp_DashboardEmpty(t *testing.T) {
	app := newTestApp(t)
	drain(app, app.loadSettings())

	view := app.View()
	for _, want := range []string{"PREPARATION SYSTEM", "PRODUCTION OVERVIEW", "No recipes yet", "[F10]Quit", "Ready"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in dashboard:\n%s", want, view)
		}
	}
}

func TestApp_DashboardOverview(t *testing.T) {
	app := newTestApp(t)
	seedBakery(t, app)
	drain(app, app.loadSettings())

	ov := app.overview
	if ov.rawProducts != 1 || ov.manufacturedProducts != 1 {
		t.Errorf("product counts = %d raw, %d manufactured", ov.rawProducts, ov.manufacturedProducts)
	}
	if ov.completedOrders != 3 || ov.draftOrders != 1 {
		t.Errorf("order counts = %d completed, %d draft", ov.completedOrders, ov.draftOrders)
	}
	if ov.lowStock != 1 {
		t.Errorf("lowStock = %d, want 1", ov.lowStock)
	}
	if len(ov.recipes) != 1 || ov.recipes[0].status.CompletedOrders != 3 {
		t.Fatalf("recipes = %+v", ov.recipes)
	}

	view := app.View()
	for _, want := range []string{"RECIPE LEARNING", "عيش بلدي", "3/10", "learning"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in dashboard:\n%s", want, view)
		}
	}
}

func TestApp_ModuleNavigation(t *testing.T) {
	tests := []struct {
		name   string
		key    tea.KeyType
		module Module
		title  string
	}{
		{"recipes", tea.KeyF3, ModuleRecipes, "RECIPES"},
		{"orders", tea.KeyF4, ModuleOrders, "MANUFACTURING ORDERS"},
		{"inventory", tea.KeyF5, ModuleInventory, "INVENTORY"},
		{"documents", tea.KeyF6, ModuleDocuments, "STOCK DOCUMENTS"},
		{"settings", tea.KeyF7, ModuleSettings, "RECIPE SETTINGS"},
		{"dashboard", tea.KeyF2, ModuleDashboard, "PRODUCTION OVERVIEW"},
	}

	app := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(app, specialKeyMsg(tt.key))
			if app.currentModule != tt.module {
				t.Errorf("currentModule = %s, want %s", app.currentModule, tt.module)
			}
			if !strings.Contains(app.View(), tt.title) {
				t.Errorf("expected %q in view", tt.title)
			}
		})
	}
}

func TestApp_HelpAndBack(t *testing.T) {
	app := newTestApp(t)
	send(app, specialKeyMsg(tea.KeyF4))

	send(app, keyMsg("?"))
	if app.currentModule != ModuleHelp {
		t.Fatalf("currentModule = %s, want help", app.currentModule)
	}
	view := app.View()
	for _, want := range []string{"HELP", "MODULES", "CONTROLS", "complete order", "Press Esc to return"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in help", want)
		}
	}

	// F1 again keeps the original module to return to.
	send(app, specialKeyMsg(tea.KeyF1))
	send(app, specialKeyMsg(tea.KeyEscape))
	if app.currentModule != ModuleOrders {
		t.Errorf("currentModule = %s, want orders", app.currentModule)
	}
}

func TestApp_QuitConfirm(t *testing.T) {
	t.Run("cancel", func(t *testing.T) {
		app := newTestApp(t)
		send(app, keyMsg("q"))
		if !app.showConfirm {
			t.Fatal("expected confirm dialog")
		}
		if !strings.Contains(app.View(), "CONFIRM EXIT") {
			t.Error("expected dialog in view")
		}

		// Other keys are swallowed while the dialog is open.
		send(app, specialKeyMsg(tea.KeyF3))
		if app.currentModule != ModuleDashboard {
			t.Errorf("module changed behind dialog: %s", app.currentModule)
		}

		send(app, keyMsg("n"))
		if app.showConfirm || app.quitting {
			t.Error("expected dialog closed without quitting")
		}
	})

	t.Run("confirm", func(t *testing.T) {
		app := newTestApp(t)
		send(app, specialKeyMsg(tea.KeyF10))
		if !app.showConfirm {
			t.Fatal("expected confirm dialog from F10")
		}

		_, cmd := app.Update(keyMsg("y"))
		if !app.quitting {
			t.Error("expected quitting")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.Quit command")
		}
		if !strings.Contains(app.View(), "shutting down") {
			t.Error("expected shutdown text")
		}
	})
}

func TestApp_CompleteOrderRaisesVarianceAlerts(t *testing.T) {
	app := newTestApp(t)
	seedBakery(t, app)
	drain(app, app.loadSettings())

	send(app, specialKeyMsg(tea.KeyF4))
	send(app, keyMsg("f"))
	if f := app.orderView.Filter(); f == nil || *f != models.OrderStatusDraft {
		t.Fatalf("filter = %v, want draft", f)
	}

	send(app, keyMsg("c"))

	if len(app.alerts) < 2 {
		t.Fatalf("alerts = %+v", app.alerts)
	}
	summary := app.alerts[0]
	if summary.Level != AlertWarning || !strings.Contains(summary.Message, "1 variance warning") {
		t.Errorf("summary alert = %+v", summary)
	}
	if !strings.Contains(app.alerts[1].Message, "دقيق") {
		t.Errorf("variance alert = %+v", app.alerts[1])
	}
	if app.overview.completedOrders != 4 {
		t.Errorf("overview not refreshed, completed = %d", app.overview.completedOrders)
	}
	if !strings.Contains(app.View(), "WARNING:") {
		t.Error("expected warning in alert bar")
	}
}

func TestApp_RecipeDetailAndRecalculate(t *testing.T) {
	app := newTestApp(t)
	seedBakery(t, app)
	drain(app, app.loadSettings())

	send(app, specialKeyMsg(tea.KeyF3))
	send(app, specialKeyMsg(tea.KeyEnter))
	if !app.showDetail {
		t.Fatalf("expected detail, alerts = %+v", app.alerts)
	}
	view := app.View()
	for _, want := range []string{"RECIPE: عيش بلدي", "دقيق", "0.25", "3 / 10", "updating"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in detail:\n%s", want, view)
		}
	}

	send(app, keyMsg("r"))
	if got := app.alerts[0]; got.Level != AlertInfo || got.Message != "Recipe recalculated" {
		t.Errorf("alert = %+v", got)
	}

	send(app, specialKeyMsg(tea.KeyEscape))
	if app.showDetail {
		t.Error("expected Esc to close detail")
	}
}

func TestApp_RecalculateNeedsOrders(t *testing.T) {
	app := newTestApp(t)
	seedBakery(t, app)

	// Raising the minimum above the completed count blocks recalculation.
	app.settings.MinimumOrders = 5
	send(app, specialKeyMsg(tea.KeyF3))
	send(app, keyMsg("r"))

	if got := app.alerts[0]; got.Level != AlertWarning || !strings.Contains(got.Message, "need 5") {
		t.Errorf("alert = %+v", got)
	}
}

func TestApp_InventorySearch(t *testing.T) {
	app := newTestApp(t)
	seedBakery(t, app)

	send(app, specialKeyMsg(tea.KeyF5))
	if app.productView.Table().RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", app.productView.Table().RowCount())
	}

	send(app, keyMsg("/"))
	if !app.searchMode {
		t.Fatal("expected search mode")
	}
	send(app, keyMsg("دق"))
	if !strings.Contains(app.View(), "SEARCH: دق_") {
		t.Error("expected search prompt")
	}

	// q is text while searching.
	send(app, keyMsg("q"))
	send(app, specialKeyMsg(tea.KeyBackspace))
	if app.showConfirm {
		t.Fatal("q should not quit in search mode")
	}

	send(app, specialKeyMsg(tea.KeyEnter))
	if app.searchMode {
		t.Error("expected search mode closed")
	}
	if app.productView.Table().RowCount() != 1 {
		t.Errorf("rows after search = %d, want 1", app.productView.Table().RowCount())
	}

	send(app, keyMsg("/"))
	send(app, specialKeyMsg(tea.KeyEscape))
	if app.productView.Table().RowCount() != 2 {
		t.Errorf("rows after clearing = %d, want 2", app.productView.Table().RowCount())
	}
}

func TestApp_SettingsSave(t *testing.T) {
	app := newTestApp(t)
	drain(app, app.loadSettings())

	send(app, specialKeyMsg(tea.KeyF7))
	// q belongs to the form here.
	send(app, keyMsg("q"))
	if app.showConfirm {
		t.Fatal("q should not quit inside the settings form")
	}
	send(app, specialKeyMsg(tea.KeyBackspace))

	send(app, specialKeyMsg(tea.KeyBackspace))
	send(app, keyMsg("4"))
	send(app, specialKeyMsg(tea.KeyCtrlS))

	if app.settings.MinimumOrders != 4 {
		t.Errorf("cached minimum = %d, want 4", app.settings.MinimumOrders)
	}
	if got := app.alerts[0].Message; got != "1 setting(s) saved" {
		t.Errorf("alert = %q", got)
	}

	send(app, specialKeyMsg(tea.KeyBackspace))
	send(app, keyMsg("x"))
	send(app, specialKeyMsg(tea.KeyCtrlS))
	if app.alerts[0].Level != AlertWarning {
		t.Errorf("expected failed save alert, got %+v", app.alerts[0])
	}
	if app.settings.MinimumOrders != 4 {
		t.Errorf("failed save changed cached minimum to %d", app.settings.MinimumOrders)
	}

	// Esc discards the bad edit.
	send(app, specialKeyMsg(tea.KeyEscape))
	if vals := app.settingsEdit.Values(); len(vals) != 0 {
		t.Errorf("expected edits discarded, got %v", vals)
	}
}

func TestApp_AddAlertKeepsHistoryBounded(t *testing.T) {
	app := newTestApp(t)
	for i := range maxAlerts + 5 {
		app.AddAlert(AlertInfo, strings.Repeat("x", i+1))
	}
	if len(app.alerts) != maxAlerts {
		t.Errorf("alerts = %d, want %d", len(app.alerts), maxAlerts)
	}
	if got := len(app.alerts[0].Message); got != maxAlerts+5 {
		t.Errorf("newest alert length = %d", got)
	}
	if !app.alerts[0].Time.Equal(testTime) {
		t.Errorf("alert time = %v, want %v", app.alerts[0].Time, testTime)
	}

	app.ClearAlerts()
	if len(app.alerts) != 0 {
		t.Error("expected alerts cleared")
	}
}

func TestApp_NarrowLayout(t *testing.T) {
	app := newTestApp(t)
	send(app, tea.WindowSizeMsg{Width: 50, Height: 30})

	view := app.View()
	if !strings.Contains(view, "PREP v") {
		t.Error("expected compact header")
	}
	if !strings.Contains(view, "[F1]Help [F10]Quit") {
		t.Error("expected compact footer")
	}
}
