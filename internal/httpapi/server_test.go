package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
	"github.com/habibGamal/preparation-system/internal/services/recipes"
	"github.com/habibGamal/preparation-system/internal/services/settings"
	"github.com/habibGamal/preparation-system/internal/testutil"
	"github.com/habibGamal/preparation-system/internal/util"
)

type apiTest struct {
	t      *testing.T
	server *Server
	health *stubHealth
}

type stubHealth struct {
	err   error
	stats *database.Stats
}

func (h *stubHealth) HealthCheck(context.Context) error { return h.err }

func (h *stubHealth) GetStats(context.Context) (*database.Stats, error) { return h.stats, nil }

func setupAPITest(t *testing.T) *apiTest {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Close(t) })

	clock := util.NewFixedClock(time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC))
	recipeSvc := recipes.NewService(db.DB, recipes.WithClock(clock))
	health := &stubHealth{}

	srv := NewServer(Services{
		Inventory:     inventory.NewService(db.DB, inventory.WithClock(clock)),
		Manufacturing: manufacturing.NewService(db.DB, recipeSvc, manufacturing.WithClock(clock)),
		Recipes:       recipeSvc,
		Settings:      settings.NewService(db.DB, models.DefaultSettings(), nil),
		Health:        health,
	}, nil)

	return &apiTest{t: t, server: srv, health: health}
}

func (a *apiTest) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.server.ServeHTTP(rr, req)
	return rr
}

// must performs a request, checks the status and decodes the response into out.
func (a *apiTest) must(method, path string, body any, status int, out any) {
	a.t.Helper()
	rr := a.do(method, path, body)
	if rr.Code != status {
		a.t.Fatalf("%s %s = %d, want %d: %s", method, path, rr.Code, status, rr.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
}

func (a *apiTest) product(name string, typ models.ProductType, unit models.ProductUnit) *models.Product {
	a.t.Helper()
	var p models.Product
	a.must(http.MethodPost, "/api/products", map[string]any{
		"name": name, "type": typ, "unit": unit, "price": "10", "cost": "8",
	}, http.StatusCreated, &p)
	return &p
}

func (a *apiTest) stockIn(p *models.Product, qty string) {
	a.t.Helper()
	var doc models.StockDocument
	a.must(http.MethodPost, "/api/documents", map[string]any{
		"kind":  models.DocumentRawEntrance,
		"items": []map[string]any{{"product_id": p.ID, "quantity": qty, "price": "1"}},
	}, http.StatusCreated, &doc)
	a.must(http.MethodPost, "/api/documents/"+doc.ID+"/close", nil, http.StatusOK, nil)
}

func (a *apiTest) completedOrder(product *models.Product, output string, items map[string]string) *models.ManufacturingOrder {
	a.t.Helper()
	var lines []map[string]string
	for id, qty := range items {
		lines = append(lines, map[string]string{"product_id": id, "quantity": qty})
	}
	var o models.ManufacturingOrder
	a.must(http.MethodPost, "/api/orders", map[string]any{
		"product_id": product.ID, "output_quantity": output, "items": lines,
	}, http.StatusCreated, &o)
	a.must(http.MethodPost, "/api/orders/"+o.ID+"/complete", nil, http.StatusOK, &o)
	return &o
}

func TestHealth(t *testing.T) {
	a := setupAPITest(t)

	a.health.stats = &database.Stats{Path: "prep.db", SchemaVersion: 4, JournalMode: "wal"}
	var resp healthResponse
	a.must(http.MethodGet, "/healthz", nil, http.StatusOK, &resp)
	if resp.Status != "ok" || resp.Database == nil {
		t.Fatalf("health = %+v", resp)
	}
	if resp.Database.SchemaVersion != 4 || resp.Database.JournalMode != "wal" {
		t.Errorf("database stats = %+v", resp.Database)
	}

	a.health.err = errors.New("disk gone")
	a.must(http.MethodGet, "/healthz", nil, http.StatusServiceUnavailable, nil)
}

func TestRecipeLifecycle(t *testing.T) {
	a := setupAPITest(t)

	bread := a.product("Bread", models.ProductTypeManufactured, models.UnitPiece)
	flour := a.product("Flour", models.ProductTypeRaw, models.UnitKilogram)
	a.stockIn(flour, "100")

	t.Run("no recipe yet", func(t *testing.T) {
		a.must(http.MethodGet, "/api/products/"+bread.ID+"/recipe", nil, http.StatusNotFound, nil)
		a.must(http.MethodPost, "/api/products/"+bread.ID+"/recipe/calculate", nil, http.StatusNoContent, nil)
	})

	for range 3 {
		a.completedOrder(bread, "10", map[string]string{flour.ID: "5"})
	}

	t.Run("recipe after three orders", func(t *testing.T) {
		var recipe models.Recipe
		a.must(http.MethodGet, "/api/products/"+bread.ID+"/recipe", nil, http.StatusOK, &recipe)
		if recipe.CalculatedFromOrdersCount != 3 || len(recipe.Items) != 1 {
			t.Fatalf("recipe = %+v", recipe)
		}
		if !recipe.Items[0].ConsumptionRate.Equal(testutil.Dec("0.5")) {
			t.Errorf("rate = %s, want 0.5", recipe.Items[0].ConsumptionRate)
		}
	})

	t.Run("status", func(t *testing.T) {
		var status struct {
			CompletedOrders int  `json:"completed_orders"`
			HasEnoughOrders bool `json:"has_enough_orders"`
			Frozen          bool `json:"frozen"`
		}
		a.must(http.MethodGet, "/api/products/"+bread.ID+"/recipe/status", nil, http.StatusOK, &status)
		if status.CompletedOrders != 3 || !status.HasEnoughOrders || status.Frozen {
			t.Errorf("status = %+v", status)
		}
	})

	t.Run("variance", func(t *testing.T) {
		o := a.completedOrder(bread, "10", map[string]string{flour.ID: "8"})

		var warnings []models.VarianceWarning
		a.must(http.MethodGet, "/api/orders/"+o.ID+"/variance", nil, http.StatusOK, &warnings)
		if len(warnings) != 1 || warnings[0].Type != models.WarningRawMaterial {
			t.Fatalf("warnings = %+v", warnings)
		}
	})

	t.Run("calculate with limit", func(t *testing.T) {
		var recipe models.Recipe
		a.must(http.MethodPost, "/api/products/"+bread.ID+"/recipe/calculate?max_orders=3", nil, http.StatusOK, &recipe)
		if recipe.CalculatedFromOrdersCount != 3 {
			t.Errorf("count = %d, want 3", recipe.CalculatedFromOrdersCount)
		}
		a.must(http.MethodPost, "/api/products/"+bread.ID+"/recipe/calculate?max_orders=x", nil, http.StatusBadRequest, nil)
	})
}

func TestErrorMapping(t *testing.T) {
	a := setupAPITest(t)

	bread := a.product("Bread", models.ProductTypeManufactured, models.UnitPiece)
	flour := a.product("Flour", models.ProductTypeRaw, models.UnitKilogram)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown order", http.MethodGet, "/api/orders/missing", nil, http.StatusNotFound},
		{"unknown product", http.MethodGet, "/api/products/missing/recipe", nil, http.StatusNotFound},
		{"invalid order", http.MethodPost, "/api/orders", map[string]any{
			"product_id": flour.ID, "output_quantity": "1",
		}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/products", map[string]any{"colour": "red"}, http.StatusBadRequest},
		{"bad filter", http.MethodGet, "/api/orders?status=burnt", nil, http.StatusBadRequest},
		{"bad setting", http.MethodPut, "/api/settings", map[string]string{
			string(models.SettingMinimumOrdersForRecipe): "zero",
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do(tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, rr.Code, tt.status, rr.Body.String())
			}
			if !strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
				t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
			}
		})
	}

	t.Run("conflict after completion", func(t *testing.T) {
		o := a.completedOrder(bread, "1", nil)
		a.must(http.MethodPost, "/api/orders/"+o.ID+"/complete", nil, http.StatusConflict, nil)
		a.must(http.MethodDelete, "/api/orders/"+o.ID, nil, http.StatusConflict, nil)
	})
}

func TestDocumentsAndSettings(t *testing.T) {
	a := setupAPITest(t)
	flour := a.product("Flour", models.ProductTypeRaw, models.UnitKilogram)

	t.Run("entrance moves stock", func(t *testing.T) {
		a.stockIn(flour, "12.5")

		var p models.Product
		a.must(http.MethodGet, "/api/products/"+flour.ID, nil, http.StatusOK, &p)
		if p.Inventory == nil || !p.Inventory.Quantity.Equal(testutil.Dec("12.5")) {
			t.Errorf("inventory = %+v", p.Inventory)
		}

		var list listResponse[*models.StockDocument]
		a.must(http.MethodGet, "/api/documents?status=closed", nil, http.StatusOK, &list)
		if list.Total != 1 {
			t.Fatalf("closed documents = %d, want 1", list.Total)
		}

		var clone models.StockDocument
		a.must(http.MethodPost, "/api/documents/"+list.Items[0].ID+"/clone", nil, http.StatusCreated, &clone)
		if clone.Status != models.DocumentStatusDraft {
			t.Errorf("clone status = %s", clone.Status)
		}
		a.must(http.MethodPost, "/api/documents/"+list.Items[0].ID+"/close", nil, http.StatusConflict, nil)
	})

	t.Run("settings override", func(t *testing.T) {
		var values map[string]string
		a.must(http.MethodPut, "/api/settings", map[string]string{
			string(models.SettingMinimumOrdersForRecipe): "2",
		}, http.StatusOK, &values)
		if values[string(models.SettingMinimumOrdersForRecipe)] != "2" {
			t.Errorf("values = %v", values)
		}

		a.must(http.MethodGet, "/api/settings", nil, http.StatusOK, &values)
		if values[string(models.SettingMinimumOrdersForRecipe)] != "2" {
			t.Errorf("effective = %v", values)
		}
	})
}
