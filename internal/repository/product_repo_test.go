package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/testutil"
)

func setupTestDB(t *testing.T) *testutil.TestDB {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Close(t) })
	return db
}

func mustCreateProduct(t *testing.T, repo *ProductRepository, p *models.Product, stock *decimal.Decimal) *models.Product {
	t.Helper()

	ctx := context.Background()
	if err := repo.Create(ctx, nil, p); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	if stock != nil {
		if err := repo.CreateInventory(ctx, nil, testutil.FixtureInventory(p.ID, *stock)); err != nil {
			t.Fatalf("failed to create inventory: %v", err)
		}
	}
	return p
}

func decPtr(s string) *decimal.Decimal {
	d := testutil.Dec(s)
	return &d
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db.DB)
	ctx := context.Background()

	t.Run("Get product with inventory", func(t *testing.T) {
		p := mustCreateProduct(t, repo, testutil.FixtureProduct(func(p *models.Product) {
			p.Barcode = testutil.StringPtr("622100")
			p.Price = testutil.Dec("12.75")
		}), decPtr("40.5"))

		found, err := repo.GetByID(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("GetByID() = %v", err)
		}
		if found.Name != p.Name || found.Type != models.ProductTypeRaw {
			t.Errorf("got %s/%s, want %s/raw", found.Name, found.Type, p.Name)
		}
		if found.Barcode == nil || *found.Barcode != "622100" {
			t.Errorf("Barcode = %v", found.Barcode)
		}
		if !found.Price.Equal(testutil.Dec("12.75")) {
			t.Errorf("Price = %s", found.Price)
		}
		if found.Inventory == nil || !found.Inventory.Quantity.Equal(testutil.Dec("40.5")) {
			t.Errorf("Inventory = %+v", found.Inventory)
		}
	})

	t.Run("Get product without inventory", func(t *testing.T) {
		p := mustCreateProduct(t, repo, testutil.FixtureProduct(), nil)

		found, err := repo.GetByID(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("GetByID() = %v", err)
		}
		if found.Inventory != nil {
			t.Errorf("Inventory = %+v, want nil", found.Inventory)
		}
	})

	t.Run("Get missing product", func(t *testing.T) {
		_, err := repo.GetByID(ctx, nil, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetByID() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Invalid type rejected by schema", func(t *testing.T) {
		p := testutil.FixtureProduct(func(p *models.Product) { p.Type = "service" })
		if err := repo.Create(ctx, nil, p); err == nil {
			t.Error("expected error for invalid product type")
		}
	})
}

func TestProductRepository_GetByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db.DB)

	a := mustCreateProduct(t, repo, testutil.FixtureRawMaterial("Sugar"), nil)
	b := mustCreateProduct(t, repo, testutil.FixtureRawMaterial("Salt"), nil)

	got, err := repo.GetByIDs(context.Background(), nil, []string{a.ID, b.ID, "missing"})
	if err != nil {
		t.Fatalf("GetByIDs() = %v", err)
	}
	if len(got) != 2 || got[a.ID] == nil || got[b.ID] == nil {
		t.Errorf("GetByIDs() = %v", got)
	}
}

func TestProductRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db.DB)
	ctx := context.Background()

	mustCreateProduct(t, repo, testutil.FixtureRawMaterial("Butter"), decPtr("1"))
	mustCreateProduct(t, repo, testutil.FixtureRawMaterial("Almonds"), decPtr("100"))
	mustCreateProduct(t, repo, testutil.FixtureManufactured(func(p *models.Product) { p.Name = "Croissant" }), decPtr("0"))

	t.Run("All ordered by name", func(t *testing.T) {
		list, err := repo.List(ctx, models.ProductFilter{}, models.DefaultPagination())
		if err != nil {
			t.Fatalf("List() = %v", err)
		}
		if list.Total != 3 {
			t.Fatalf("Total = %d, want 3", list.Total)
		}
		if list.Products[0].Name != "Almonds" {
			t.Errorf("first = %s, want Almonds", list.Products[0].Name)
		}
	})

	t.Run("Filter by type", func(t *testing.T) {
		raw := models.ProductTypeManufactured
		list, err := repo.List(ctx, models.ProductFilter{Type: &raw}, models.DefaultPagination())
		if err != nil {
			t.Fatalf("List() = %v", err)
		}
		if list.Total != 1 || list.Products[0].Name != "Croissant" {
			t.Errorf("got %d products", list.Total)
		}
	})

	t.Run("Low stock", func(t *testing.T) {
		list, err := repo.List(ctx, models.ProductFilter{LowStock: true}, models.DefaultPagination())
		if err != nil {
			t.Fatalf("List() = %v", err)
		}
		// Butter (1 < 5) and Croissant (0 < 5).
		if list.Total != 2 {
			t.Errorf("Total = %d, want 2", list.Total)
		}
	})

	t.Run("Name search", func(t *testing.T) {
		list, err := repo.List(ctx, models.ProductFilter{NameSearch: "mond"}, models.DefaultPagination())
		if err != nil {
			t.Fatalf("List() = %v", err)
		}
		if list.Total != 1 {
			t.Errorf("Total = %d, want 1", list.Total)
		}
	})
}

func TestProductRepository_Inventory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db.DB)
	ctx := context.Background()

	t.Run("Adjust existing row", func(t *testing.T) {
		p := mustCreateProduct(t, repo, testutil.FixtureProduct(), decPtr("10"))

		ok, err := repo.AdjustInventory(ctx, nil, p.ID, testutil.Dec("-2.5"))
		if err != nil || !ok {
			t.Fatalf("AdjustInventory() = %v, %v", ok, err)
		}
		inv, _ := repo.GetInventory(ctx, nil, p.ID)
		if !inv.Quantity.Equal(testutil.Dec("7.5")) {
			t.Errorf("Quantity = %s, want 7.5", inv.Quantity)
		}
	})

	t.Run("Adjust missing row is a no-op", func(t *testing.T) {
		p := mustCreateProduct(t, repo, testutil.FixtureProduct(), nil)

		ok, err := repo.AdjustInventory(ctx, nil, p.ID, testutil.Dec("5"))
		if err != nil {
			t.Fatalf("AdjustInventory() = %v", err)
		}
		if ok {
			t.Error("AdjustInventory() reported a change for a missing row")
		}
		if _, err := repo.GetInventory(ctx, nil, p.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetInventory() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("First or create", func(t *testing.T) {
		p := mustCreateProduct(t, repo, testutil.FixtureProduct(), nil)

		inv, err := repo.FirstOrCreateInventory(ctx, nil, p.ID, "inv-"+p.ID)
		if err != nil {
			t.Fatalf("FirstOrCreateInventory() = %v", err)
		}
		if !inv.Quantity.IsZero() {
			t.Errorf("Quantity = %s, want 0", inv.Quantity)
		}

		again, err := repo.FirstOrCreateInventory(ctx, nil, p.ID, "other")
		if err != nil {
			t.Fatalf("second FirstOrCreateInventory() = %v", err)
		}
		if again.ID != inv.ID {
			t.Errorf("ID = %s, want existing %s", again.ID, inv.ID)
		}
	})

	t.Run("Adjust inside transaction", func(t *testing.T) {
		p := mustCreateProduct(t, repo, testutil.FixtureProduct(), decPtr("3"))

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("failed to begin transaction: %v", err)
		}
		if _, err := repo.AdjustInventory(ctx, tx, p.ID, testutil.Dec("4")); err != nil {
			t.Fatalf("AdjustInventory() = %v", err)
		}
		tx.Rollback()

		inv, _ := repo.GetInventory(ctx, nil, p.ID)
		if !inv.Quantity.Equal(testutil.Dec("3")) {
			t.Errorf("Quantity after rollback = %s, want 3", inv.Quantity)
		}
	})
}
