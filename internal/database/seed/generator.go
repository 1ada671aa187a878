package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
	"github.com/habibGamal/preparation-system/internal/services/recipes"
	"github.com/habibGamal/preparation-system/internal/services/settings"
	"github.com/habibGamal/preparation-system/internal/util"
)

// Config configures the seed data generator.
type Config struct {
	// Start is the timestamp of the first generated record.
	Start time.Time
	// OrdersPerProduct is the number of completed orders per formula.
	OrdersPerProduct int
	// Jitter is the maximum relative deviation of a generated quantity from
	// its formula rate, for example 0.05 for five percent.
	Jitter     float64
	RandomSeed int64
	Settings   models.Settings
}

// DefaultConfig returns a default seed configuration.
func DefaultConfig() Config {
	return Config{
		Start:            time.Date(2025, 1, 4, 6, 0, 0, 0, time.UTC),
		OrdersPerProduct: 5,
		Jitter:           0.05,
		RandomSeed:       1404,
		Settings:         models.DefaultSettings(),
	}
}

// Summary counts what Generate created.
type Summary struct {
	Products        int
	CompletedOrders int
	DraftOrders     int
	Documents       int
	Recipes         int
}

// Generator generates demo data through the application services, so every
// record passes the same validation as user input.
type Generator struct {
	cfg   Config
	rng   *rand.Rand
	clock *util.FixedClock

	inventory     *inventory.Service
	manufacturing *manufacturing.Service
	recipes       *recipes.Service
	settings      *settings.Service

	// Tracking
	products map[string]*models.Product
	summary  Summary
}

// NewGenerator creates a new seed data generator.
func NewGenerator(db *sql.DB, cfg Config) *Generator {
	clock := util.NewFixedClock(cfg.Start)
	recipeSvc := recipes.NewService(db, recipes.WithClock(clock))

	return &Generator{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(cfg.RandomSeed)),
		clock:         clock,
		inventory:     inventory.NewService(db, inventory.WithClock(clock)),
		manufacturing: manufacturing.NewService(db, recipeSvc, manufacturing.WithClock(clock)),
		recipes:       recipeSvc,
		settings:      settings.NewService(db, cfg.Settings, nil),
		products:      make(map[string]*models.Product),
	}
}

// Generate creates all seed data.
func (g *Generator) Generate(ctx context.Context) (*Summary, error) {
	slog.Info("starting seed data generation",
		"materials", len(Materials),
		"formulas", len(Formulas),
		"orders_per_product", g.cfg.OrdersPerProduct,
	)

	if _, err := g.settings.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seeding settings: %w", err)
	}

	if err := g.generateCatalog(ctx); err != nil {
		return nil, fmt.Errorf("generating catalog: %w", err)
	}

	if err := g.generateOpeningStock(ctx); err != nil {
		return nil, fmt.Errorf("generating opening stock: %w", err)
	}

	for _, f := range Formulas {
		if err := g.generateOrders(ctx, f); err != nil {
			return nil, fmt.Errorf("generating orders for %s: %w", f.Name, err)
		}
	}

	if err := g.generateDrafts(ctx); err != nil {
		return nil, fmt.Errorf("generating draft documents: %w", err)
	}

	recipeList, err := g.recipes.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting recipes: %w", err)
	}
	g.summary.Recipes = len(recipeList)

	slog.Info("seed data generation complete",
		"products", g.summary.Products,
		"completed_orders", g.summary.CompletedOrders,
		"documents", g.summary.Documents,
		"recipes", g.summary.Recipes,
	)

	summary := g.summary
	return &summary, nil
}

// ============================================================================
// CATALOG AND STOCK
// ============================================================================

func (g *Generator) generateCatalog(ctx context.Context) error {
	for _, m := range Materials {
		p, err := g.inventory.CreateProduct(ctx, inventory.ProductInput{
			Name:     m.Name,
			Type:     models.ProductTypeRaw,
			Unit:     m.Unit,
			Cost:     decimal.RequireFromString(m.Cost),
			MinStock: m.MinStock,
		})
		if err != nil {
			return err
		}
		g.products[m.Name] = p
	}

	for _, f := range Formulas {
		p, err := g.inventory.CreateProduct(ctx, inventory.ProductInput{
			Name:  f.Name,
			Type:  models.ProductTypeManufactured,
			Unit:  f.Unit,
			Price: decimal.RequireFromString(f.Price),
		})
		if err != nil {
			return err
		}
		g.products[f.Name] = p
	}

	g.summary.Products = len(g.products)
	return nil
}

// generateOpeningStock receives every material on one closed entrance per
// supplier.
func (g *Generator) generateOpeningStock(ctx context.Context) error {
	bySupplier := make(map[string][]inventory.DocumentItemInput)
	for i, m := range Materials {
		supplier := Suppliers[i%len(Suppliers)]
		bySupplier[supplier] = append(bySupplier[supplier], inventory.DocumentItemInput{
			ProductID: g.products[m.Name].ID,
			Quantity:  decimal.RequireFromString(m.Opening),
			Price:     decimal.RequireFromString(m.Cost),
		})
	}

	for _, supplier := range Suppliers {
		items := bySupplier[supplier]
		if len(items) == 0 {
			continue
		}
		if _, err := g.closedDocument(ctx, inventory.DocumentInput{
			Kind:         models.DocumentRawEntrance,
			Counterparty: supplier,
			Notes:        "رصيد افتتاحي",
			Items:        items,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) closedDocument(ctx context.Context, input inventory.DocumentInput) (*models.StockDocument, error) {
	g.clock.Advance(15 * time.Minute)

	doc, err := g.inventory.CreateDocument(ctx, input)
	if err != nil {
		return nil, err
	}
	g.summary.Documents++
	return g.inventory.CloseDocument(ctx, doc.ID)
}

// ============================================================================
// MANUFACTURING
// ============================================================================

// generateOrders completes OrdersPerProduct batches of f and sells part of
// the output.
func (g *Generator) generateOrders(ctx context.Context, f Formula) error {
	product := g.products[f.Name]
	produced := decimal.Zero

	for range g.cfg.OrdersPerProduct {
		g.clock.Advance(time.Duration(18+g.rng.Intn(12)) * time.Hour)

		output := g.jitter(decimal.NewFromInt(int64(f.BatchSize)), 0)
		order, err := g.manufacturing.CreateOrder(ctx, manufacturing.OrderInput{
			ProductID:      product.ID,
			OutputQuantity: output,
			Items:          g.orderItems(f, output, 1),
		})
		if err != nil {
			return err
		}

		g.clock.Advance(3 * time.Hour)
		if err := g.manufacturing.CompleteOrder(ctx, order.ID, g.cfg.Settings); err != nil {
			return err
		}
		g.summary.CompletedOrders++
		produced = produced.Add(output)
	}

	sold := produced.Mul(decimal.NewFromFloat(0.8)).Floor()
	if !sold.IsPositive() {
		return nil
	}
	_, err := g.closedDocument(ctx, inventory.DocumentInput{
		Kind:         models.DocumentManufacturedOut,
		Counterparty: "منفذ البيع",
		Items: []inventory.DocumentItemInput{{
			ProductID: product.ID,
			Quantity:  sold,
			Price:     product.Price,
		}},
	})
	return err
}

// orderItems builds the consumption lines of one batch. scale multiplies
// every rate, which lets drafts run off-recipe.
func (g *Generator) orderItems(f Formula, output decimal.Decimal, scale float64) []manufacturing.ItemInput {
	items := make([]manufacturing.ItemInput, 0, len(f.Ingredients))
	for _, ing := range f.Ingredients {
		if ing.Optional && g.rng.Intn(2) == 0 {
			continue
		}
		qty := decimal.RequireFromString(ing.Rate).Mul(output).Mul(decimal.NewFromFloat(scale))
		items = append(items, manufacturing.ItemInput{
			ProductID: g.products[ing.Material].ID,
			Quantity:  g.jitter(qty, 3),
		})
	}
	return items
}

// jitter scatters v by up to cfg.Jitter and rounds to places.
func (g *Generator) jitter(v decimal.Decimal, places int32) decimal.Decimal {
	factor := 1 + (g.rng.Float64()*2-1)*g.cfg.Jitter
	out := v.Mul(decimal.NewFromFloat(factor)).Round(places)
	if !out.IsPositive() {
		return v
	}
	return out
}

// generateDrafts leaves work in progress: one off-recipe draft order per
// formula plus draft waste and stocktaking sheets.
func (g *Generator) generateDrafts(ctx context.Context) error {
	for i, f := range Formulas {
		g.clock.Advance(2 * time.Hour)

		// Every other draft overuses its ingredients so variance warnings
		// show up on completion.
		scale := 1.0
		if i%2 == 0 {
			scale = 1.3
		}
		output := decimal.NewFromInt(int64(f.BatchSize))
		if _, err := g.manufacturing.CreateOrder(ctx, manufacturing.OrderInput{
			ProductID:      g.products[f.Name].ID,
			OutputQuantity: output,
			Notes:          "دفعة الصباح",
			Items:          g.orderItems(f, output, scale),
		}); err != nil {
			return err
		}
		g.summary.DraftOrders++
	}

	raw := models.ProductTypeRaw
	drafts := []inventory.DocumentInput{
		{
			Kind:  models.DocumentWaste,
			Notes: "تالف أثناء التخزين",
			Items: []inventory.DocumentItemInput{{
				ProductID: g.products["بيض"].ID,
				Quantity:  decimal.NewFromInt(12),
				Price:     decimal.RequireFromString("4.25"),
			}},
		},
		{
			Kind:        models.DocumentStocktaking,
			ProductType: &raw,
			Notes:       "جرد نهاية الأسبوع",
			Items: []inventory.DocumentItemInput{
				{
					ProductID:    g.products["دقيق فاخر"].ID,
					RealQuantity: decimal.NewFromInt(180),
					Price:        decimal.RequireFromString("22.50"),
				},
				{
					ProductID:    g.products["سكر"].ID,
					RealQuantity: decimal.NewFromInt(95),
					Price:        decimal.RequireFromString("31"),
				},
			},
		},
	}
	for _, input := range drafts {
		g.clock.Advance(30 * time.Minute)
		if _, err := g.inventory.CreateDocument(ctx, input); err != nil {
			return err
		}
		g.summary.Documents++
	}

	return nil
}
