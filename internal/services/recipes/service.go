// Package recipes infers manufacturing recipes from completed orders and
// compares new orders against them.
package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/repository"
	"github.com/habibGamal/preparation-system/internal/services"
	"github.com/habibGamal/preparation-system/internal/util"
)

// Service provides recipe calculation and variance analysis.
type Service struct {
	db          *sql.DB
	orders      *repository.OrderRepository
	recipes     *repository.RecipeRepository
	idGenerator *util.IDGenerator
	clock       util.Clock
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for lastCalculatedAt.
func WithClock(c util.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new recipe service.
func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:          db,
		orders:      repository.NewOrderRepository(db),
		recipes:     repository.NewRecipeRepository(db),
		idGenerator: util.NewIDGenerator(),
		clock:       util.SystemClock{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("service", "recipes")
	return s
}

// ============================================================================
// CALCULATION
// ============================================================================

// CalculateRecipe rebuilds the product's recipe from its most recent completed
// orders. It returns nil without touching storage when fewer than
// MinimumOrders completed orders exist.
func (s *Service) CalculateRecipe(ctx context.Context, product *models.Product, settings models.Settings) (*models.Recipe, error) {
	return s.CalculateRecipeWithLimit(ctx, product, settings, settings.MaximumOrders)
}

// CalculateRecipeWithLimit is CalculateRecipe with an explicit window size.
// A non-positive maxOrders falls back to settings.MaximumOrders.
func (s *Service) CalculateRecipeWithLimit(ctx context.Context, product *models.Product, settings models.Settings, maxOrders int) (*models.Recipe, error) {
	var recipe *models.Recipe
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		recipe, err = s.calculate(ctx, tx, product, settings, maxOrders)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// CalculateRecipeTx runs CalculateRecipe inside the caller's transaction.
func (s *Service) CalculateRecipeTx(ctx context.Context, tx *sql.Tx, product *models.Product, settings models.Settings) (*models.Recipe, error) {
	return s.calculate(ctx, tx, product, settings, settings.MaximumOrders)
}

func (s *Service) calculate(ctx context.Context, tx *sql.Tx, product *models.Product, settings models.Settings, maxOrders int) (*models.Recipe, error) {
	if maxOrders <= 0 {
		maxOrders = settings.MaximumOrders
	}

	orders, err := s.orders.FindCompleted(ctx, tx, product.ID, maxOrders)
	if err != nil {
		return nil, fmt.Errorf("loading completed orders: %w", err)
	}

	if len(orders) < settings.MinimumOrders {
		s.logger.Debug("not enough orders for recipe",
			"product_id", product.ID,
			"orders", len(orders),
			"minimum", settings.MinimumOrders,
		)
		return nil, nil
	}

	stats := ComputeStats(orders)
	now := s.clock.Now()

	recipe := &models.Recipe{
		ID:                        s.idGenerator.NewID(),
		ProductID:                 product.ID,
		Name:                      "متوسط تصنيع " + product.Name,
		ExpectedOutputQuantity:    stats.ExpectedOutput,
		IsAutoCalculated:          true,
		CalculatedFromOrdersCount: stats.Orders,
		LastCalculatedAt:          &now,
		Notes:                     fmt.Sprintf("محسوب تلقائياً من %d أذون تصنيع (آخر الأوامر المكتملة)", stats.Orders),
	}
	if err := s.recipes.Upsert(ctx, tx, recipe); err != nil {
		return nil, fmt.Errorf("saving recipe: %w", err)
	}

	items := make([]*models.RecipeItem, 0, len(stats.Ingredients))
	for _, ing := range stats.Ingredients {
		if !ing.Included(settings.IncludeThreshold) {
			continue
		}
		items = append(items, &models.RecipeItem{
			ID:              s.idGenerator.NewID(),
			ProductID:       ing.ProductID,
			ConsumptionRate: ing.AvgRate,
			UsageFrequency:  ing.Frequency,
		})
	}
	if err := s.recipes.ReplaceItems(ctx, tx, recipe.ID, items); err != nil {
		return nil, fmt.Errorf("saving recipe items: %w", err)
	}

	s.logger.Info("recipe recalculated",
		"product_id", product.ID,
		"recipe_id", recipe.ID,
		"orders", stats.Orders,
		"items", len(items),
		"dropped", len(stats.Ingredients)-len(items),
	)

	fresh, err := s.recipes.GetByProductID(ctx, tx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading recipe: %w", err)
	}
	return fresh, nil
}

// ============================================================================
// GATES
// ============================================================================

// HasEnoughOrders reports whether the product has at least MinimumOrders
// completed orders.
func (s *Service) HasEnoughOrders(ctx context.Context, product *models.Product, settings models.Settings) (bool, error) {
	n, err := s.orders.CountCompleted(ctx, nil, product.ID)
	if err != nil {
		return false, err
	}
	return n >= settings.MinimumOrders, nil
}

// HasReachedMaximumOrders reports whether the product has at least
// MaximumOrders completed orders. Past this point completion no longer
// recalculates the recipe.
func (s *Service) HasReachedMaximumOrders(ctx context.Context, product *models.Product, settings models.Settings) (bool, error) {
	return s.HasReachedMaximumOrdersTx(ctx, nil, product, settings)
}

// HasReachedMaximumOrdersTx is HasReachedMaximumOrders inside tx.
func (s *Service) HasReachedMaximumOrdersTx(ctx context.Context, tx *sql.Tx, product *models.Product, settings models.Settings) (bool, error) {
	n, err := s.orders.CountCompleted(ctx, tx, product.ID)
	if err != nil {
		return false, err
	}
	return n >= settings.MaximumOrders, nil
}

// Status summarizes the recipe gates for a product.
func (s *Service) Status(ctx context.Context, product *models.Product, settings models.Settings) (*models.RecipeStatus, error) {
	n, err := s.orders.CountCompleted(ctx, nil, product.ID)
	if err != nil {
		return nil, err
	}

	_, err = s.recipes.GetAutoCalculatedByProductID(ctx, nil, product.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return &models.RecipeStatus{
		ProductID:         product.ID,
		CompletedOrders:   n,
		HasEnoughOrders:   n >= settings.MinimumOrders,
		HasReachedMaximum: n >= settings.MaximumOrders,
		HasRecipe:         err == nil,
	}, nil
}

// ============================================================================
// LOOKUP AND VARIANCE
// ============================================================================

// GetRecipeForProduct returns the product's auto-calculated recipe, or
// services.ErrNotFound.
func (s *Service) GetRecipeForProduct(ctx context.Context, product *models.Product) (*models.Recipe, error) {
	recipe, err := s.recipes.GetAutoCalculatedByProductID(ctx, nil, product.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("recipe for %s: %w", product.Name, services.ErrNotFound)
	}
	return recipe, err
}

// ListRecipes returns every stored recipe without items.
func (s *Service) ListRecipes(ctx context.Context) ([]*models.Recipe, error) {
	return s.recipes.List(ctx)
}

// AnalyzeVariance compares order to its product's auto-calculated recipe. The
// result is empty when no such recipe exists.
func (s *Service) AnalyzeVariance(ctx context.Context, order *models.ManufacturingOrder, settings models.Settings) ([]models.VarianceWarning, error) {
	if !order.OutputQuantity.IsPositive() {
		return []models.VarianceWarning{}, nil
	}

	recipe, err := s.recipes.GetAutoCalculatedByProductID(ctx, nil, order.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		return []models.VarianceWarning{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading recipe: %w", err)
	}

	return CompareToRecipe(order, recipe, settings), nil
}

// IngredientType classifies a usage frequency against the thresholds.
func (s *Service) IngredientType(usageFrequency decimal.Decimal, settings models.Settings) models.IngredientType {
	return models.ClassifyIngredient(usageFrequency, settings)
}
