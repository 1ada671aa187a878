// Package manufacturing manages manufacturing orders: drafting, completion
// and variance reporting.
package manufacturing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/repository"
	"github.com/habibGamal/preparation-system/internal/services"
	"github.com/habibGamal/preparation-system/internal/services/recipes"
	"github.com/habibGamal/preparation-system/internal/util"
)

// Service provides manufacturing order operations.
type Service struct {
	db          *sql.DB
	orders      *repository.OrderRepository
	products    *repository.ProductRepository
	recipes     *recipes.Service
	idGenerator *util.IDGenerator
	clock       util.Clock
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for completedAt.
func WithClock(c util.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new manufacturing service.
func NewService(db *sql.DB, recipeService *recipes.Service, opts ...Option) *Service {
	s := &Service{
		db:          db,
		orders:      repository.NewOrderRepository(db),
		products:    repository.NewProductRepository(db),
		recipes:     recipeService,
		idGenerator: util.NewIDGenerator(),
		clock:       util.SystemClock{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("service", "manufacturing")
	return s
}

// ============================================================================
// DRAFTS
// ============================================================================

// CreateOrder stores a new draft order.
func (s *Service) CreateOrder(ctx context.Context, input OrderInput) (*models.ManufacturingOrder, error) {
	order := &models.ManufacturingOrder{
		ID:     s.idGenerator.NewID(),
		Status: models.OrderStatusDraft,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.applyInput(ctx, tx, order, input); err != nil {
			return err
		}
		return s.orders.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	return s.orders.GetByID(ctx, nil, order.ID)
}

// GetOrder retrieves an order with its items.
func (s *Service) GetOrder(ctx context.Context, id string) (*models.ManufacturingOrder, error) {
	return s.orders.GetByID(ctx, nil, id)
}

// ListOrders retrieves orders with filtering and pagination.
func (s *Service) ListOrders(ctx context.Context, filter models.OrderFilter, page models.Pagination) (*models.OrderList, error) {
	return s.orders.List(ctx, filter, page)
}

// UpdateDraft replaces output, notes and items of a draft order. The product
// of an existing order cannot change.
func (s *Service) UpdateDraft(ctx context.Context, id string, input OrderInput) (*models.ManufacturingOrder, error) {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		order, err := s.loadDraft(ctx, tx, id)
		if err != nil {
			return err
		}
		input.ProductID = order.ProductID
		if err := s.applyInput(ctx, tx, order, input); err != nil {
			return err
		}
		return s.orders.UpdateDraft(ctx, tx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("updating order: %w", err)
	}

	return s.orders.GetByID(ctx, nil, id)
}

// DeleteDraft removes a draft order.
func (s *Service) DeleteDraft(ctx context.Context, id string) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.loadDraft(ctx, tx, id); err != nil {
			return err
		}
		return s.orders.DeleteDraft(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	return nil
}

// Clone copies an order of any status into a new draft.
func (s *Service) Clone(ctx context.Context, id string) (*models.ManufacturingOrder, error) {
	var clone *models.ManufacturingOrder

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		src, err := s.orders.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		clone = &models.ManufacturingOrder{
			ID:             s.idGenerator.NewID(),
			ProductID:      src.ProductID,
			Status:         models.OrderStatusDraft,
			OutputQuantity: src.OutputQuantity,
			Notes:          src.Notes,
		}
		for _, item := range src.Items {
			clone.Items = append(clone.Items, &models.OrderItem{
				ID:        s.idGenerator.NewID(),
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		return s.orders.Create(ctx, tx, clone)
	})
	if err != nil {
		return nil, fmt.Errorf("cloning order: %w", err)
	}

	s.logger.Info("order cloned", "source_id", id, "order_id", clone.ID)
	return s.orders.GetByID(ctx, nil, clone.ID)
}

func (s *Service) loadDraft(ctx context.Context, tx *sql.Tx, id string) (*models.ManufacturingOrder, error) {
	order, err := s.orders.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsDraft() {
		return nil, fmt.Errorf("order %s: %w", id, services.ErrOrderNotDraft)
	}
	return order, nil
}

// applyInput validates input and copies it onto order.
func (s *Service) applyInput(ctx context.Context, tx *sql.Tx, order *models.ManufacturingOrder, input OrderInput) error {
	var errs []error

	if !input.OutputQuantity.IsPositive() {
		errs = append(errs, errors.New("output quantity must be greater than zero"))
	}

	ids := []string{input.ProductID}
	seen := make(map[string]bool, len(input.Items))
	for i, item := range input.Items {
		if !item.Quantity.IsPositive() {
			errs = append(errs, fmt.Errorf("item %d: quantity must be greater than zero", i+1))
		}
		if seen[item.ProductID] {
			errs = append(errs, fmt.Errorf("item %d: product listed twice", i+1))
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, tx, ids)
	if err != nil {
		return err
	}

	if p := products[input.ProductID]; p == nil {
		errs = append(errs, fmt.Errorf("product %s does not exist", input.ProductID))
	} else if !p.IsManufactured() {
		errs = append(errs, fmt.Errorf("product %s is not manufactured", p.Name))
	}
	for i, item := range input.Items {
		if p := products[item.ProductID]; p == nil {
			errs = append(errs, fmt.Errorf("item %d: product %s does not exist", i+1, item.ProductID))
		} else if !p.IsRaw() {
			errs = append(errs, fmt.Errorf("item %d: %s is not a raw material", i+1, p.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", services.ErrInvalidInput, errors.Join(errs...))
	}

	order.ProductID = input.ProductID
	order.OutputQuantity = input.OutputQuantity
	order.Notes = input.Notes
	order.Items = make([]*models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		order.Items = append(order.Items, &models.OrderItem{
			ID:        s.idGenerator.NewID(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return nil
}

// ============================================================================
// COMPLETION
// ============================================================================

// CompleteOrder moves a draft order to completed in a single transaction:
// raw materials leave inventory, the output enters it, and unless the product
// has reached MaximumOrders the recipe is recalculated. Inventory rows that
// do not exist are left alone.
func (s *Service) CompleteOrder(ctx context.Context, orderID string, settings models.Settings) error {
	var (
		order       *models.ManufacturingOrder
		recalc      bool
		recipeItems int
	)

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		order, err = s.loadDraft(ctx, tx, orderID)
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			if _, err := s.products.AdjustInventory(ctx, tx, item.ProductID, item.Quantity.Neg()); err != nil {
				return fmt.Errorf("consuming %s: %w", item.ProductID, err)
			}
		}
		if _, err := s.products.AdjustInventory(ctx, tx, order.ProductID, order.OutputQuantity); err != nil {
			return fmt.Errorf("receiving output: %w", err)
		}

		if err := s.orders.MarkCompleted(ctx, tx, order.ID, s.clock.Now()); err != nil {
			return err
		}

		if !settings.AutoUpdateRecipe {
			return nil
		}

		product, err := s.products.GetByID(ctx, tx, order.ProductID)
		if err != nil {
			return err
		}
		reached, err := s.recipes.HasReachedMaximumOrdersTx(ctx, tx, product, settings)
		if err != nil {
			return err
		}
		if reached {
			s.logger.Info("recipe frozen", "product_id", product.ID, "maximum", settings.MaximumOrders)
			return nil
		}

		recipe, err := s.recipes.CalculateRecipeTx(ctx, tx, product, settings)
		if err != nil {
			return err
		}
		if recipe != nil {
			recalc = true
			recipeItems = len(recipe.Items)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("completing order %s: %w", orderID, err)
	}

	s.logger.Info("order completed",
		"order_id", order.ID,
		"product_id", order.ProductID,
		"output", order.OutputQuantity.String(),
		"items", len(order.Items),
		"recipe_recalculated", recalc,
		"recipe_items", recipeItems,
	)
	return nil
}

// VarianceWarnings compares a stored order to its product's recipe.
func (s *Service) VarianceWarnings(ctx context.Context, orderID string, settings models.Settings) ([]models.VarianceWarning, error) {
	order, err := s.orders.GetByID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	return s.recipes.AnalyzeVariance(ctx, order, settings)
}
