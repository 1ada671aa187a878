// Package inventory manages products, on-hand stock and the stock documents
// that move it.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/repository"
	"github.com/habibGamal/preparation-system/internal/services"
	"github.com/habibGamal/preparation-system/internal/util"
)

// Service provides product and stock document operations.
type Service struct {
	db          *sql.DB
	products    *repository.ProductRepository
	documents   *repository.DocumentRepository
	idGenerator *util.IDGenerator
	clock       util.Clock
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for closedAt.
func WithClock(c util.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new inventory service.
func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:          db,
		products:    repository.NewProductRepository(db),
		documents:   repository.NewDocumentRepository(db),
		idGenerator: util.NewIDGenerator(),
		clock:       util.SystemClock{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("service", "inventory")
	return s
}

// ============================================================================
// PRODUCTS
// ============================================================================

// CreateProduct stores a product together with an empty inventory row.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProduct(input, true); err != nil {
		return nil, err
	}

	p := &models.Product{
		ID:       s.idGenerator.NewID(),
		Name:     strings.TrimSpace(input.Name),
		Type:     input.Type,
		Unit:     input.Unit,
		Barcode:  input.Barcode,
		Price:    input.Price,
		Cost:     input.Cost,
		MinStock: input.MinStock,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.products.Create(ctx, tx, p); err != nil {
			return err
		}
		return s.products.CreateInventory(ctx, tx, &models.Inventory{
			ID:        s.idGenerator.NewID(),
			ProductID: p.ID,
			Quantity:  decimal.Zero,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	return s.products.GetByID(ctx, nil, p.ID)
}

// UpdateProduct saves the editable fields of a product. Type is ignored.
func (s *Service) UpdateProduct(ctx context.Context, id string, input ProductInput) (*models.Product, error) {
	if err := validateProduct(input, false); err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(input.Name)
	p.Unit = input.Unit
	p.Barcode = input.Barcode
	p.Price = input.Price
	p.Cost = input.Cost
	p.MinStock = input.MinStock

	if err := s.products.Update(ctx, nil, p); err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}
	return s.products.GetByID(ctx, nil, id)
}

// GetProduct retrieves a product with its inventory.
func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.products.GetByID(ctx, nil, id)
}

// ListProducts retrieves products with filtering and pagination.
func (s *Service) ListProducts(ctx context.Context, filter models.ProductFilter, page models.Pagination) (*models.ProductList, error) {
	return s.products.List(ctx, filter, page)
}

func validateProduct(input ProductInput, creating bool) error {
	var errs []error

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if creating && !input.Type.IsValid() {
		errs = append(errs, fmt.Errorf("unknown product type %q", input.Type))
	}
	if !input.Unit.IsValid() {
		errs = append(errs, fmt.Errorf("unknown unit %q", input.Unit))
	}
	if input.Price.IsNegative() || input.Cost.IsNegative() {
		errs = append(errs, errors.New("price and cost must not be negative"))
	}
	if input.MinStock < 0 {
		errs = append(errs, errors.New("min stock must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", services.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}
