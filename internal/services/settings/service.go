// Package settings resolves the recipe thresholds from configuration and the
// settings table.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/habibGamal/preparation-system/internal/config"
	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/repository"
	"github.com/habibGamal/preparation-system/internal/services"
)

// Service reads and writes the effective settings.
type Service struct {
	db     *sql.DB
	repo   *repository.SettingRepository
	base   models.Settings
	logger *slog.Logger
}

// NewService creates a settings service. base supplies the value for any key
// without a table row.
func NewService(db *sql.DB, base models.Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		repo:   repository.NewSettingRepository(db),
		base:   base,
		logger: logger.With("service", "settings"),
	}
}

// FromConfig converts the [manufacturing] config section.
func FromConfig(cfg config.ManufacturingConfig) models.Settings {
	return models.Settings{
		MinimumOrders:     cfg.MinimumOrdersForRecipe,
		MaximumOrders:     cfg.MaximumOrdersForRecipe,
		VarianceThreshold: decimal.NewFromFloat(cfg.VarianceWarningThreshold),
		AutoUpdateRecipe:  cfg.AutoUpdateRecipeOnCompletion,
		RequiredThreshold: decimal.NewFromFloat(cfg.RequiredIngredientThreshold),
		IncludeThreshold:  decimal.NewFromFloat(cfg.IncludeIngredientThreshold),
	}
}

// Base returns the configured settings before table overrides.
func (s *Service) Base() models.Settings {
	return s.base
}

// Effective returns the configured settings overlaid by table rows. Rows that
// fail to parse are logged and ignored.
func (s *Service) Effective(ctx context.Context) (models.Settings, error) {
	rows, err := s.repo.All(ctx, nil)
	if err != nil {
		return models.Settings{}, fmt.Errorf("loading settings: %w", err)
	}

	out := s.base
	for key, value := range rows {
		next, err := Apply(out, key, value)
		if err != nil {
			s.logger.Warn("ignoring stored setting", "key", key, "value", value, "error", err)
			continue
		}
		out = next
	}
	return out, nil
}

// Seed writes the configured value of every key that has no row yet and
// returns the number of rows written.
func (s *Service) Seed(ctx context.Context) (int, error) {
	values := s.base.Values()
	written := 0

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, key := range models.AllSettingKeys() {
			inserted, err := s.repo.InsertIfMissing(ctx, tx, key, values[key])
			if err != nil {
				return err
			}
			if inserted {
				written++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seeding settings: %w", err)
	}

	if written > 0 {
		s.logger.Info("settings seeded", "rows", written)
	}
	return written, nil
}

// Update validates values against the current effective settings and stores
// them. Unknown keys and unparsable values fail with services.ErrInvalidInput.
func (s *Service) Update(ctx context.Context, values map[models.SettingKey]string) (models.Settings, error) {
	current, err := s.Effective(ctx)
	if err != nil {
		return models.Settings{}, err
	}

	next := current
	var errs []error
	for key, value := range values {
		applied, err := Apply(next, key, value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		next = applied
	}
	if len(errs) == 0 {
		if err := next.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return models.Settings{}, fmt.Errorf("%w: %w", services.ErrInvalidInput, errors.Join(errs...))
	}

	rendered := next.Values()
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for key := range values {
			if err := s.repo.Upsert(ctx, tx, key, rendered[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Settings{}, fmt.Errorf("saving settings: %w", err)
	}

	s.logger.Info("settings updated", "keys", len(values))
	return next, nil
}

// Apply returns base with key set to the parsed value.
func Apply(base models.Settings, key models.SettingKey, value string) (models.Settings, error) {
	value = strings.TrimSpace(value)
	out := base

	switch key {
	case models.SettingMinimumOrdersForRecipe, models.SettingMaximumOrdersForRecipe:
		n, err := strconv.Atoi(value)
		if err != nil {
			return base, fmt.Errorf("%s: %q is not an integer", key, value)
		}
		if key == models.SettingMinimumOrdersForRecipe {
			out.MinimumOrders = n
		} else {
			out.MaximumOrders = n
		}

	case models.SettingVarianceWarningThreshold, models.SettingRequiredIngredientThreshold, models.SettingIncludeIngredientThreshold:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return base, fmt.Errorf("%s: %q is not a number", key, value)
		}
		switch key {
		case models.SettingVarianceWarningThreshold:
			out.VarianceThreshold = d
		case models.SettingRequiredIngredientThreshold:
			out.RequiredThreshold = d
		default:
			out.IncludeThreshold = d
		}

	case models.SettingAutoUpdateRecipeOnCompletion:
		b, err := config.ParseBool(value)
		if err != nil {
			return base, fmt.Errorf("%s: %w", key, err)
		}
		out.AutoUpdateRecipe = b

	default:
		return base, fmt.Errorf("unknown setting %q", key)
	}

	return out, nil
}
