package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Environment variables that override the [manufacturing] section.
const (
	EnvMinOrdersForRecipe  = "MANUFACTURING_MIN_ORDERS_FOR_RECIPE"
	EnvMaxOrdersForRecipe  = "MANUFACTURING_MAX_ORDERS_FOR_RECIPE"
	EnvVarianceThreshold   = "MANUFACTURING_VARIANCE_THRESHOLD"
	EnvAutoUpdateRecipe    = "MANUFACTURING_AUTO_UPDATE_RECIPE"
	EnvRequiredThreshold   = "MANUFACTURING_REQUIRED_THRESHOLD"
	EnvIncludeThreshold    = "MANUFACTURING_INCLUDE_THRESHOLD"
	EnvDatabasePath        = "PREPSYS_DATABASE_PATH"
	EnvServerListenAddress = "PREPSYS_LISTEN"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment values onto cfg. Every malformed value is
// reported; valid ones are still applied.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error

	if v, ok := lookup(EnvMinOrdersForRecipe); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvMinOrdersForRecipe, err))
		} else {
			cfg.Manufacturing.MinimumOrdersForRecipe = n
		}
	}

	if v, ok := lookup(EnvMaxOrdersForRecipe); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvMaxOrdersForRecipe, err))
		} else {
			cfg.Manufacturing.MaximumOrdersForRecipe = n
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{EnvVarianceThreshold, &cfg.Manufacturing.VarianceWarningThreshold},
		{EnvRequiredThreshold, &cfg.Manufacturing.RequiredIngredientThreshold},
		{EnvIncludeThreshold, &cfg.Manufacturing.IncludeIngredientThreshold},
	}
	for _, f := range floats {
		v, ok := lookup(f.key)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
			continue
		}
		*f.dst = n
	}

	if v, ok := lookup(EnvAutoUpdateRecipe); ok {
		b, err := ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvAutoUpdateRecipe, err))
		} else {
			cfg.Manufacturing.AutoUpdateRecipeOnCompletion = b
		}
	}

	if v, ok := lookup(EnvDatabasePath); ok && strings.TrimSpace(v) != "" {
		cfg.Database.Path = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvServerListenAddress); ok && strings.TrimSpace(v) != "" {
		cfg.Server.Listen = strings.TrimSpace(v)
	}

	return errors.Join(errs...)
}

// ParseBool accepts true/1/yes/on and false/0/no/off, case-insensitively.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
