// Package config provides configuration management for the preparation system.
// Configurations are loaded from TOML files with XDG-compliant paths and may be
// overridden from the environment.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Manufacturing ManufacturingConfig `toml:"manufacturing"`
	Server        ServerConfig        `toml:"server"`
	Display       DisplayConfig       `toml:"display"`
	Logging       LoggingConfig       `toml:"logging"`
	Database      DatabaseConfig      `toml:"database"`
}

// ManufacturingConfig holds the recipe calculation thresholds. Values stored in
// the settings table take precedence over these at runtime.
type ManufacturingConfig struct {
	MinimumOrdersForRecipe       int     `toml:"minimum_orders_for_recipe"`
	MaximumOrdersForRecipe       int     `toml:"maximum_orders_for_recipe"`
	VarianceWarningThreshold     float64 `toml:"variance_warning_threshold"`
	AutoUpdateRecipeOnCompletion bool    `toml:"auto_update_recipe_on_completion"`
	RequiredIngredientThreshold  float64 `toml:"required_ingredient_threshold"`
	IncludeIngredientThreshold   float64 `toml:"include_ingredient_threshold"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Listen              string `toml:"listen"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
}

// ReadTimeout returns the read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme ColorScheme `toml:"color_scheme"`
	DateFormat  string      `toml:"date_format"`
	TimeFormat  string      `toml:"time_format"`
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeGreenPhosphor ColorScheme = "green_phosphor"
	ColorSchemeAmber         ColorScheme = "amber"
	ColorSchemeWhite         ColorScheme = "white"
)

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level"`
	File  string   `toml:"file"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DatabaseConfig controls SQLite database settings.
type DatabaseConfig struct {
	Path                string `toml:"path"`
	BackupDir           string `toml:"backup_dir"`
	BusyTimeoutMS       int    `toml:"busy_timeout_ms"`
	BackupRetentionDays int    `toml:"backup_retention_days"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Manufacturing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("manufacturing: %w", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the manufacturing thresholds are consistent.
func (m *ManufacturingConfig) Validate() error {
	var errs []error

	if m.MinimumOrdersForRecipe < 1 {
		errs = append(errs, errors.New("minimum_orders_for_recipe must be at least 1"))
	}

	if m.MaximumOrdersForRecipe < m.MinimumOrdersForRecipe {
		errs = append(errs, errors.New("maximum_orders_for_recipe must not be below minimum_orders_for_recipe"))
	}

	if m.VarianceWarningThreshold < 0 {
		errs = append(errs, errors.New("variance_warning_threshold must be non-negative"))
	}

	if m.RequiredIngredientThreshold < 0 || m.RequiredIngredientThreshold > 100 {
		errs = append(errs, errors.New("required_ingredient_threshold must be between 0 and 100"))
	}

	if m.IncludeIngredientThreshold < 0 || m.IncludeIngredientThreshold > 100 {
		errs = append(errs, errors.New("include_ingredient_threshold must be between 0 and 100"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the server configuration is valid.
func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Listen == "" {
		errs = append(errs, errors.New("listen is required"))
	}

	if s.ReadTimeoutSeconds < 0 {
		errs = append(errs, errors.New("read_timeout_seconds must be non-negative"))
	}

	if s.WriteTimeoutSeconds < 0 {
		errs = append(errs, errors.New("write_timeout_seconds must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks that the display configuration is valid.
func (d *DisplayConfig) Validate() error {
	validSchemes := map[ColorScheme]bool{
		ColorSchemeGreenPhosphor: true,
		ColorSchemeAmber:         true,
		ColorSchemeWhite:         true,
	}

	if !validSchemes[d.ColorScheme] && d.ColorScheme != "" {
		return fmt.Errorf("invalid color_scheme: %s", d.ColorScheme)
	}

	return nil
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	validLevels := map[LogLevel]bool{
		LogLevelDebug: true,
		LogLevelInfo:  true,
		LogLevelWarn:  true,
		LogLevelError: true,
	}

	if !validLevels[l.Level] && l.Level != "" {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	return nil
}

// Validate checks that the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	var errs []error

	if d.Path == "" {
		errs = append(errs, errors.New("path is required"))
	}

	if d.BusyTimeoutMS < 0 {
		errs = append(errs, errors.New("busy_timeout_ms must be non-negative"))
	}

	if d.BackupRetentionDays < 0 {
		errs = append(errs, errors.New("backup_retention_days must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Manufacturing: ManufacturingConfig{
			MinimumOrdersForRecipe:       3,
			MaximumOrdersForRecipe:       10,
			VarianceWarningThreshold:     10.0,
			AutoUpdateRecipeOnCompletion: true,
			RequiredIngredientThreshold:  70,
			IncludeIngredientThreshold:   30,
		},
		Server: ServerConfig{
			Listen:              "127.0.0.1:8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
		},
		Display: DisplayConfig{
			ColorScheme: ColorSchemeGreenPhosphor,
			DateFormat:  "2006-01-02",
			TimeFormat:  "15:04",
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "logs/prepsys.log",
		},
		Database: DatabaseConfig{
			Path:                "prepsys.db",
			BackupDir:           "backups",
			BusyTimeoutMS:       5000,
			BackupRetentionDays: 30,
		},
	}
}
