package validation

import (
	"path/filepath"

	"docextract_backend/core"
)

// ValidationResult represents the result of a single configuration check.
type ValidationResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator checks that a loaded configuration can actually be
// served: values are consistent, storage directories are writable, and
// the migrations source is usable.
type ConfigValidator struct {
	config *core.Config
}

// NewConfigValidator creates a ConfigValidator for the given config.
func NewConfigValidator(config *core.Config) *ConfigValidator {
	return &ConfigValidator{config: config}
}

// CheckConfigValues validates the configuration's internal consistency.
func (v *ConfigValidator) CheckConfigValues() ValidationResult {
	if v.config == nil {
		return ValidationResult{
			Valid:   false,
			Message: "No configuration loaded",
			Error:   ErrInvalidConfig("config", errNilConfig),
		}
	}
	if err := v.config.Validate(); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Configuration values are inconsistent",
			Error:   err,
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Configuration values OK",
	}
}

// CheckDatabaseDirectory verifies the database's parent directory is
// writable, creating it when absent.
func (v *ConfigValidator) CheckDatabaseDirectory() ValidationResult {
	dir := filepath.Dir(v.config.DatabasePath)
	if err := CheckDirWritable(dir); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Database directory is not writable",
			Error:   err,
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Database directory writable",
	}
}

// CheckLogDirectory verifies the log file's parent directory is
// writable, creating it when absent.
func (v *ConfigValidator) CheckLogDirectory() ValidationResult {
	dir := filepath.Dir(v.config.LogFilePath)
	if err := CheckDirWritable(dir); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Log directory is not writable",
			Error:   err,
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Log directory writable",
	}
}

// CheckMigrations verifies the migrations source contains SQL files.
func (v *ConfigValidator) CheckMigrations() ValidationResult {
	if err := CheckMigrationsSource(v.config.MigrationsPath); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Migrations source is unusable",
			Error:   err,
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Migrations found",
	}
}
