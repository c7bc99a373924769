package validation

import (
	"errors"
	"fmt"
)

var errNilConfig = errors.New("config is nil")

// ErrInvalidConfig wraps a configuration validation failure with the
// offending setting name.
func ErrInvalidConfig(setting string, err error) error {
	return fmt.Errorf("invalid configuration for %s: %w", setting, err)
}

// ErrDirectoryNotWritable reports a directory the service needs to
// write to but cannot.
func ErrDirectoryNotWritable(path string, err error) error {
	return fmt.Errorf("directory %s is not writable: %w", path, err)
}

// ErrMigrationsMissing reports an unusable migrations source.
func ErrMigrationsMissing(path string) error {
	return fmt.Errorf("no migration files found at %s", path)
}
