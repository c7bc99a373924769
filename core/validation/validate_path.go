package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckDirWritable verifies that a directory exists (creating it when
// absent) and that the process can create files in it. The probe file
// is removed before returning.
func CheckDirWritable(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path cannot be empty")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return ErrDirectoryNotWritable(dir, err)
	}

	probe := filepath.Join(dir, ".write-probe")
	f, err := os.Create(probe)
	if err != nil {
		return ErrDirectoryNotWritable(dir, err)
	}
	f.Close()
	os.Remove(probe)
	return nil
}

// CheckMigrationsSource verifies that a file:// migrations path points
// at a directory containing at least one .sql migration file.
func CheckMigrationsSource(sourceURL string) error {
	dir := strings.TrimPrefix(sourceURL, "file://")
	if dir == "" {
		return ErrMigrationsMissing(sourceURL)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read migrations directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			return nil
		}
	}
	return ErrMigrationsMissing(dir)
}
