package db

import (
	"context"
	"fmt"
	"time"
)

// CleanupConfig controls retention of extraction history rows.
type CleanupConfig struct {
	RetentionDays int           // History older than this is pruned
	Interval      time.Duration // How often the background loop runs
}

// DefaultCleanupConfig keeps thirty days of history and prunes hourly.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays: 30,
		Interval:      time.Hour,
	}
}

// PruneExtractionRuns deletes extraction_runs rows older than the
// retention window and returns how many were removed. Document rows are
// never touched; only history is pruned.
func (r *Repository) PruneExtractionRuns(ctx context.Context, retentionDays int) (int64, error) {
	if r.database == nil {
		return 0, fmt.Errorf("database connection is nil")
	}
	if retentionDays < 1 {
		return 0, fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	result, err := r.database.DB().ExecContext(ctx,
		`DELETE FROM extraction_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune extraction runs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// StartCleanupLoop runs PruneExtractionRuns on a ticker until ctx is
// cancelled. Errors are reported through onError when non-nil.
func (r *Repository) StartCleanupLoop(ctx context.Context, config CleanupConfig, onError func(error)) {
	if config.Interval <= 0 {
		config.Interval = DefaultCleanupConfig().Interval
	}
	if config.RetentionDays < 1 {
		config.RetentionDays = DefaultCleanupConfig().RetentionDays
	}

	go func() {
		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.PruneExtractionRuns(ctx, config.RetentionDays); err != nil && onError != nil {
					onError(err)
				}
			}
		}
	}()
}
