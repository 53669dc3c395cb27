package tasks

import (
	"context"
	"fmt"

	"deovr-bridge/pkg/assets"
	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"
	"deovr-bridge/pkg/progress"

	"github.com/google/uuid"
)

// Progress weighting of the reconciliation phases: classification covers the
// first 80 percent, deletion the rest.
const classifyWeight = 80.0

// CleanupService reconciles the preview cache against current catalog
// membership, deleting orphaned and malformed entries.
type CleanupService struct {
	settings SettingsLoader
	catalog  catalog.Catalog
	store    assets.Store
}

// NewCleanupService creates a new cache reconciler
func NewCleanupService(settings SettingsLoader, cat catalog.Catalog, store assets.Store) *CleanupService {
	return &CleanupService{
		settings: settings,
		catalog:  cat,
		store:    store,
	}
}

// Run performs the two-phase scan-then-delete reconciliation. Cancellation is
// checked between every entry; a failing deletion is counted and the batch
// continues.
func (s *CleanupService) Run(ctx context.Context, report progress.Reporter) (*model.CleanupReport, error) {
	result := &model.CleanupReport{}

	settings, err := s.settings()
	if err != nil {
		// an absent settings document means there is nothing to reconcile
		logger.Warnf("cache reconciliation skipped: %v", err)
		report(100)
		return result, nil
	}

	// the valid identity set is recomputed on every run; catalog membership
	// changes are the whole point of reconciling
	validSet, err := s.validIdentitySet(ctx, settings)
	if err != nil {
		return result, err
	}

	entries, err := s.store.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list cache entries: %w", err)
	}

	if len(entries) == 0 {
		report(100)
		return result, nil
	}

	// phase one: classify
	var condemned []assets.Entry
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		switch {
		case entry.VideoID == nil:
			result.Malformed++
			condemned = append(condemned, entry)
		case !validSet[*entry.VideoID]:
			result.Orphaned++
			condemned = append(condemned, entry)
		default:
			result.Valid++
		}

		report(float64(i+1) / float64(len(entries)) * classifyWeight)
	}

	// phase two: delete
	for i, entry := range condemned {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		freed, err := s.store.Delete(ctx, entry.Path)
		if err != nil {
			result.DeleteFailed++
			logger.Warnf("failed to delete cache entry %s: %v", entry.Path, err)
		} else {
			result.Deleted++
			result.BytesFreed += freed
		}

		report(classifyWeight + float64(i+1)/float64(len(condemned))*(100-classifyWeight))
	}

	report(100)
	return result, nil
}

// validIdentitySet computes the identities that currently deserve a cache
// entry. A catalog failure aborts the run: classifying against a partial set
// would condemn entries that are still valid.
func (s *CleanupService) validIdentitySet(ctx context.Context, settings *config.LibrarySettings) (map[uuid.UUID]bool, error) {
	validSet := make(map[uuid.UUID]bool)

	for _, lib := range settings.TimelineLibraries() {
		videos, err := s.catalog.VideosForLibrary(ctx, lib.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list videos for library %s: %w", lib.ID, err)
		}
		for _, v := range videos {
			validSet[v.ID] = true
		}
	}

	return validSet, nil
}
